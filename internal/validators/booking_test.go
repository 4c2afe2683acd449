package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	assert.Equal(t, "11987654321", NormalizePhone(" (11) 98765-4321 "))
	assert.Equal(t, "+5511987654321", NormalizePhone("+55 11 98765.4321"))

	assert.True(t, IsPhoneValid("(11) 98765-4321"))
	assert.True(t, IsPhoneValid("+55 11 98765-4321"))
	assert.False(t, IsPhoneValid("1234"))
	assert.False(t, IsPhoneValid("11 9876-abcd"))
	assert.False(t, IsPhoneValid(""))
}

func TestDateAndClock(t *testing.T) {
	assert.True(t, IsDate("2025-02-28"))
	assert.False(t, IsDate("2025-02-30"))
	assert.False(t, IsDate("28/02/2025"))

	assert.True(t, IsClock("09:30"))
	assert.False(t, IsClock("9:30"))
	assert.False(t, IsClock("24:00"))

	assert.True(t, IsClockRange("09:00", "18:00"))
	assert.False(t, IsClockRange("18:00", "09:00"))
	assert.False(t, IsClockRange("09:00", "09:00"))
}
