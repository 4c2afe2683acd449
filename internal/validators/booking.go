package validators

import (
	"regexp"
	"strings"
	"time"
)

var phoneDigits = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// NormalizePhone strips spaces and punctuation commonly typed in phone
// numbers: "(11) 98765-4321" -> "11987654321".
func NormalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return r.Replace(strings.TrimSpace(phone))
}

func IsPhoneValid(phone string) bool {
	return phoneDigits.MatchString(NormalizePhone(phone))
}

// IsDate checks a YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IsClock checks an HH:MM time of day.
func IsClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsClockRange checks that both ends are valid and start < end.
func IsClockRange(start, end string) bool {
	return IsClock(start) && IsClock(end) && start < end
}
