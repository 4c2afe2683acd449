package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/db"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
)

func TestDispatcher_PersistsOnClose(t *testing.T) {
	gdb, err := db.Open("sqlite", ":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	store := audit.New(gdb)
	d := audit.NewDispatcher(store, logger.Nop())

	actor, entityID := uint(1), uint(42)
	d.Dispatch(audit.Event{
		ActorID:  &actor,
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: &entityID,
		Metadata: map[string]string{"from": "pending", "to": "confirmed"},
	})
	d.Dispatch(audit.Event{Action: "barber_created", Entity: "barber"})
	d.Close()
	d.Close()

	all, total, err := store.Query(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "barber_created", all[0].Action)

	appointments, _, err := store.Query(context.Background(), audit.Filter{Entity: "appointment"})
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "appointment_confirmed", appointments[0].Action)
	assert.Equal(t, uint(42), *appointments[0].EntityID)
	assert.JSONEq(t, `{"from":"pending","to":"confirmed"}`, appointments[0].Metadata)
}
