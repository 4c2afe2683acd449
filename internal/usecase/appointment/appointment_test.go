package appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	shared "github.com/BruksfildServices01/barbershop-admin/internal/domain"
	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
)

// --------------------------------------------------
// fakes
// --------------------------------------------------

type memStore struct {
	mu     sync.Mutex
	rows   []models.Appointment
	nextID uint
	fail   error
	// addDelay holds Add before the row becomes visible.
	addDelay time.Duration
}

func (m *memStore) List() []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows)
}

func (m *memStore) Get(id uint) (models.Appointment, bool) {
	for _, r := range m.rows {
		if r.ID == id {
			return r, true
		}
	}
	return models.Appointment{}, false
}

func (m *memStore) Add(_ context.Context, ap models.Appointment) (models.Appointment, error) {
	time.Sleep(m.addDelay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return models.Appointment{}, m.fail
	}
	m.nextID++
	ap.ID = m.nextID
	ap.Version = 1
	m.rows = append(m.rows, ap)
	return ap, nil
}

func (m *memStore) Update(_ context.Context, ap models.Appointment) (models.Appointment, error) {
	if m.fail != nil {
		return models.Appointment{}, m.fail
	}
	for i, r := range m.rows {
		if r.ID == ap.ID {
			ap.Version = r.Version + 1
			m.rows[i] = ap
			return ap, nil
		}
	}
	return models.Appointment{}, errors.New("missing")
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	if m.fail != nil {
		return m.fail
	}
	m.rows = slices.DeleteFunc(m.rows, func(r models.Appointment) bool { return r.ID == id })
	return nil
}

type catalog struct {
	barbers  []models.Barber
	services []models.Service
	schedule []models.WeeklySchedule
	holidays []models.Holiday
}

func (c catalog) ActiveBarbers() []models.Barber    { return c.barbers }
func (c catalog) ActiveServices() []models.Service  { return c.services }
func (c catalog) Schedule() []models.WeeklySchedule { return c.schedule }
func (c catalog) Holidays() []models.Holiday        { return c.holidays }

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

// Monday 2025-06-09 10:00; the shop opens on Tuesdays.
var monday = time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

func shop() catalog {
	return catalog{
		barbers:  []models.Barber{{ID: 1, Name: "Ana", Active: true}},
		services: []models.Service{{ID: 1, Name: "Corte", Active: true}},
		schedule: []models.WeeklySchedule{{
			Weekday: 2, Active: true, OpenTime: "09:00", CloseTime: "12:00",
		}},
	}
}

func booking() BookAppointmentInput {
	return BookAppointmentInput{
		ClientName:  "  Maria  ",
		ClientPhone: "(11) 98765-4321",
		Service:     "Corte",
		Barber:      "Ana",
		Date:        "2025-06-10",
		Time:        "09:00",
	}
}

func newBook(st *memStore, rec *recorder, cat catalog) *BookAppointment {
	return NewBookAppointment(st, cat, rec, timezone.Fixed(monday), time.Hour, time.Hour)
}

// --------------------------------------------------
// BookAppointment
// --------------------------------------------------

func TestBookAppointment_CreatesPending(t *testing.T) {
	st := &memStore{}
	rec := &recorder{}

	ap, err := newBook(st, rec, shop()).Execute(context.Background(), booking())
	require.NoError(t, err)

	assert.Equal(t, uint(1), ap.ID)
	assert.Equal(t, "pending", ap.Status)
	assert.Equal(t, "Maria", ap.ClientName)
	assert.Equal(t, "11987654321", ap.ClientPhone)
	assert.Len(t, st.rows, 1)
	assert.Equal(t, []string{"appointment_booked"}, rec.actions())
}

func TestBookAppointment_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BookAppointmentInput, *catalog, *memStore)
		code   string
	}{
		{"blank name", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.ClientName = " " }, "invalid_client_name"},
		{"bad phone", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.ClientPhone = "12ab" }, "invalid_phone"},
		{"bad date", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Date = "10/06/2025" }, "invalid_date_or_time"},
		{"bad time", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Time = "9h" }, "invalid_date_or_time"},
		{"in the past", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Date = "2025-06-03" }, "too_soon"},
		{"unknown barber", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Barber = "Zé" }, "barber_not_found"},
		{"inactive service", func(_ *BookAppointmentInput, c *catalog, _ *memStore) { c.services = nil }, "service_not_found"},
		{"outside hours", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Time = "12:00" }, "slot_unavailable"},
		{"closed weekday", func(in *BookAppointmentInput, _ *catalog, _ *memStore) { in.Date = "2025-06-11" }, "slot_unavailable"},
		{"holiday", func(_ *BookAppointmentInput, c *catalog, _ *memStore) {
			c.holidays = []models.Holiday{{Date: "2025-06-10"}}
		}, "slot_unavailable"},
		{"taken", func(_ *BookAppointmentInput, _ *catalog, s *memStore) {
			s.rows = []models.Appointment{{ID: 9, Date: "2025-06-10", Time: "09:00", Barber: "Ana", Status: "confirmed"}}
			s.nextID = 9
		}, "slot_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, cat, st := booking(), shop(), &memStore{}
			tc.mutate(&in, &cat, st)
			before := len(st.rows)

			_, err := newBook(st, &recorder{}, cat).Execute(context.Background(), in)

			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
			assert.Len(t, st.rows, before)
		})
	}
}

func TestBookAppointment_CancelledSlotIsFree(t *testing.T) {
	st := &memStore{
		rows:   []models.Appointment{{ID: 1, Date: "2025-06-10", Time: "09:00", Barber: "Ana", Status: "cancelled"}},
		nextID: 1,
	}

	_, err := newBook(st, &recorder{}, shop()).Execute(context.Background(), booking())
	assert.NoError(t, err)
}

func TestBookAppointment_RemoteFailure(t *testing.T) {
	boom := errors.New("db down")
	st := &memStore{fail: boom}
	rec := &recorder{}

	_, err := newBook(st, rec, shop()).Execute(context.Background(), booking())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.actions())
}

func TestBookAppointment_SlotTakenByAnotherInstance(t *testing.T) {
	st := &memStore{fail: fmt.Errorf("add appointments: %w", shared.ErrConflict)}
	rec := &recorder{}

	_, err := newBook(st, rec, shop()).Execute(context.Background(), booking())

	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"), "got %v", err)
	assert.Empty(t, rec.actions())
}

func TestBookAppointment_ConcurrentRequestsForOneSlot(t *testing.T) {
	st := &memStore{addDelay: 20 * time.Millisecond}
	uc := newBook(st, &recorder{}, shop())

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), booking())
		}(i)
	}
	wg.Wait()

	booked := 0
	for _, err := range errs {
		if err == nil {
			booked++
			continue
		}
		assert.True(t, httperr.IsBusiness(err, "slot_unavailable"), "got %v", err)
	}
	assert.Equal(t, 1, booked)
	assert.Len(t, st.List(), 1)
}

func TestBookAppointment_SameTimeWithDifferentBarbers(t *testing.T) {
	cat := shop()
	cat.barbers = append(cat.barbers, models.Barber{ID: 2, Name: "Bruno", Active: true})
	st := &memStore{addDelay: 10 * time.Millisecond}
	uc := newBook(st, &recorder{}, cat)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, name := range []string{"Ana", "Bruno"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			in := booking()
			in.Barber = name
			_, errs[i] = uc.Execute(context.Background(), in)
		}(i, name)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Len(t, st.List(), 2)
}

// --------------------------------------------------
// GetAvailability
// --------------------------------------------------

func TestGetAvailability(t *testing.T) {
	st := &memStore{rows: []models.Appointment{
		{ID: 1, Date: "2025-06-10", Time: "10:00", Barber: "Ana", Status: "pending"},
	}}
	uc := NewGetAvailability(st, shop(), time.Hour)

	slots, err := uc.Execute(domain.AvailabilityInput{Date: "2025-06-10", Barber: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)

	_, err = uc.Execute(domain.AvailabilityInput{Date: "junho", Barber: "Ana"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(domain.AvailabilityInput{Date: "2025-06-10"})
	assert.True(t, httperr.IsBusiness(err, "barber_required"))
}

// --------------------------------------------------
// ChangeStatus / DeleteAppointment
// --------------------------------------------------

func pendingStore() *memStore {
	return &memStore{
		rows:   []models.Appointment{{ID: 1, Date: "2025-06-10", Time: "09:00", Barber: "Ana", Status: "pending"}},
		nextID: 1,
	}
}

func TestChangeStatus(t *testing.T) {
	st := pendingStore()
	rec := &recorder{}
	uc := NewChangeStatus(st, rec)
	ctx := context.Background()

	ap, err := uc.Execute(ctx, 7, 1, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", ap.Status)

	ap, err = uc.Execute(ctx, 7, 1, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", ap.Status)

	_, err = uc.Execute(ctx, 7, 1, "cancelled")
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	assert.Equal(t, []string{"appointment_confirmed", "appointment_completed"}, rec.actions())
}

func TestChangeStatus_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewChangeStatus(pendingStore(), audit.Nop{}).Execute(ctx, 1, 1, "done")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))

	_, err = NewChangeStatus(pendingStore(), audit.Nop{}).Execute(ctx, 1, 42, "confirmed")
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))

	boom := errors.New("db down")
	st := pendingStore()
	st.fail = boom
	_, err = NewChangeStatus(st, audit.Nop{}).Execute(ctx, 1, 1, "confirmed")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "pending", st.rows[0].Status)
}

func TestDeleteAppointment(t *testing.T) {
	st := pendingStore()
	rec := &recorder{}
	uc := NewDeleteAppointment(st, rec)

	require.NoError(t, uc.Execute(context.Background(), 7, 1))
	assert.Empty(t, st.rows)
	assert.Equal(t, []string{"appointment_deleted"}, rec.actions())

	err := uc.Execute(context.Background(), 7, 1)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}

// --------------------------------------------------
// ListAppointments
// --------------------------------------------------

func TestListAppointments(t *testing.T) {
	st := &memStore{rows: []models.Appointment{
		{ID: 1, ClientName: "Maria Silva", ClientPhone: "11911112222", Date: "2025-06-01", Barber: "Ana", Status: "pending"},
		{ID: 2, ClientName: "João", ClientPhone: "11933334444", Date: "2025-06-15", Barber: "Bruno", Status: "confirmed"},
		{ID: 3, ClientName: "Pedro", ClientPhone: "11955556666", Date: "2025-07-01", Barber: "Ana", Status: "pending"},
	}}
	uc := NewListAppointments(st)

	ids := func(f ListFilter) []uint {
		t.Helper()
		out, err := uc.Execute(f)
		require.NoError(t, err)
		var got []uint
		for _, a := range out {
			got = append(got, a.ID)
		}
		return got
	}

	assert.Equal(t, []uint{1, 2, 3}, ids(ListFilter{}))
	assert.Equal(t, []uint{1, 3}, ids(ListFilter{Status: "pending"}))
	assert.Equal(t, []uint{1, 2}, ids(ListFilter{DateFrom: "2025-06-01", DateTo: "2025-06-30"}))
	assert.Equal(t, []uint{3}, ids(ListFilter{Barber: "Ana", DateFrom: "2025-06-02"}))
	assert.Equal(t, []uint{1}, ids(ListFilter{Search: "silva"}))
	assert.Equal(t, []uint{2}, ids(ListFilter{Search: "3333"}))

	_, err := uc.Execute(ListFilter{Status: "archived"})
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange(2025, 2)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", from)
	assert.Equal(t, "2025-02-31", to)

	_, _, err = MonthRange(2025, 0)
	assert.True(t, httperr.IsBusiness(err, "invalid_month"))
}
