package store

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

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
)

var errRemote = errors.New("remote unavailable")

// fakeBarbers is an in-memory Backend that assigns ids and versions the
// way the database does.
type fakeBarbers struct {
	mu     sync.Mutex
	rows   map[uint]models.Barber
	nextID uint
	fail   error
	lists  int
	// beforeUpdate runs outside the lock, so a blocked update does not
	// hold up writes to other rows.
	beforeUpdate func(models.Barber) error
}

func newFakeBarbers(rows ...models.Barber) *fakeBarbers {
	f := &fakeBarbers{rows: map[uint]models.Barber{}, nextID: 1}
	for _, r := range rows {
		if r.Version == 0 {
			r.Version = 1
		}
		f.rows[r.ID] = r
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *fakeBarbers) List(context.Context, bool) ([]models.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]models.Barber, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeBarbers) Insert(_ context.Context, row models.Barber) (models.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return models.Barber{}, f.fail
	}
	row.ID = f.nextID
	row.Version = 1
	f.nextID++
	f.rows[row.ID] = row
	return row, nil
}

func (f *fakeBarbers) Update(_ context.Context, row models.Barber) (models.Barber, error) {
	if f.beforeUpdate != nil {
		if err := f.beforeUpdate(row); err != nil {
			return models.Barber{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateLocked(row)
}

func (f *fakeBarbers) updateLocked(row models.Barber) (models.Barber, error) {
	if f.fail != nil {
		return models.Barber{}, f.fail
	}
	cur, ok := f.rows[row.ID]
	if !ok {
		return models.Barber{}, errors.New("missing")
	}
	row.Version = cur.Version + 1
	f.rows[row.ID] = row
	return row, nil
}

func (f *fakeBarbers) UpdateMany(_ context.Context, rows []models.Barber) ([]models.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Barber, 0, len(rows))
	for _, r := range rows {
		saved, err := f.updateLocked(r)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (f *fakeBarbers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBarbers) get(id uint) models.Barber {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeBarbers) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeBarbers) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func barberOptions() Options[models.Barber] {
	return Options[models.Barber]{
		Table: TableBarbers,
		Less: func(a, b models.Barber) bool {
			return byDisplayOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
		},
		IsActive:        func(b models.Barber) bool { return b.Active },
		SetActive:       func(b *models.Barber, v bool) { b.Active = v },
		SetOrder:        func(b *models.Barber, n int) { b.DisplayOrder = n },
		IncludeInactive: true,
	}
}

func barber(id uint, name string, order int) models.Barber {
	b := models.Barber{ID: id, Name: name, DisplayOrder: order, Active: true}
	b.Version = 1
	return b
}

func loaded(t *testing.T, rows ...models.Barber) (*Collection[models.Barber], *fakeBarbers) {
	t.Helper()
	backend := newFakeBarbers(rows...)
	col := NewCollection[models.Barber](backend, logger.Nop(), barberOptions())
	require.NoError(t, col.Load(context.Background()))
	return col, backend
}

func event(t *testing.T, typ realtime.EventType, row models.Barber) realtime.Event {
	t.Helper()
	var ev realtime.Event
	var err error
	if typ == realtime.Delete {
		ev, err = realtime.NewEvent(TableBarbers, typ, nil, map[string]uint{"id": row.ID})
	} else {
		ev, err = realtime.NewEvent(TableBarbers, typ, row, nil)
	}
	require.NoError(t, err)
	return ev
}

func ids(rows []models.Barber) []uint {
	out := make([]uint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func assertSorted(t *testing.T, rows []models.Barber) {
	t.Helper()
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].DisplayOrder, rows[i].DisplayOrder, "rows %v", ids(rows))
	}
}

// --------------------------------------------------
// Load
// --------------------------------------------------

func TestLoad_SortsAndClearsLoading(t *testing.T) {
	col, _ := loaded(t, barber(1, "C", 3), barber(2, "A", 1), barber(3, "B", 2))

	assert.False(t, col.Loading())
	assert.Equal(t, []uint{2, 3, 1}, ids(col.List()))
}

func TestLoad_ErrorStillClearsLoading(t *testing.T) {
	backend := newFakeBarbers()
	backend.setFail(errRemote)
	col := NewCollection[models.Barber](backend, logger.Nop(), barberOptions())

	assert.True(t, col.Loading())
	err := col.Load(context.Background())

	require.ErrorIs(t, err, errRemote)
	assert.False(t, col.Loading())
	assert.ErrorIs(t, col.LoadErr(), errRemote)
}

// --------------------------------------------------
// Apply
// --------------------------------------------------

func TestApply_InsertIgnoresKnownID(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))

	dup := barber(1, "A again", 1)
	dup.Version = 5
	require.NoError(t, col.Apply(event(t, realtime.Insert, dup)))

	rows := col.List()
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Name)
}

func TestApply_UpdateOfUnknownRowInserts(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 2))

	require.NoError(t, col.Apply(event(t, realtime.Update, barber(7, "Z", 1))))

	assert.Equal(t, []uint{7, 1}, ids(col.List()))
}

func TestApply_UpdateResorts(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1), barber(2, "B", 2))

	moved := barber(1, "A", 3)
	moved.Version = 2
	require.NoError(t, col.Apply(event(t, realtime.Update, moved)))

	assert.Equal(t, []uint{2, 1}, ids(col.List()))
}

func TestApply_DeleteRemovesByID(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1), barber(2, "B", 2))

	require.NoError(t, col.Apply(event(t, realtime.Delete, barber(1, "", 0))))
	require.NoError(t, col.Apply(event(t, realtime.Delete, barber(99, "", 0))))

	assert.Equal(t, []uint{2}, ids(col.List()))
}

func TestApply_UnknownTypeIsError(t *testing.T) {
	col, _ := loaded(t)
	err := col.Apply(realtime.Event{Table: TableBarbers, Type: "TRUNCATE"})
	assert.Error(t, err)
}

func TestApply_OneEntryPerLivingID(t *testing.T) {
	col, _ := loaded(t)

	type step struct {
		typ realtime.EventType
		id  uint
	}
	steps := []step{
		{realtime.Insert, 1}, {realtime.Insert, 2}, {realtime.Insert, 1},
		{realtime.Update, 3}, {realtime.Update, 2}, {realtime.Delete, 1},
		{realtime.Insert, 4}, {realtime.Update, 4}, {realtime.Delete, 5},
		{realtime.Insert, 1}, {realtime.Delete, 3}, {realtime.Update, 3},
	}

	present := map[uint]bool{}
	version := map[uint]int64{}
	for _, s := range steps {
		version[s.id]++
		row := barber(s.id, "n", int(s.id))
		row.Version = version[s.id]
		require.NoError(t, col.Apply(event(t, s.typ, row)))
		present[s.id] = s.typ != realtime.Delete
	}

	var want []uint
	for id, ok := range present {
		if ok {
			want = append(want, id)
		}
	}
	slices.Sort(want)

	got := ids(col.List())
	slices.Sort(got)
	assert.Equal(t, want, got)
	assertSorted(t, col.List())
}

// --------------------------------------------------
// Echo guard
// --------------------------------------------------

func TestApply_EchoOfHeldVersionIsNoop(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))

	stale := barber(1, "stale", 1)
	stale.Version = 1
	require.NoError(t, col.Apply(event(t, realtime.Update, stale)))

	got, ok := col.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
}

func TestApply_NewerVersionWins(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))

	newer := barber(1, "A2", 1)
	newer.Version = 2
	require.NoError(t, col.Apply(event(t, realtime.Update, newer)))

	got, _ := col.Get(1)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdate_RealtimeEchoAfterWriteIsNoop(t *testing.T) {
	col, backend := loaded(t, barber(1, "A", 1))
	ctx := context.Background()

	row, _ := col.Get(1)
	row.Name = "Renamed"
	saved, err := col.Update(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	// a later admin edit lands before the echo of the first one
	row = saved
	row.Name = "Renamed twice"
	_, err = col.Update(ctx, row)
	require.NoError(t, err)

	echo := backend.rows[1]
	echo.Name = "Renamed"
	echo.Version = 2
	require.NoError(t, col.Apply(event(t, realtime.Update, echo)))

	got, _ := col.Get(1)
	assert.Equal(t, "Renamed twice", got.Name)
}

// --------------------------------------------------
// Mutations
// --------------------------------------------------

func TestAdd_ReplacesPlaceholderWithStoredRow(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))

	saved, err := col.Add(context.Background(), models.Barber{Name: "B", DisplayOrder: 2, Active: true})
	require.NoError(t, err)
	assert.Equal(t, uint(2), saved.ID)

	assert.Equal(t, []uint{1, 2}, ids(col.List()))

	// the INSERT echo changes nothing
	require.NoError(t, col.Apply(event(t, realtime.Insert, saved)))
	assert.Equal(t, []uint{1, 2}, ids(col.List()))
}

func TestMutations_KeepDisplayOrder(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1), barber(2, "B", 2), barber(3, "C", 3))
	ctx := context.Background()

	_, err := col.Add(ctx, models.Barber{Name: "D", DisplayOrder: 0, Active: true})
	require.NoError(t, err)
	assertSorted(t, col.List())

	row, _ := col.Get(1)
	row.DisplayOrder = 10
	_, err = col.Update(ctx, row)
	require.NoError(t, err)
	assertSorted(t, col.List())

	_, err = col.Reorder(ctx, []uint{3, 1, 2, 4})
	require.NoError(t, err)
	assertSorted(t, col.List())
	assert.Equal(t, []uint{3, 1, 2, 4}, ids(col.List()))

	_, err = col.ToggleActive(ctx, 2)
	require.NoError(t, err)
	assertSorted(t, col.List())

	require.NoError(t, col.Delete(ctx, 3))
	assertSorted(t, col.List())
}

func TestToggleActive(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1), barber(2, "B", 2))

	row, err := col.ToggleActive(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, row.Active)
	assert.Equal(t, []uint{2}, ids(col.Active()))
	assert.Len(t, col.List(), 2)
}

func TestMutations_NotFound(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))
	ctx := context.Background()

	_, err := col.Update(ctx, barber(9, "x", 1))
	assert.Error(t, err)
	assert.Error(t, col.Delete(ctx, 9))
	_, err = col.ToggleActive(ctx, 9)
	assert.Error(t, err)
	_, err = col.Reorder(ctx, []uint{1, 9})
	assert.Error(t, err)
	assert.Equal(t, []uint{1}, ids(col.List()))
}

func TestRollback_RestoresConfirmedRows(t *testing.T) {
	ctx := context.Background()

	mutations := map[string]func(*Collection[models.Barber]) error{
		"add": func(c *Collection[models.Barber]) error {
			_, err := c.Add(ctx, models.Barber{Name: "New", DisplayOrder: 0})
			return err
		},
		"update": func(c *Collection[models.Barber]) error {
			row, _ := c.Get(2)
			row.Name = "Changed"
			row.DisplayOrder = 0
			_, err := c.Update(ctx, row)
			return err
		},
		"delete": func(c *Collection[models.Barber]) error {
			return c.Delete(ctx, 1)
		},
		"toggle": func(c *Collection[models.Barber]) error {
			_, err := c.ToggleActive(ctx, 3)
			return err
		},
		"reorder": func(c *Collection[models.Barber]) error {
			_, err := c.Reorder(ctx, []uint{3, 2, 1})
			return err
		},
		"update many": func(c *Collection[models.Barber]) error {
			a, _ := c.Get(1)
			b, _ := c.Get(3)
			a.Active, b.Name = false, "Changed"
			_, err := c.UpdateMany(ctx, []models.Barber{a, b})
			return err
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			col, backend := loaded(t, barber(1, "A", 1), barber(2, "B", 2), barber(3, "C", 3))
			before := col.List()

			backend.setFail(errRemote)
			err := mutate(col)

			require.ErrorIs(t, err, errRemote)
			assert.Equal(t, before, col.List())
		})
	}
}

// blockUpdate makes the backend hold updates whose name is name until
// release is closed, then answer with result.
func blockUpdate(backend *fakeBarbers, name string, result error) (entered, release chan struct{}) {
	entered, release = make(chan struct{}), make(chan struct{})
	backend.beforeUpdate = func(row models.Barber) error {
		if row.Name != name {
			return nil
		}
		close(entered)
		<-release
		return result
	}
	return entered, release
}

func TestRollback_KeepsConcurrentWriteToOtherRow(t *testing.T) {
	col, backend := loaded(t, barber(1, "A", 1), barber(2, "B", 2))
	entered, release := blockUpdate(backend, "A-failing", errRemote)
	ctx := context.Background()

	failed := make(chan error, 1)
	go func() {
		row, _ := col.Get(1)
		row.Name = "A-failing"
		_, err := col.Update(ctx, row)
		failed <- err
	}()
	<-entered

	row, _ := col.Get(2)
	row.Name = "B-renamed"
	saved, err := col.Update(ctx, row)
	require.NoError(t, err)
	require.NoError(t, col.Apply(event(t, realtime.Update, saved)))

	close(release)
	require.ErrorIs(t, <-failed, errRemote)

	assert.Equal(t, backend.get(1), mustGet(t, col, 1))
	assert.Equal(t, backend.get(2), mustGet(t, col, 2))
	assert.Equal(t, "B-renamed", mustGet(t, col, 2).Name)
	assert.Equal(t, int64(2), mustGet(t, col, 2).Version)
}

func TestRollback_RestoresRowChangedByAnotherWriter(t *testing.T) {
	col, backend := loaded(t, barber(1, "A", 1))
	entered, release := blockUpdate(backend, "A-failing", errRemote)
	ctx := context.Background()

	failed := make(chan error, 1)
	go func() {
		row, _ := col.Get(1)
		row.Name = "A-failing"
		_, err := col.Update(ctx, row)
		failed <- err
	}()
	<-entered

	// another instance wrote the row while ours was in flight
	other := barber(1, "Other", 1)
	other.Version = 2
	require.NoError(t, col.Apply(event(t, realtime.Update, other)))

	close(release)
	require.ErrorIs(t, <-failed, errRemote)

	got := mustGet(t, col, 1)
	assert.Equal(t, "Other", got.Name)
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdate_StampsFromConfirmedVersion(t *testing.T) {
	col, backend := loaded(t, barber(1, "A", 1))
	entered, release := blockUpdate(backend, "slow", nil)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		row, _ := col.Get(1)
		row.Name = "slow"
		_, err := col.Update(ctx, row)
		slow <- err
	}()
	<-entered

	row, _ := col.Get(1)
	row.Name = "fast"
	saved, err := col.Update(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)
	assert.Equal(t, backend.get(1), mustGet(t, col, 1))

	close(release)
	require.NoError(t, <-slow)

	got := mustGet(t, col, 1)
	assert.Equal(t, backend.get(1), got)
	assert.Equal(t, "slow", got.Name)
	assert.Equal(t, int64(3), got.Version)
}

func TestRollback_ConcurrentMutationsMatchBackend(t *testing.T) {
	col, backend := loaded(t, barber(1, "A", 1), barber(2, "B", 2), barber(3, "C", 3), barber(4, "D", 4))
	backend.beforeUpdate = func(row models.Barber) error {
		if row.ID%2 == 1 {
			return errRemote
		}
		return nil
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for round := 0; round < 20; round++ {
		for id := uint(1); id <= 4; id++ {
			wg.Add(1)
			go func(id uint, round int) {
				defer wg.Done()
				row, ok := col.Get(id)
				if !ok {
					return
				}
				row.Name = fmt.Sprintf("r%d", round)
				_, _ = col.Update(ctx, row)
			}(id, round)
		}
	}
	wg.Wait()

	for id := uint(1); id <= 4; id++ {
		assert.Equal(t, backend.get(id), mustGet(t, col, id), "row %d", id)
	}
	assertSorted(t, col.List())
}

func mustGet(t *testing.T, col *Collection[models.Barber], id uint) models.Barber {
	t.Helper()
	row, ok := col.Get(id)
	require.True(t, ok, "row %d missing", id)
	return row
}

func TestReorder_WithoutOrderField(t *testing.T) {
	backend := newFakeBarbers(barber(1, "A", 1))
	opts := barberOptions()
	opts.SetOrder = nil
	col := NewCollection[models.Barber](backend, logger.Nop(), opts)

	_, err := col.Reorder(context.Background(), []uint{1})
	assert.ErrorIs(t, err, errNoOrder)
}

// --------------------------------------------------
// Observe
// --------------------------------------------------

func TestSubscribe_ReceivesPendingThenConfirmed(t *testing.T) {
	col, _ := loaded(t, barber(1, "A", 1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := col.Subscribe(ctx)

	row, _ := col.Get(1)
	row.Name = "B"
	_, err := col.Update(context.Background(), row)
	require.NoError(t, err)

	first := <-changes
	second := <-changes
	assert.True(t, first.Pending)
	assert.Equal(t, Updated, first.Type)
	assert.False(t, second.Pending)
	assert.Equal(t, uint(1), second.ID)
}

func TestClose_ReleasesObservers(t *testing.T) {
	col, _ := loaded(t)
	changes := col.Subscribe(context.Background())

	col.Close()

	_, ok := <-changes
	assert.False(t, ok)

	// subscribing after close yields a closed stream
	_, ok = <-col.Subscribe(context.Background())
	assert.False(t, ok)
}

// --------------------------------------------------
// Run
// --------------------------------------------------

func TestRun_AppliesEventsAndReloadsAfterChannelError(t *testing.T) {
	broker := realtime.NewBroker(logger.Nop())
	backend := newFakeBarbers(barber(1, "A", 1))
	col := NewCollection[models.Barber](backend, logger.Nop(), barberOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = col.Run(ctx, broker, 20*time.Millisecond)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return !col.Loading() }, time.Second, 5*time.Millisecond)

	ev := event(t, realtime.Insert, barber(2, "B", 2))
	require.Eventually(t, func() bool {
		_ = broker.Publish(ctx, ev)
		_, ok := col.Get(2)
		return ok
	}, time.Second, 10*time.Millisecond)

	broker.Fail(realtime.ErrTimedOut)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, backend.listCalls(), "a timeout must not reload")

	broker.Fail(realtime.ErrChannel)
	require.Eventually(t, func() bool { return backend.listCalls() == 2 }, time.Second, 5*time.Millisecond)
}
