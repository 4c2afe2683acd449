package appointment

import "sync"

// slotLocks serializes bookings that compete for the same barber and date,
// so the availability check and the insert happen as one step inside this
// process. Across processes the unique slot index has the final word.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func (s *slotLocks) lock(barber, date string) (unlock func()) {
	key := barber + "|" + date

	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*slotLock)
	}
	l, ok := s.locks[key]
	if !ok {
		l = &slotLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
