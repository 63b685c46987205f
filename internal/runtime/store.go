package runtime

import (
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// slot holds one kind's live value. Sub and computed kinds toggle present;
// primaries stay present from Build onward.
type slot struct {
	value   any
	present bool
}

// request is one queued primary mutation.
type request struct {
	kind  domain.KindID
	value any
}

// Store is the state value store: a slot per kind plus the pending primary
// requests. Values are guarded by an RWMutex so conditions and debug surfaces
// can read concurrently with user systems; the pass holds the write lock for
// its whole sweep. Pending requests live behind their own mutex, so a system
// or hook may queue a request while the sweep is running; it applies on the
// next pass.
type Store struct {
	mu    sync.RWMutex
	slots []slot

	pmu     sync.Mutex
	pending []request
	queued  map[domain.KindID]int
}

// NewStore allocates slots for n kinds, all initially absent.
func NewStore(n int) *Store {
	return &Store{
		slots:  make([]slot, n),
		queued: make(map[domain.KindID]int),
	}
}

// install grows the slot table to cover the kind and seeds its value. Called
// once per kind at registration time.
func (s *Store) install(id domain.KindID, value any, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for int(id) >= len(s.slots) {
		s.slots = append(s.slots, slot{})
	}
	s.slots[id] = slot{value: value, present: present}
}

// Get returns the kind's current value, or ok=false while it is absent.
func (s *Store) Get(id domain.KindID) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[id]
	return sl.value, sl.present
}

// SetPending queues a next value for a primary kind. At most one pending
// value is retained per kind: a second request before the next pass
// overwrites the first (last write wins) while keeping the position of the
// first submission, so the drain order stays stable. Safe to call from any
// goroutine; callers are responsible for only passing primary kinds.
func (s *Store) SetPending(id domain.KindID, value any) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if pos, ok := s.queued[id]; ok {
		s.pending[pos].value = value
		return
	}
	s.queued[id] = len(s.pending)
	s.pending = append(s.pending, request{kind: id, value: value})
}

// drainPending consumes and clears the queued requests, in request order.
func (s *Store) drainPending() []request {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	out := s.pending
	s.pending = nil
	s.queued = make(map[domain.KindID]int)
	return out
}

// lock acquires the write lock for a pass. The matching unlock releases it.
func (s *Store) lock()   { s.mu.Lock() }
func (s *Store) unlock() { s.mu.Unlock() }

// current reads a slot without taking the lock. Only the pass, while holding
// the write lock, may use it.
func (s *Store) current(id domain.KindID) (any, bool) {
	sl := s.slots[id]
	return sl.value, sl.present
}

// put writes a slot without taking the lock. Only the pass, while holding the
// write lock, may use it.
func (s *Store) put(id domain.KindID, value any, present bool) {
	s.slots[id] = slot{value: value, present: present}
}
