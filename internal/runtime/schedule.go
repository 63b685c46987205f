package runtime

import (
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// hookKey addresses the enter/exit callback lists of one state value.
type hookKey struct {
	kind  domain.KindID
	value any
}

// Schedule holds the three callback groups per kind: on-enter and on-exit
// keyed by value, on-transition keyed by kind alone. The schedule only stores
// group membership; the app decides when each phase runs.
type Schedule struct {
	mu    sync.RWMutex
	enter map[hookKey][]domain.Hook
	exit  map[hookKey][]domain.Hook
	trans map[domain.KindID][]domain.TransitionHook
}

func NewSchedule() *Schedule {
	return &Schedule{
		enter: make(map[hookKey][]domain.Hook),
		exit:  make(map[hookKey][]domain.Hook),
		trans: make(map[domain.KindID][]domain.TransitionHook),
	}
}

// OnEnter appends a hook run whenever the kind enters the given value.
func (s *Schedule) OnEnter(id domain.KindID, value any, h domain.Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := hookKey{kind: id, value: value}
	s.enter[k] = append(s.enter[k], h)
}

// OnExit appends a hook run whenever the kind leaves the given value.
func (s *Schedule) OnExit(id domain.KindID, value any, h domain.Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := hookKey{kind: id, value: value}
	s.exit[k] = append(s.exit[k], h)
}

// OnTransition appends a hook run for every change of the kind, with both
// endpoints of the record.
func (s *Schedule) OnTransition(id domain.KindID, h domain.TransitionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trans[id] = append(s.trans[id], h)
}

// EnterHooks returns the hooks registered for entering the value.
func (s *Schedule) EnterHooks(id domain.KindID, value any) []domain.Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Hook(nil), s.enter[hookKey{kind: id, value: value}]...)
}

// ExitHooks returns the hooks registered for leaving the value.
func (s *Schedule) ExitHooks(id domain.KindID, value any) []domain.Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Hook(nil), s.exit[hookKey{kind: id, value: value}]...)
}

// TransitionHooks returns the hooks registered for any change of the kind.
func (s *Schedule) TransitionHooks(id domain.KindID) []domain.TransitionHook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TransitionHook(nil), s.trans[id]...)
}
