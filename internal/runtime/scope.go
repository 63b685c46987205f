package runtime

import (
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
)

// ScopeSet tracks entities and event topics whose lifetime is bound to a
// state value. When a pass produces a record whose edge matches a scope's
// polarity, the tagged resources are queued for cleanup on the world; nothing
// is destroyed in place.
type ScopeSet struct {
	mu       sync.Mutex
	entities map[domain.Scope][]domain.Entity
	topics   map[domain.Scope][]string
}

func NewScopeSet() *ScopeSet {
	return &ScopeSet{
		entities: make(map[domain.Scope][]domain.Entity),
		topics:   make(map[domain.Scope][]string),
	}
}

// TagEntity binds an entity's lifetime to the scope.
func (s *ScopeSet) TagEntity(e domain.Entity, sc domain.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[sc] = append(s.entities[sc], e)
}

// TagTopic binds an event topic's buffered contents to the scope. Unlike
// entities, topics survive their cleanup: the buffer is cleared, the scope
// stays armed for the next matching transition.
func (s *ScopeSet) TagTopic(topic string, sc domain.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[sc] = append(s.topics[sc], topic)
}

// Apply inspects the final records of a pass and queues cleanup for every
// scope whose edge fired. Entity tags are consumed; topic tags persist.
func (s *ScopeSet) Apply(records []domain.Transition, w ports.World) {
	if w == nil || len(records) == 0 {
		return
	}

	byKind := make(map[domain.KindID]domain.Transition, len(records))
	for _, r := range records {
		byKind[r.Kind] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for sc, ents := range s.entities {
		r, ok := byKind[sc.Kind]
		if !ok || !scopeFired(sc, r) {
			continue
		}
		for _, e := range ents {
			w.QueueDespawn(e)
		}
		delete(s.entities, sc)
	}

	for sc, topics := range s.topics {
		r, ok := byKind[sc.Kind]
		if !ok || !scopeFired(sc, r) {
			continue
		}
		for _, topic := range topics {
			w.QueueClearEvents(topic)
		}
	}
}

// scopeFired reports whether the record crosses the scope's edge: for
// despawn-on-exit the old value matches and the new one does not, for
// despawn-on-enter the reverse. Passes where the scope condition does not
// change never fire.
func scopeFired(sc domain.Scope, r domain.Transition) bool {
	wasAt := r.From.Valid && r.From.Value == sc.Value
	isAt := r.To.Valid && r.To.Value == sc.Value

	switch sc.Polarity {
	case domain.OnExit:
		return wasAt && !isAt
	case domain.OnEnter:
		return isAt && !wasAt
	default:
		return false
	}
}
