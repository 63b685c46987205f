package memory

import (
	"sync"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// worldSlot is one arena cell. The generation survives the entity: it is
// bumped on despawn, so stale handles can be told apart from the slot's next
// occupant.
type worldSlot struct {
	gen   uint32
	alive bool
}

// World implements ports.World with a generational arena and named event
// topics. Despawns and event clears are queued and applied by Flush, never
// in place, so iteration elsewhere stays valid during a pass.
// Safe for concurrent use.
type World struct {
	mu      sync.RWMutex
	slots   []worldSlot
	free    []uint32
	despawn []domain.Entity
	clears  []string
	topics  map[string][]any
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		topics: make(map[string][]any),
	}
}

// Spawn allocates a live entity, reusing freed slots when available.
func (w *World) Spawn() domain.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	if n := len(w.free); n > 0 {
		idx := w.free[n-1]
		w.free = w.free[:n-1]
		w.slots[idx].alive = true
		return domain.Entity{Index: idx, Gen: w.slots[idx].gen}
	}

	w.slots = append(w.slots, worldSlot{gen: 1, alive: true})
	return domain.Entity{Index: uint32(len(w.slots) - 1), Gen: 1}
}

// Alive reports whether the handle refers to a live entity. A stale handle
// whose slot was reused reports false.
func (w *World) Alive(e domain.Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if int(e.Index) >= len(w.slots) {
		return false
	}
	sl := w.slots[e.Index]
	return sl.alive && sl.gen == e.Gen
}

// QueueDespawn marks the entity for destruction at the next Flush. Dead and
// duplicate handles are tolerated; the flush skips them.
func (w *World) QueueDespawn(e domain.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.despawn = append(w.despawn, e)
}

// QueueClearEvents marks a topic's buffered events for removal at the next
// Flush.
func (w *World) QueueClearEvents(topic string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clears = append(w.clears, topic)
}

// Flush drains queued despawns and event clears. Each despawn bumps the
// slot's generation so handles issued before the flush go stale.
func (w *World) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.despawn {
		if int(e.Index) >= len(w.slots) {
			continue
		}
		sl := &w.slots[e.Index]
		if !sl.alive || sl.gen != e.Gen {
			continue
		}
		sl.alive = false
		sl.gen++
		w.free = append(w.free, e.Index)
	}
	w.despawn = nil

	for _, topic := range w.clears {
		delete(w.topics, topic)
	}
	w.clears = nil
}

// Emit appends an event to a topic's buffer.
func (w *World) Emit(topic string, event any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.topics[topic] = append(w.topics[topic], event)
}

// Events returns a copy of the topic's buffered events.
func (w *World) Events(topic string) []any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]any(nil), w.topics[topic]...)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, sl := range w.slots {
		if sl.alive {
			n++
		}
	}
	return n
}
