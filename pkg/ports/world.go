package ports

import "github.com/Git0Shuai/bevy/pkg/domain"

// World is the entity and event collaborator owned by the host engine. The
// runtime never destroys anything in place: scoped cleanup queues work here,
// and the app drains the queue once per tick, after callbacks run and before
// the next pass begins.
type World interface {
	// Spawn allocates a live entity and returns its generational handle.
	Spawn() domain.Entity

	// Alive reports whether the handle refers to a live entity. A handle
	// whose slot was reused by a later Spawn is not alive.
	Alive(e domain.Entity) bool

	// QueueDespawn marks the entity for destruction at the next Flush.
	// Queuing a dead or already-queued entity is a no-op.
	QueueDespawn(e domain.Entity)

	// QueueClearEvents marks the topic's buffered events for removal at the
	// next Flush.
	QueueClearEvents(topic string)

	// Flush drains queued despawns and event clears.
	Flush()
}
