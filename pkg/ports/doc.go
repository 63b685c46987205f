/*
Package ports defines the driven ports (interfaces) for the Bevy state runtime.

These interfaces decouple the core logic from the surrounding engine, allowing
the runtime to work with various entity collaborators, snapshot backends, and
transition journals.

# Key Interfaces

  - World: The host's entity/event facility (spawn, deferred despawn, drain).
  - SnapshotStore: Persists named snapshots of primary state values.
  - TransitionJournal: Receives every transition record for audit trails.
*/
package ports
