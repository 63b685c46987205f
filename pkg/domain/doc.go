/*
Package domain contains the core domain models for the Bevy state runtime.

It defines the fundamental entities of the state graph, such as Kinds,
Transitions, and scope tags. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Descriptor: Identifies a registered state kind (primary, sub, or computed).
  - Transition: Records one kind's change during a single pass.
  - Optional: A state value that may be absent (sub and computed kinds).
  - Scope: Ties an entity or event topic to the lifetime of a state value.
  - Entity: A generational handle owned by the host's entity collaborator.
*/
package domain
