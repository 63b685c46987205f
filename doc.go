/*
Package bevy implements a hierarchical state machine runtime organized around
a dependency graph of state kinds.

# Concept

A state kind is a named slot that is either absent or holds exactly one value
of its type. Kinds come in three variants:

  - Primary kinds hold a value from the first pass on and change only through
    explicit requests.
  - Sub kinds exist while a predicate over their parent's value holds,
    re-activating at a declared default each time.
  - Computed kinds derive their value from one or more source kinds on every
    pass and are absent whenever a source is absent or the derivation
    declines.

Requests never apply immediately. They are queued and applied at the next
Tick, which runs a single transition pass: pending requests first, then one
topological sweep that settles every dependent kind. Each pass yields
transition records that drive the callback phases (all exits, then
transitions, then enters) and one-shot scoped cleanup against the world.

# Key Features

  - Deterministic propagation: one sweep per pass reaches the fixed point,
    dependency cycles are rejected at build time.
  - Typed handles: State, SubState and ComputedState wrap kinds in a
    compile-time safe API; mutation exists only on primary handles.
  - Run conditions: InState and Changed gate per-tick systems.
  - Scoped cleanup: entities despawn and event topics clear when a kind
    enters or leaves a given value.
  - Snapshots: settable state encodes to strings for persistence and restore
    through the regular request path.
  - Pluggable edges: world, snapshot store, transition journal and observers
    are all interfaces with in-memory, file, Redis, SQLite and Prometheus
    implementations.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log/slog"
		"os"

		"github.com/Git0Shuai/bevy"
	)

	func main() {
		app := bevy.New("game", bevy.WithLogger(slog.New(
			slog.NewTextHandler(os.Stderr, nil),
		)))

		mode, err := bevy.AddState(app, "Mode", "Menu")
		if err != nil {
			panic(err)
		}
		paused, err := bevy.AddSubState(app, "Paused", mode,
			func(m string) bool { return m == "Combat" }, false)
		if err != nil {
			panic(err)
		}
		_ = paused

		mode.OnEnter("Combat", func(ctx context.Context) error {
			fmt.Println("fight!")
			return nil
		})

		if err := app.Build(); err != nil {
			panic(err)
		}

		ctx := context.Background()
		mode.Set("Combat")
		if err := app.Tick(ctx); err != nil {
			panic(err)
		}
	}
*/
package bevy
