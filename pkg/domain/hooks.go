package domain

import "context"

// Hook runs during the enter or exit phase of a pass.
type Hook func(ctx context.Context) error

// TransitionHook runs during the transition phase and receives the record
// that triggered it.
type TransitionHook func(ctx context.Context, tr Transition) error

// Condition gates a system. Conditions are pure: they read the post-pass
// snapshot and must not mutate state, so the scheduler may evaluate them any
// number of times.
type Condition func() bool

// System is a unit of host work executed once per tick when all of its
// conditions hold.
type System func(ctx context.Context) error
