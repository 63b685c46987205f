/*
Package runner drives a built app as a long-running loop.

It is the piece between a built state graph and a live process: passes run on
a fixed interval, snapshots can be saved automatically, and cancelling the
context stops the loop after the pass in flight.

# Key Components

  - Runner: the loop driver, configured with functional options.
  - SanitizeInput: the guard every name-based request surface runs externally
    supplied values through.

# Usage

	r := runner.New(app,
		runner.WithInterval(250*time.Millisecond),
		runner.WithAutosave("autosave", 20),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
