package main

import (
	"fmt"
	"log/slog"

	"github.com/Git0Shuai/bevy"
	"github.com/Git0Shuai/bevy/internal/logging"
	"github.com/Git0Shuai/bevy/pkg/schema"
)

// createLogger configures the command logger. Debug mode writes to stderr
// (to keep stdout free for prompts and command output); otherwise logs are
// discarded.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// buildApp assembles an app from a manifest, or the built-in demo graph when
// no manifest path is given. The returned app is already built.
func buildApp(manifestPath string, opts ...bevy.Option) (*bevy.App, error) {
	app := bevy.New("bevy", opts...)

	if manifestPath == "" {
		if err := demoGraph(app); err != nil {
			return nil, err
		}
	} else {
		m, err := schema.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		if err := schema.Apply(app, m, placeholderDerivations(m)); err != nil {
			return nil, err
		}
	}

	if err := app.Build(); err != nil {
		return nil, fmt.Errorf("build state graph: %w", err)
	}
	return app, nil
}

// demoGraph registers the game-flow example: a Mode primary, a Paused sub
// active during combat, and a ShowHUD computed over both.
func demoGraph(app *bevy.App) error {
	mode, err := bevy.AddState(app, "Mode", "Menu")
	if err != nil {
		return err
	}
	paused, err := bevy.AddSubState(app, "Paused", mode, func(m string) bool { return m == "Combat" }, false)
	if err != nil {
		return err
	}
	_, err = bevy.AddComputedState2(app, "ShowHUD", mode, paused, func(m string, p bool) (bool, bool) {
		return m == "Combat" && !p, true
	})
	return err
}

// placeholderDerivations covers every computed kind in the manifest with a
// derivation that keeps it absent. Manifest-driven tools can render and serve
// the graph shape, but computed values need derivations bound in code.
func placeholderDerivations(m schema.Manifest) schema.Derivations {
	derivations := schema.Derivations{}
	for _, s := range m.States {
		if s.Kind != schema.KindComputed {
			continue
		}
		slog.Warn("computed state has no derivation bound, it will stay absent", "state", s.Name)
		derivations[s.Name] = func([]any) (any, bool) { return nil, false }
	}
	return derivations
}
