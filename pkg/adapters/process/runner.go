// Package process runs allow-listed external commands as systems: shell
// hooks that fire while a state condition holds, with the current state
// values exported into the child environment.
package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/Git0Shuai/bevy/pkg/domain"
)

// ValueSource provides the state values exported to executed commands.
// *bevy.App satisfies it.
type ValueSource interface {
	Descriptors() []domain.Descriptor
	Value(kind string) (string, bool)
}

// Runner executes local processes. It follows a Strict Registry pattern for
// security (Allow-Listing): nothing runs unless it was registered first.
type Runner struct {
	registry map[string]RegisteredProcess
	source   ValueSource
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			r.registry[name] = RegisteredProcess{
				Command: c.Command,
				Args:    c.Args,
				Env:     c.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner. The source may be nil, in which
// case commands run without state variables.
func NewRunner(source ValueSource, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		source:   source,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted script/command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// System returns a system that executes the named registered command. Wire
// it with a condition so it only fires while the right state holds:
//
//	app.AddSystem("combat-alert", runner.System("alert"), hud.InState(true))
func (r *Runner) System(name string) domain.System {
	return func(ctx context.Context) error {
		return r.Run(ctx, name)
	}
}

// Run executes the named command once, exporting every present state value
// as a BEVY_STATE_* environment variable.
func (r *Runner) Run(ctx context.Context, name string) error {
	proc, ok := r.registry[name]
	if !ok {
		return fmt.Errorf("process not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir

	// Security: state values travel as environment variables, never as
	// command line flags. This prevents flag injection from state content.
	env := make([]string, 0, len(proc.Env)+8)
	for k, v := range proc.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	if r.source != nil {
		for _, d := range r.source.Descriptors() {
			v, present := r.source.Value(d.Name)
			if !present {
				continue
			}
			env = append(env, fmt.Sprintf("BEVY_STATE_%s=%s", envKey(d.Name), v))
		}
	}
	cmd.Env = append(cmd.Environ(), env...)

	// Capture Output
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("process %s failed: %w. Stderr: %s", name, err, stderr.String())
	}

	if out := strings.TrimSpace(stdout.String()); out != "" {
		slog.Debug("process output", "process", name, "output", out)
	}
	return nil
}

// envKey uppercases a kind name and replaces anything that cannot appear in
// an environment variable name.
func envKey(name string) string {
	var b strings.Builder
	for _, c := range strings.ToUpper(name) {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
