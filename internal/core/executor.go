package core

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// CommandRunner abstracts external command execution so pipeline tests can
// substitute a scripted fake.
type CommandRunner interface {
	// Run executes a shell command in dir and returns its combined output.
	Run(ctx context.Context, dir, command string, timeout time.Duration) (string, error)

	// LookPath resolves an executable name on PATH.
	LookPath(name string) (string, error)
}

// Executor runs commands through the shell, bounded by a timeout.
type Executor struct{}

// NewExecutor returns the real command runner.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run executes a single command (sh -c "cmd") in dir and returns its combined
// stdout+stderr.
func (e *Executor) Run(ctx context.Context, dir, command string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// LookPath resolves name on the execution PATH.
func (e *Executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
