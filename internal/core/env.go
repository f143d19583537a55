package core

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cosmosdeploy/internal/config"
)

// Env is the execution environment handed to every stage. The root directory
// is explicit here so no stage ever changes the process working directory.
type Env struct {
	RootDir string
	Config  *config.Config
	Runner  CommandRunner
	Out     io.Writer

	log bytes.Buffer
}

// NewEnv creates an environment for one pipeline run.
func NewEnv(rootDir string, cfg *config.Config, runner CommandRunner, out io.Writer) *Env {
	if out == nil {
		out = io.Discard
	}
	return &Env{RootDir: rootDir, Config: cfg, Runner: runner, Out: out}
}

// Logf writes a line to the console and to the stage log.
func (e *Env) Logf(format string, args ...any) {
	line := fmt.Sprintf(format+"\n", args...)
	fmt.Fprint(e.Out, line)
	e.log.WriteString(line)
}

// Warnf writes a warning line to the console and to the stage log.
func (e *Env) Warnf(format string, args ...any) {
	e.Logf("WARN: "+format, args...)
}

// Exec runs a shell command in dir, captures its combined output into the
// stage log and returns it. The command is echoed first so logs read like a
// session transcript.
func (e *Env) Exec(ctx context.Context, dir, command string) (string, error) {
	e.Logf("$ %s", command)
	out, err := e.Runner.Run(ctx, dir, command, e.Config.CommandTimeout())
	if out != "" {
		fmt.Fprint(e.Out, out)
		e.log.WriteString(out)
	}
	if err != nil {
		return out, fmt.Errorf("%s: %w", command, err)
	}
	return out, nil
}

// TakeLog returns the captured log for the current stage and resets the
// buffer for the next one.
func (e *Env) TakeLog() string {
	out := e.log.String()
	e.log.Reset()
	return out
}
