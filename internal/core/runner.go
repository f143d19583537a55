package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"crypto/ed25519"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/journal"
	"cosmosdeploy/internal/security"
	"cosmosdeploy/internal/storage"
	"cosmosdeploy/pkg/utils"
)

var (
	stageLabel = color.New(color.FgCyan, color.Bold)
	okLabel    = color.New(color.FgGreen)
	warnLabel  = color.New(color.FgYellow)
	failLabel  = color.New(color.FgRed, color.Bold)
)

// Runner ties together the stage plan, the executor, log storage and the
// audit journal.
type Runner struct {
	Stages     []Stage
	Env        *Env
	LogStorage *storage.LogStorage
	Journal    *journal.Journal
	RunID      string

	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	out  io.Writer

	// Outcomes of the finished run, in stage order.
	Outcomes []Outcome
}

// NewRunner assembles a runner for one deployment of rootDir. State (journal,
// logs, signing keys) lives under the configured state dir inside rootDir.
func NewRunner(cfg *config.Config, rootDir string, stages []Stage, runner CommandRunner, out io.Writer) (*Runner, error) {
	if out == nil {
		out = io.Discard
	}
	stateDir := filepath.Join(rootDir, cfg.StateDir)

	jnl, err := journal.Open(filepath.Join(stateDir, "journal.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	pub, priv, err := security.EnsureKeyPair(filepath.Join(stateDir, "keys"))
	if err != nil {
		return nil, fmt.Errorf("init journal keys: %w", err)
	}

	return &Runner{
		Stages:     stages,
		Env:        NewEnv(rootDir, cfg, runner, out),
		LogStorage: storage.NewLogStorage(filepath.Join(stateDir, "logs")),
		Journal:    jnl,
		RunID:      uuid.NewString(),
		priv:       priv,
		pub:        pub,
		out:        out,
	}, nil
}

// RunPipeline executes all stages sequentially, stopping at the first
// failure. Idempotency skips are reported and do not stop the run.
func (r *Runner) RunPipeline(ctx context.Context) error {
	fmt.Fprintf(r.out, "Deploying %s (run %s)\n", r.Env.Config.Project, r.RunID)

	for i, stage := range r.Stages {
		stageLabel.Fprintf(r.out, "\n==> Stage %d/%d: %s\n", i+1, len(r.Stages), stage.Name)

		err := stage.Run(ctx, r.Env)

		switch {
		case err == nil:
			r.record(stage.Name, journal.StatusSuccess)
			r.Outcomes = append(r.Outcomes, Outcome{Stage: stage.Name, Status: StatusSuccess})
			okLabel.Fprintf(r.out, "  stage %s ok\n", stage.Name)

		case IsSkip(err):
			r.Env.Warnf("%s", err.Error())
			r.record(stage.Name, journal.StatusSkipped)
			r.Outcomes = append(r.Outcomes, Outcome{Stage: stage.Name, Status: StatusSkipped})
			warnLabel.Fprintf(r.out, "  stage %s skipped: %s\n", stage.Name, err.Error())

		default:
			r.record(stage.Name, journal.StatusFailed)
			r.Outcomes = append(r.Outcomes, Outcome{Stage: stage.Name, Status: StatusFailed, Err: err})
			failLabel.Fprintf(r.out, "  stage %s failed: %v\n", stage.Name, err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}

	okLabel.Fprintf(r.out, "\nPipeline finished successfully\n")
	return nil
}

// record saves the stage log and appends a signed journal record.
// Journaling is best-effort; a broken journal must not change the pipeline
// outcome, so problems are reported as warnings only.
func (r *Runner) record(stage, status string) {
	output := r.Env.TakeLog()

	logPath, err := r.LogStorage.SaveLog(r.RunID, stage, output)
	if err != nil {
		warnLabel.Fprintf(r.out, "WARN: cannot save stage log: %v\n", err)
		return
	}
	logHash := utils.HashString(output)

	rec, err := journal.NewRecord(r.Journal.NextIndex(), r.RunID, stage, status, logPath, logHash, r.Journal.LastHash())
	if err != nil {
		warnLabel.Fprintf(r.out, "WARN: cannot create journal record: %v\n", err)
		return
	}
	if err := r.Journal.Append(rec, r.priv, r.pub); err != nil {
		warnLabel.Fprintf(r.out, "WARN: cannot append journal record: %v\n", err)
	}
}
