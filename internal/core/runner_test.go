package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"cosmosdeploy/internal/config"
	"cosmosdeploy/internal/journal"
)

// fakeRunner is a scripted CommandRunner for pipeline tests.
type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) Run(ctx context.Context, dir, command string, timeout time.Duration) (string, error) {
	f.calls = append(f.calls, command)
	return "", nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func newTestRunner(t *testing.T, stages []Stage) *Runner {
	t.Helper()
	cfg := config.Default()
	r, err := NewRunner(cfg, t.TempDir(), stages, &fakeRunner{}, io.Discard)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	return r
}

func namedStage(name string, ran *bool, err error) Stage {
	return Stage{
		Name: name,
		Run: func(ctx context.Context, env *Env) error {
			*ran = true
			return err
		},
	}
}

func TestNewRunnerInitializesFreshRoot(t *testing.T) {
	// nothing exists under the root yet, not even the state dir
	cfg := config.Default()
	root := t.TempDir()

	var ran bool
	r, err := NewRunner(cfg, root, []Stage{namedStage("only", &ran, nil)}, &fakeRunner{}, io.Discard)
	if err != nil {
		t.Fatalf("NewRunner on fresh root failed: %v", err)
	}
	if err := r.RunPipeline(context.Background()); err != nil {
		t.Fatalf("pipeline on fresh root failed: %v", err)
	}
	if !ran {
		t.Errorf("stage did not run")
	}
	if got := len(r.Journal.Records()); got != 1 {
		t.Errorf("expected 1 journal record, got %d", got)
	}
}

func TestRunPipelineStopsAtFirstFailure(t *testing.T) {
	var ranA, ranB, ranC bool
	stages := []Stage{
		namedStage("a", &ranA, nil),
		namedStage("b", &ranB, errors.New("boom")),
		namedStage("c", &ranC, nil),
	}

	r := newTestRunner(t, stages)
	err := r.RunPipeline(context.Background())
	if err == nil {
		t.Fatalf("expected pipeline failure")
	}

	if !ranA || !ranB {
		t.Errorf("stages before the failure did not run (a=%v b=%v)", ranA, ranB)
	}
	if ranC {
		t.Errorf("stage after the failure ran")
	}
	if len(r.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(r.Outcomes))
	}
	if r.Outcomes[1].Status != StatusFailed {
		t.Errorf("failing stage not recorded as failed: %+v", r.Outcomes[1])
	}
}

func TestRunPipelineContinuesPastSkip(t *testing.T) {
	var ranA, ranB bool
	stages := []Stage{
		namedStage("init", &ranA, Skip("already initialized")),
		namedStage("next", &ranB, nil),
	}

	r := newTestRunner(t, stages)
	if err := r.RunPipeline(context.Background()); err != nil {
		t.Fatalf("skip should not fail the pipeline: %v", err)
	}

	if !ranB {
		t.Errorf("stage after a skip did not run")
	}
	if r.Outcomes[0].Status != StatusSkipped {
		t.Errorf("skip not recorded: %+v", r.Outcomes[0])
	}
}

func TestRunPipelineJournalsEveryStage(t *testing.T) {
	var a, b, c bool
	stages := []Stage{
		namedStage("ok", &a, nil),
		namedStage("skipped", &b, Skip("done before")),
		namedStage("broken", &c, errors.New("exit status 1")),
	}

	r := newTestRunner(t, stages)
	_ = r.RunPipeline(context.Background())

	recs := r.Journal.Records()
	if len(recs) != 3 {
		t.Fatalf("expected 3 journal records, got %d", len(recs))
	}

	want := []string{journal.StatusSuccess, journal.StatusSkipped, journal.StatusFailed}
	for i, rec := range recs {
		if rec.Status != want[i] {
			t.Errorf("record %d status = %s, want %s", i, rec.Status, want[i])
		}
		if rec.RunID != r.RunID {
			t.Errorf("record %d carries wrong run id %s", i, rec.RunID)
		}
	}

	if err := r.Journal.Verify(); err != nil {
		t.Errorf("journal failed verification after run: %v", err)
	}
}

func TestSeparateRunsChainInJournal(t *testing.T) {
	// two consecutive runs against the same state dir chain their records
	cfg := config.Default()
	root := t.TempDir()

	var ran bool
	for i := 0; i < 2; i++ {
		r, err := NewRunner(cfg, root, []Stage{namedStage(fmt.Sprintf("only-%d", i), &ran, nil)}, &fakeRunner{}, io.Discard)
		if err != nil {
			t.Fatalf("NewRunner failed: %v", err)
		}
		if err := r.RunPipeline(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	r, err := NewRunner(cfg, root, nil, &fakeRunner{}, io.Discard)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	recs := r.Journal.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records across runs, got %d", len(recs))
	}
	if recs[0].RunID == recs[1].RunID {
		t.Errorf("separate runs share a run id")
	}
	if recs[1].PrevHash != recs[0].Hash {
		t.Errorf("records from separate runs are not chained")
	}
	if err := r.Journal.Verify(); err != nil {
		t.Errorf("journal failed verification: %v", err)
	}
}
