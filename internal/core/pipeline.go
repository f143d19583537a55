// Package core drives the deployment pipeline: a fixed, ordered list of
// stages executed sequentially with fail-fast semantics.
package core

import (
	"context"
	"errors"
)

// Status is the outcome of a single stage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StageFunc runs one stage against the environment.
type StageFunc func(ctx context.Context, env *Env) error

// Stage is one named step of the deployment pipeline.
type Stage struct {
	Name string
	Run  StageFunc
}

// Outcome records what happened to one stage of a run.
type Outcome struct {
	Stage  string
	Status Status
	Err    error
}

// SkipError signals that a stage found its work already done and the
// pipeline should continue. Used for idempotency skips (repo already
// initialized, nothing to commit).
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

// Skip returns a SkipError with the given reason.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsSkip reports whether err is an idempotency skip.
func IsSkip(err error) bool {
	var s *SkipError
	return errors.As(err, &s)
}
