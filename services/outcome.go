package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/srad/videoanalyzer/helpers"
)

type FailureKind string

const (
	// FailureSpawn The worker process could not be started.
	FailureSpawn FailureKind = "spawn"
	// FailureExit The worker ran but exited with a non-zero status.
	FailureExit FailureKind = "exit"
	// FailureParse The worker exited cleanly but reported no usable payload.
	FailureParse    FailureKind = "parse"
	FailureTimeout  FailureKind = "timeout"
	FailureCanceled FailureKind = "canceled"
)

// WorkerExitError The worker ran and returned a non-zero status.
type WorkerExitError struct {
	ExitCode int
}

func (e *WorkerExitError) Error() string {
	return fmt.Sprintf("worker exited with status %d", e.ExitCode)
}

type Success struct {
	// Output is the filename assigned before the worker was started.
	Output  string          `json:"output"`
	Payload helpers.Payload `json:"payload"`
}

type Failure struct {
	Kind       FailureKind `json:"kind"`
	Message    string      `json:"message"`
	ExitCode   *int        `json:"exitCode,omitempty"`
	ParseError string      `json:"parseError,omitempty"`
	Stdout     string      `json:"stdout,omitempty"`
	Stderr     string      `json:"stderr,omitempty"`
	// Output is the base name of an "output" field the worker reported, for
	// display only. It is never used to locate files.
	Output *string `json:"output"`

	err error
}

// Outcome The final result of one job. Exactly one of Success and Failure is set.
type Outcome struct {
	JobID   string   `json:"jobId"`
	Success *Success `json:"success,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

func (o Outcome) OK() bool {
	return o.Success != nil
}

// Err The failure as a Go error: *helpers.SpawnError, *WorkerExitError,
// *helpers.ParseFailure or a context error. Nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	if o.Failure.err != nil {
		return o.Failure.err
	}
	return errors.New(o.Failure.Message)
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), err: err}
}

func contextFailure(err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimeout, Message: "worker timed out", err: err}
	}
	return &Failure{Kind: FailureCanceled, Message: "worker canceled", err: err}
}
