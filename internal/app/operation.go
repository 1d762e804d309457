package app

import (
	"time"
)

// opIDLayout formats operation ids; every log line of one invocation carries it.
const opIDLayout = "20060102T150405Z"

// Operation tracks one CLI invocation from start to finish.
type Operation struct {
	ID      string
	Command string
	Started time.Time
	Status  string // "success" or "error"
	Err     error
}

// NewOperation creates an operation for command started at now.
func NewOperation(command string, now time.Time) *Operation {
	return &Operation{
		ID:      now.UTC().Format(opIDLayout),
		Command: command,
		Started: now,
		Status:  "success",
	}
}

// Fail marks the operation as failed. A nil err is ignored.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	op.Err = err
}

// Failed returns true if Fail was called with a non-nil error.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed(now time.Time) time.Duration {
	return now.Sub(op.Started)
}
