// Package scheduler runs named background jobs. At most one instance of a
// name runs at a time; a conflict policy decides what a new request for a
// busy name does. Jobs wait for their constraints and retry with
// exponential backoff.
package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/connectivity"
)

type Result int

const (
	Success Result = iota
	Retry
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Retry:
		return "retry"
	default:
		return "failure"
	}
}

// Job is one unit of work. ctx is cancelled when the instance is replaced
// or the scheduler stops.
type Job func(ctx context.Context) Result

// Policy decides what Enqueue does when work with the same name exists.
type Policy int

const (
	// Replace cancels a running instance and drops a queued one; the new
	// request runs next.
	Replace Policy = iota
	// Keep ignores the new request while an instance is queued or running.
	Keep
	// AppendOrReplace replaces a queued instance; with one running, the new
	// request becomes its single follow-up.
	AppendOrReplace
)

func (p Policy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Keep:
		return "keep"
	default:
		return "append_or_replace"
	}
}

// Constraint gates when queued work may start.
type Constraint interface {
	Satisfied() bool
	String() string
}

type constraintFunc struct {
	name string
	fn   func() bool
}

func (c constraintFunc) Satisfied() bool { return c.fn() }
func (c constraintFunc) String() string  { return c.name }

// ConstraintFunc adapts fn.
func ConstraintFunc(name string, fn func() bool) Constraint {
	return constraintFunc{name: name, fn: fn}
}

// StatusSource reports the current connectivity state.
type StatusSource interface {
	Current() connectivity.Status
}

// RequiresNetwork is satisfied while src reports Available.
func RequiresNetwork(src StatusSource) Constraint {
	return ConstraintFunc("network", func() bool { return src.Current() == connectivity.Available })
}

type WorkRequest struct {
	Name        string
	Job         Job
	Policy      Policy
	Constraints []Constraint
	// Expedited work is started ahead of other ready work.
	Expedited bool
}

// PeriodicRequest repeats Job every Interval. Enqueueing it for a name that
// is already scheduled keeps the existing schedule.
type PeriodicRequest struct {
	Name        string
	Job         Job
	Interval    time.Duration
	Constraints []Constraint
}

func satisfied(cs []Constraint) bool {
	for _, c := range cs {
		if !c.Satisfied() {
			return false
		}
	}
	return true
}
