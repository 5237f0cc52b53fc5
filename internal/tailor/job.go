// Package tailor implements the tailoring operation: the prompt
// assembly, the resilient parsing of the model's answer, and the durable
// two-step job that decouples a multi-minute model call from the
// request/response cycle.
package tailor

import (
	"time"

	"github.com/jonathan/forgecv/internal/types"
)

// Job statuses. A job progresses queued -> running -> terminal; paused
// and waiting can appear while steps execute and must keep being polled.
const (
	StatusQueued     = "queued"
	StatusRunning    = "running"
	StatusPaused     = "paused"
	StatusWaiting    = "waiting"
	StatusComplete   = "complete"
	StatusErrored    = "errored"
	StatusTerminated = "terminated"
)

// Step names for the two ordered steps of every job.
const (
	StepCallGeneration = "call_generation"
	StepParseResult    = "parse_result"
)

// IsTerminal reports whether status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusComplete || status == StatusErrored || status == StatusTerminated
}

// JobError carries the name and message of a failed job's error.
type JobError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *JobError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

// Job is one durable tailoring work item. The runner owns its step
// records for the job's lifetime; callers create it, poll it to a
// terminal state, and discard it.
type Job struct {
	ID        string             `json:"id"`
	Params    types.TailorParams `json:"params"`
	Status    string             `json:"status"`
	Output    *types.TailorResult `json:"output,omitempty"`
	Error     *JobError          `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
