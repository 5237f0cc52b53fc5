// Package poller turns a poll-until-terminal loop over job status into a
// single result-or-error outcome. The loop is a pure function of its
// parameters, so the same code serves the CLI and any other client of
// the status API.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/forgecv/internal/tailor"
	"github.com/jonathan/forgecv/internal/types"
)

// ErrTimeout is returned when the hard deadline passes without the job
// reaching a terminal state. It says nothing about the job itself: the
// job may still complete after the poller gives up, and callers must
// tolerate a later query finding it resolved.
var ErrTimeout = errors.New("poller: timed out waiting for job")

// Status is one observation of a job, as returned by the status API.
type Status struct {
	Status string              `json:"status"`
	Output *types.TailorResult `json:"output,omitempty"`
	Error  *tailor.JobError    `json:"error,omitempty"`
}

// StatusFunc fetches the current status of a job.
type StatusFunc func(ctx context.Context, jobID string) (*Status, error)

// Options control poll pacing. Zero values take the defaults used by
// the production front end: a 2 s interval under a 5 min hard cap.
type Options struct {
	Interval time.Duration
	Deadline time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.Deadline <= 0 {
		o.Deadline = 5 * time.Minute
	}
	return o
}

// WaitForResult polls fetch at a fixed interval until the job reaches a
// terminal state or the wall-clock deadline passes. complete yields the
// output; errored and terminated yield an error; every other status
// keeps the loop going.
func WaitForResult(ctx context.Context, jobID string, fetch StatusFunc, opts Options) (*types.TailorResult, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Deadline)

	for time.Now().Before(deadline) {
		if err := wait(ctx, opts.Interval); err != nil {
			return nil, err
		}

		status, err := fetch(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("status check failed: %w", err)
		}

		switch status.Status {
		case tailor.StatusComplete:
			if status.Output == nil {
				return nil, fmt.Errorf("job %s completed but returned no output", jobID)
			}
			return status.Output, nil
		case tailor.StatusErrored:
			if status.Error != nil {
				return nil, status.Error
			}
			return nil, fmt.Errorf("job %s failed", jobID)
		case tailor.StatusTerminated:
			return nil, fmt.Errorf("job %s was terminated", jobID)
		}
		// queued, running, paused, waiting: keep polling.
	}

	return nil, ErrTimeout
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
