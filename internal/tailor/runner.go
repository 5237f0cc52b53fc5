package tailor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/types"
)

// RetryPolicy bounds retries for the generation step. Attempt n waits
// n*Delay before running (linear backoff). Retries trigger only when the
// call fails (including the explicit empty-response condition), never
// on a merely slow response, and no artificial timeout is imposed below
// the caller's context: a retry storm against an already overloaded
// model backend is worse than waiting.
type RetryPolicy struct {
	Limit int
	Delay time.Duration
}

// DefaultRetryPolicy mirrors the production setting: one retry, five
// second linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Limit: 1, Delay: 5 * time.Second}
}

// Runner executes tailoring jobs as two ordered, independently
// resumable steps:
//
//  1. call_generation: invoke the model with the job's payload, with a
//     bounded retry policy.
//  2. parse_result: extract/repair/parse the output and reconcile it
//     against the job's own input resume. Isolated from step 1 so a
//     parse failure is fatal without re-invoking the expensive call;
//     parsing is deterministic and retry-free.
//
// Each step's output is recorded in the store before the next step
// starts. Re-executing a job (after a crash or restart) skips any step
// that already has a recorded output.
type Runner struct {
	store  JobStore
	client llm.Client
	retry  RetryPolicy
}

// NewRunner creates a runner over the given store and generation client.
func NewRunner(store JobStore, client llm.Client, retry RetryPolicy) *Runner {
	return &Runner{store: store, client: client, retry: retry}
}

// Execute drives one job to a terminal state. Jobs already terminal are
// left untouched. The returned error mirrors what was recorded on the
// job; callers that only poll may ignore it.
func (r *Runner) Execute(ctx context.Context, jobID string) error {
	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if IsTerminal(job.Status) {
		return nil
	}

	if err := r.store.SetStatus(ctx, jobID, StatusRunning, nil); err != nil {
		return fmt.Errorf("failed to mark job %s running: %w", jobID, err)
	}

	raw, err := r.stepCallGeneration(ctx, job)
	if err != nil {
		return r.fail(ctx, jobID, "GenerationError", err)
	}

	result, err := r.stepParseResult(ctx, job, raw)
	if err != nil {
		return r.fail(ctx, jobID, "ParseError", err)
	}

	if err := r.store.CompleteJob(ctx, jobID, result); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	return nil
}

// stepCallGeneration runs step 1, resuming from a recorded output when
// one exists.
func (r *Runner) stepCallGeneration(ctx context.Context, job *Job) (string, error) {
	if recorded, ok, err := r.store.GetStepOutput(ctx, job.ID, StepCallGeneration); err == nil && ok {
		var raw string
		if err := json.Unmarshal(recorded, &raw); err == nil {
			log.Printf("job %s: resuming from recorded %s output", job.ID, StepCallGeneration)
			return raw, nil
		}
	}

	req := llm.Request{
		Instruction: SystemPrompt(),
		Context:     BuildUserMessage(job.Params),
		ContextCap:  ResumeContextCap + JobDescriptionCap + MasterProfileCap,
		MaxTokens:   MaxTailorTokens,
		Tier:        llm.TierQuality,
	}

	var raw string
	var err error
	for attempt := 0; attempt <= r.retry.Limit; attempt++ {
		if attempt > 0 {
			log.Printf("job %s: %s attempt %d/%d after error: %v",
				job.ID, StepCallGeneration, attempt+1, r.retry.Limit+1, err)
			if waitErr := sleepCtx(ctx, time.Duration(attempt)*r.retry.Delay); waitErr != nil {
				return "", waitErr
			}
		}
		raw, err = r.client.Generate(ctx, req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", err
	}

	recorded, marshalErr := json.Marshal(raw)
	if marshalErr != nil {
		return "", fmt.Errorf("failed to encode %s output: %w", StepCallGeneration, marshalErr)
	}
	if err := r.store.SaveStepOutput(ctx, job.ID, StepCallGeneration, recorded); err != nil {
		return "", fmt.Errorf("failed to record %s output: %w", StepCallGeneration, err)
	}
	return raw, nil
}

// stepParseResult runs step 2 against the job's own input resume, never
// any globally shared document.
func (r *Runner) stepParseResult(ctx context.Context, job *Job, raw string) (*types.TailorResult, error) {
	if recorded, ok, err := r.store.GetStepOutput(ctx, job.ID, StepParseResult); err == nil && ok {
		var result types.TailorResult
		if err := json.Unmarshal(recorded, &result); err == nil {
			return &result, nil
		}
	}

	result, err := ParseResponse(raw, job.Params.Resume)
	if err != nil {
		return nil, err
	}

	recorded, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to encode %s output: %w", StepParseResult, marshalErr)
	}
	if err := r.store.SaveStepOutput(ctx, job.ID, StepParseResult, recorded); err != nil {
		return nil, fmt.Errorf("failed to record %s output: %w", StepParseResult, err)
	}
	return result, nil
}

// fail records the error on the job and transitions it to errored.
func (r *Runner) fail(ctx context.Context, jobID, name string, cause error) error {
	if errors.Is(cause, llm.ErrEmptyResponse) {
		name = "EmptyResponse"
	}
	if errors.Is(cause, ErrUnparseable) {
		name = "ParseError"
	}
	jobErr := &JobError{Name: name, Message: cause.Error()}
	if err := r.store.SetStatus(ctx, jobID, StatusErrored, jobErr); err != nil {
		log.Printf("job %s: failed to record error state: %v", jobID, err)
	}
	return jobErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
