package tailor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/forgecv/internal/types"
)

// JobStore is the durable record of jobs and their step outputs. It is
// the only shared resource in the system: written by the runner, read by
// pollers, keyed by job ID, with no cross-job transactions. Step outputs
// are recorded before the next step starts so a process restart resumes
// from the last completed step instead of re-paying the model cost.
type JobStore interface {
	// CreateJob persists a new job in the queued state.
	CreateJob(ctx context.Context, job *Job) error
	// GetJob returns the job, or nil when the ID is unknown.
	GetJob(ctx context.Context, id string) (*Job, error)
	// SetStatus transitions the job, recording the error on errored/terminated.
	SetStatus(ctx context.Context, id, status string, jobErr *JobError) error
	// CompleteJob records the result and moves the job to complete.
	CompleteJob(ctx context.Context, id string, result *types.TailorResult) error
	// SaveStepOutput durably records one step's output, overwriting any
	// previous record for the same (job, step).
	SaveStepOutput(ctx context.Context, jobID, step string, output json.RawMessage) error
	// GetStepOutput returns a step's recorded output and whether one exists.
	GetStepOutput(ctx context.Context, jobID, step string) (json.RawMessage, bool, error)
}

// MemoryStore is an in-process JobStore for the CLI and for tests. It
// holds each job's state under a single mutex; jobs are independent, so
// contention is negligible.
type MemoryStore struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	steps map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]*Job),
		steps: make(map[string]json.RawMessage),
	}
}

// CreateJob persists a new job in the queued state.
func (s *MemoryStore) CreateJob(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	stored := *job
	stored.Status = StatusQueued
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.jobs[job.ID] = &stored
	return nil
}

// GetJob returns a copy of the job, or nil when unknown.
func (s *MemoryStore) GetJob(_ context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

// SetStatus transitions the job's status.
func (s *MemoryStore) SetStatus(_ context.Context, id, status string, jobErr *JobError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = status
	job.Error = jobErr
	job.UpdatedAt = time.Now()
	return nil
}

// CompleteJob records the result and marks the job complete.
func (s *MemoryStore) CompleteJob(_ context.Context, id string, result *types.TailorResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = StatusComplete
	job.Output = result
	job.Error = nil
	job.UpdatedAt = time.Now()
	return nil
}

// SaveStepOutput records one step's output.
func (s *MemoryStore) SaveStepOutput(_ context.Context, jobID, step string, output json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps[jobID+"/"+step] = append(json.RawMessage(nil), output...)
	return nil
}

// GetStepOutput returns a step's recorded output, if any.
func (s *MemoryStore) GetStepOutput(_ context.Context, jobID, step string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	output, ok := s.steps[jobID+"/"+step]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), output...), true, nil
}
