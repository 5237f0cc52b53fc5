package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/forgecv/internal/tailor"
	"github.com/jonathan/forgecv/internal/types"
)

// JobStore is a tailor.JobStore backed by PostgreSQL. Each job is one
// row; step outputs live in their own table keyed by (job, step).
type JobStore struct {
	db *DB
}

// NewJobStore creates a job store over an open database.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

var _ tailor.JobStore = (*JobStore)(nil)

// CreateJob persists a new job in the queued state.
func (s *JobStore) CreateJob(ctx context.Context, job *tailor.Job) error {
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal job params: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO tailor_jobs (id, params, status)
		 VALUES ($1, $2, $3)`,
		job.ID, paramsJSON, tailor.StatusQueued,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID, or nil when unknown.
func (s *JobStore) GetJob(ctx context.Context, id string) (*tailor.Job, error) {
	var job tailor.Job
	var paramsJSON, outputJSON, errorJSON []byte

	err := s.db.pool.QueryRow(ctx,
		`SELECT id, params, status, output, error, created_at, updated_at
		 FROM tailor_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &paramsJSON, &job.Status, &outputJSON, &errorJSON, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := json.Unmarshal(paramsJSON, &job.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job params: %w", err)
	}
	if len(outputJSON) > 0 {
		var output types.TailorResult
		if err := json.Unmarshal(outputJSON, &output); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job output: %w", err)
		}
		job.Output = &output
	}
	if len(errorJSON) > 0 {
		var jobErr tailor.JobError
		if err := json.Unmarshal(errorJSON, &jobErr); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job error: %w", err)
		}
		job.Error = &jobErr
	}

	return &job, nil
}

// SetStatus transitions the job, recording the error on errored/terminated.
func (s *JobStore) SetStatus(ctx context.Context, id, status string, jobErr *tailor.JobError) error {
	var errorJSON []byte
	if jobErr != nil {
		var err error
		errorJSON, err = json.Marshal(jobErr)
		if err != nil {
			return fmt.Errorf("failed to marshal job error: %w", err)
		}
	}

	result, err := s.db.pool.Exec(ctx,
		`UPDATE tailor_jobs SET status = $1, error = $2, updated_at = NOW() WHERE id = $3`,
		status, errorJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// CompleteJob records the result and moves the job to complete.
func (s *JobStore) CompleteJob(ctx context.Context, id string, result *types.TailorResult) error {
	outputJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job output: %w", err)
	}

	tag, err := s.db.pool.Exec(ctx,
		`UPDATE tailor_jobs
		 SET status = $1, output = $2, error = NULL, updated_at = NOW()
		 WHERE id = $3`,
		tailor.StatusComplete, outputJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// SaveStepOutput durably records one step's output, overwriting any
// previous record for the same (job, step).
func (s *JobStore) SaveStepOutput(ctx context.Context, jobID, step string, output json.RawMessage) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO tailor_job_steps (job_id, step, output)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, step) DO UPDATE SET output = $3, created_at = NOW()`,
		jobID, step, []byte(output),
	)
	if err != nil {
		return fmt.Errorf("failed to save step output %s: %w", step, err)
	}
	return nil
}

// GetStepOutput returns a step's recorded output and whether one exists.
func (s *JobStore) GetStepOutput(ctx context.Context, jobID, step string) (json.RawMessage, bool, error) {
	var output []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT output FROM tailor_job_steps WHERE job_id = $1 AND step = $2`,
		jobID, step,
	).Scan(&output)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get step output %s: %w", step, err)
	}
	return output, true, nil
}
