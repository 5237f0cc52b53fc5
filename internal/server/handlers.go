package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/forgecv/internal/chat"
	"github.com/jonathan/forgecv/internal/parsing"
	"github.com/jonathan/forgecv/internal/profile"
	"github.com/jonathan/forgecv/internal/schemas"
	"github.com/jonathan/forgecv/internal/tailor"
	"github.com/jonathan/forgecv/internal/types"
)

// TailorRequest is the request body for POST /tailor
type TailorRequest struct {
	Resume         *types.ResumeDocument `json:"resume" validate:"required"`
	JobDescription string                `json:"jobDescription" validate:"required"`
	MasterProfile  *types.ResumeDocument `json:"masterProfile,omitempty"`
}

// TailorResponse is the response for POST /tailor
type TailorResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// StatusResponse is the response for GET /tailor/{id}/status
type StatusResponse struct {
	JobID  string              `json:"jobId"`
	Status string              `json:"status"`
	Output *types.TailorResult `json:"output,omitempty"`
	Error  *tailor.JobError    `json:"error,omitempty"`
}

// ParseRequest is the request body for POST /parse
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	Messages       []chat.Message        `json:"messages" validate:"dive"`
	Resume         *types.ResumeDocument `json:"resume" validate:"required"`
	JobDescription string                `json:"jobDescription,omitempty"`
	Bio            string                `json:"bio,omitempty"`
}

// MergeRequest is the request body for POST /profile/merge
type MergeRequest struct {
	Master *types.ResumeDocument `json:"master,omitempty"`
	Resume *types.ResumeDocument `json:"resume" validate:"required"`
}

// handleTailor accepts a tailoring job, runs it in the background, and
// returns the job ID for status polling.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "resume and jobDescription are required")
		return
	}
	if err := schemas.ValidateResume(req.Resume); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &tailor.Job{
		ID: uuid.NewString(),
		Params: types.TailorParams{
			Resume:         req.Resume,
			JobDescription: req.JobDescription,
			MasterProfile:  req.MasterProfile,
		},
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create job: "+err.Error())
		return
	}

	// The job outlives this request. Errors land on the job record and
	// surface through the status endpoint.
	go func() {
		if err := s.runner.Execute(context.Background(), job.ID); err != nil {
			log.Printf("job %s failed: %v", job.ID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, TailorResponse{
		JobID:  job.ID,
		Status: tailor.StatusQueued,
	})
}

// handleTailorStatus reports a job's current state.
func (s *Server) handleTailorStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load job: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, StatusResponse{
		JobID:  job.ID,
		Status: job.Status,
		Output: job.Output,
		Error:  job.Error,
	})
}

// handleParse structures freeform resume text synchronously.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	doc, err := parsing.ParseResume(r.Context(), s.client, req.Text)
	if err != nil {
		var parseErr *tailor.ParseError
		if errors.As(err, &parseErr) {
			s.jsonResponse(w, http.StatusInternalServerError, map[string]string{
				"error": "Model output could not be structured",
				"raw":   parseErr.Raw,
			})
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Parsing failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"resume": doc})
}

// handleChat runs one synchronous chat turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "resume is required and messages must have role and content")
		return
	}

	resp, err := chat.Respond(r.Context(), s.client, chat.Request{
		Messages:       req.Messages,
		Resume:         req.Resume,
		JobDescription: req.JobDescription,
		Bio:            req.Bio,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Chat failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleProfileMerge folds a resume into the master profile.
func (s *Server) handleProfileMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "resume is required")
		return
	}

	merged := profile.Merge(req.Master, req.Resume)
	s.jsonResponse(w, http.StatusOK, map[string]any{"profile": merged})
}
