package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/paperdigest/internal/jobs"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		jsonError(w, "background jobs are disabled", http.StatusServiceUnavailable)
		return
	}

	var body summarizeURLRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}
	req, ok := s.toJobRequest(body)
	if !ok {
		jsonError(w, "no pdf_url provided", http.StatusBadRequest)
		return
	}

	job, err := s.jobs.Submit(req)
	if err != nil {
		code := http.StatusServiceUnavailable
		if !errors.Is(err, jobs.ErrQueueFull) && !errors.Is(err, jobs.ErrStopped) {
			code = http.StatusInternalServerError
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   jobs.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		jsonError(w, "background jobs are disabled", http.StatusServiceUnavailable)
		return
	}
	job := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
