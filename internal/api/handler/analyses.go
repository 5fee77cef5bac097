package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brandbeacon/brandbeacon/internal/api/response"
	"github.com/brandbeacon/brandbeacon/internal/job"
	"github.com/brandbeacon/brandbeacon/internal/store"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxQueryCount = 100

// AnalysisService defines the orchestrator interface the handlers depend on.
type AnalysisService interface {
	Submit(ctx context.Context, brandName, websiteURL string, queryCount int) (*models.Job, error)
	Cancel(jobID uuid.UUID) error
	Status(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	FullReport(ctx context.Context, jobID uuid.UUID) (*job.Report, error)
	SimulateImprovement(ctx context.Context, jobID uuid.UUID, changes models.ChangeSet) (*models.TimelineProjection, error)
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/analyses.
func NewSubmitHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BrandName  string `json:"brand_name"`
			WebsiteURL string `json:"website_url"`
			QueryCount int    `json:"query_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.BrandName == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "brand_name is required", nil)
			return
		}
		if req.WebsiteURL == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "website_url is required", nil)
			return
		}
		if req.QueryCount < 0 || req.QueryCount > maxQueryCount {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "query_count must be between 1 and 100", nil)
			return
		}

		j, err := svc.Submit(r.Context(), req.BrandName, req.WebsiteURL, req.QueryCount)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Accepted(w, j)
	}
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/v1/analyses/{jobID}.
func NewStatusHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := parseJobID(w, r)
		if !ok {
			return
		}

		j, err := svc.Status(r.Context(), jobID)
		if err != nil {
			writeJobError(w, err)
			return
		}
		response.JSON(w, j)
	}
}

// NewReportHandler returns an http.HandlerFunc for GET /api/v1/analyses/{jobID}/report.
func NewReportHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := parseJobID(w, r)
		if !ok {
			return
		}

		report, err := svc.FullReport(r.Context(), jobID)
		if err != nil {
			writeJobError(w, err)
			return
		}
		response.JSON(w, report)
	}
}

// NewSimulateHandler returns an http.HandlerFunc for POST /api/v1/analyses/{jobID}/simulate.
func NewSimulateHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := parseJobID(w, r)
		if !ok {
			return
		}

		var changes models.ChangeSet
		if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		projection, err := svc.SimulateImprovement(r.Context(), jobID, changes)
		if err != nil {
			writeJobError(w, err)
			return
		}
		response.JSON(w, projection)
	}
}

// NewCancelHandler returns an http.HandlerFunc for DELETE /api/v1/analyses/{jobID}.
func NewCancelHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := parseJobID(w, r)
		if !ok {
			return
		}

		if err := svc.Cancel(jobID); err != nil {
			writeJobError(w, err)
			return
		}
		response.Accepted(w, map[string]string{"status": "cancelling"})
	}
}

func parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return jobID, true
}

func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that ID", nil)
	case errors.Is(err, job.ErrNotCompleted):
		response.Error(w, http.StatusConflict, "JOB_NOT_COMPLETED",
			"The job has not completed yet", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
