package handler

import (
	"net/http"
	"strconv"

	"github.com/brandbeacon/brandbeacon/internal/api/response"
	"github.com/brandbeacon/brandbeacon/internal/store"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// NewListHandler returns an http.HandlerFunc for GET /api/v1/analyses.
// Supports ?status=, ?page= and ?limit= query parameters.
func NewListHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := store.JobFilter{
			Status: q.Get("status"),
			Page:   atoiDefault(q.Get("page"), 1),
			Limit:  atoiDefault(q.Get("limit"), 20),
		}
		if filter.Status != "" && !models.IsValidJobStatus(filter.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown status filter", nil)
			return
		}

		jobs, total, err := st.ListJobs(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Collection(w, jobs, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
