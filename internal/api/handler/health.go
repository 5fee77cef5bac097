package handler

import (
	"net/http"

	"github.com/brandbeacon/brandbeacon/internal/api/response"
	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/internal/store"
)

// NewHealthHandler reports database and cache connectivity.
func NewHealthHandler(st store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Database: "up", Cache: "up"}

		if err := st.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			status.Database = "down"
		}
		if err := c.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			status.Cache = "down"
		}

		if status.Status != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED", "One or more dependencies are unavailable", status)
			return
		}
		response.JSON(w, status)
	}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
