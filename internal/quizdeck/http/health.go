package http

import (
	"net/http"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	Database string `json:"database,omitempty"`
}

// LivezHandler always returns 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler additionally checks database connectivity.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		database := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			database = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).String(),
			Version:  version,
			Database: database,
		})
	}
}
