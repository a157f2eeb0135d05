package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

type HealthCheck struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Checks map[string]HealthCheck `json:"checks"`
}

func handleHealth(logger *slog.Logger, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]HealthCheck{
			"sqlite": {Status: "ok"},
		}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.Error("health check failed", "name", "sqlite", "error", err)
			checks["sqlite"] = HealthCheck{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, HealthResponse{Checks: checks})
	}
}
