package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/abri-data/internal/database"
	"github.com/rickgao/abri-data/internal/version"
)

const checkTimeout = 5 * time.Second

// opsStore is the part of *database.Store the ops server reads.
type opsStore interface {
	Health(ctx context.Context) database.HealthStatus
	Info(ctx context.Context) database.Diagnostics
}

type healthResponse struct {
	Status   string                `json:"status"`
	Database database.HealthStatus `json:"database"`
	Version  string                `json:"version"`
}

// newRouter builds the ops HTTP handler: /health, /info, /metrics, /version.
func newRouter(st opsStore, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), checkTimeout)
		defer cancel()

		resp := healthResponse{
			Status:   "healthy",
			Database: st.Health(ctx),
			Version:  version.Version,
		}
		code := http.StatusOK
		if !resp.Database.OK {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			logger.Warn("health check failed", "error", resp.Database.Error)
		}
		respondJSON(w, code, resp)
	})

	r.Get("/info", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), checkTimeout)
		defer cancel()
		respondJSON(w, http.StatusOK, st.Info(ctx))
	})

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, version.Get())
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
