// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

// Package api provides the optional diagnostics HTTP endpoints.
//
// The listener is off by default; batch runs don't need it. When
// METRICS_LISTEN is set, the router exposes:
//
//	GET /healthz  - liveness plus database reachability
//	GET /metrics  - Prometheus metrics
//	GET /runs     - recent run history (when the run log is wired)
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strataprep/strataprep/internal/database"
	"github.com/strataprep/strataprep/internal/logging"
	"github.com/strataprep/strataprep/internal/middleware"
	"github.com/strataprep/strataprep/internal/runlog"
)

// recentRunsLimit caps the /runs response size.
const recentRunsLimit = 20

// Router wires the diagnostics endpoints to their dependencies.
type Router struct {
	db        *database.DB
	runs      *runlog.Store
	startTime time.Time
}

// NewRouter creates a diagnostics router backed by the given database.
func NewRouter(db *database.DB) *Router {
	return &Router{
		db:        db,
		startTime: time.Now(),
	}
}

// SetRunLog exposes run history under /runs. Without it the route stays
// unregistered.
func (router *Router) SetRunLog(runs *runlog.Store) {
	router.runs = runs
}

// Setup configures the HTTP routes using Chi.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)    // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer) // Recover from panics
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)

	r.Get("/healthz", router.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	if router.runs != nil {
		r.Get("/runs", router.handleRuns)
	}

	return r
}

// healthResponse is the /healthz response body.
type healthResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Error         string  `json:"error,omitempty"`
}

// handleHealthz reports process liveness and database reachability.
// Returns 503 when the database does not answer a ping.
func (router *Router) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Database:      "up",
		UptimeSeconds: time.Since(router.startTime).Seconds(),
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := router.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = "down"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// runsResponse is the /runs response body.
type runsResponse struct {
	Runs   []runlog.Entry   `json:"runs"`
	Counts map[string]int64 `json:"counts"`
}

// handleRuns serves the most recent preparation runs, newest first.
func (router *Router) handleRuns(w http.ResponseWriter, r *http.Request) {
	entries, err := router.runs.Recent(r.Context(), recentRunsLimit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load run history")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "run history unavailable"})
		return
	}

	counts, err := router.runs.CountByStatus(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to count run history")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "run history unavailable"})
		return
	}

	if entries == nil {
		entries = []runlog.Entry{}
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: entries, Counts: counts})
}

// writeJSON writes data as a JSON response body.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
