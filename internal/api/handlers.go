// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/driftwood-io/driftwood/internal/discovery"
	"github.com/driftwood-io/driftwood/internal/logging"
	"github.com/driftwood-io/driftwood/internal/middleware"
)

// SelectionEngine is the engine surface the handlers depend on. Tests swap
// in a fake.
type SelectionEngine interface {
	Next(ctx context.Context, req discovery.Request) (*discovery.Selection, error)
	SessionDiagnostics(userID, sessionID string) (discovery.SessionDiagnostics, bool)
	Stats() discovery.EngineStats
}

// Pinger is the storage health surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	engine   SelectionEngine
	db       Pinger
	validate *validator.Validate
}

// NewHandler creates a handler set.
func NewHandler(engine SelectionEngine, db Pinger) *Handler {
	return &Handler{
		engine:   engine,
		db:       db,
		validate: validator.New(),
	}
}

// discoverParams are the query parameters of the discover endpoint.
type discoverParams struct {
	UserID    string `validate:"required,max=128"`
	SessionID string `validate:"required,max=128"`
}

// DiscoverNext handles GET /api/v1/discover/next.
func (h *Handler) DiscoverNext(w http.ResponseWriter, r *http.Request) {
	params := discoverParams{
		UserID:    r.URL.Query().Get("user_id"),
		SessionID: r.URL.Query().Get("session_id"),
	}
	if err := h.validate.Struct(params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request",
			"user_id and session_id are required")
		return
	}

	sel, err := h.engine.Next(r.Context(), discovery.Request{
		UserID:    params.UserID,
		SessionID: params.SessionID,
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		h.respondSelectionError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sel)
}

// SessionDiagnostics handles GET /api/v1/discover/session/{sessionID}.
func (h *Handler) SessionDiagnostics(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" || sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request",
			"user_id and session id are required")
		return
	}

	diag, ok := h.engine.SessionDiagnostics(userID, sessionID)
	if !ok {
		respondError(w, http.StatusNotFound, "session_not_found",
			"no such session")
		return
	}
	respondJSON(w, http.StatusOK, diag)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}

// HealthLive handles GET /api/v1/health/live. Liveness means the process
// is serving; it never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// catalog store to answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("readiness check failed")
		respondError(w, http.StatusServiceUnavailable, "not_ready",
			"catalog store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// respondSelectionError maps engine errors onto the API error surface. Only
// the empty-pool outcome is a distinct client-visible condition.
func (h *Handler) respondSelectionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, discovery.ErrNoContentAvailable):
		respondError(w, http.StatusNotFound, "no_content",
			"no eligible content available for this session")
	case errors.Is(err, context.Canceled):
		// Client went away; the status code is never seen.
		respondError(w, statusClientClosedRequest, "request_cancelled", "request cancelled")
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("selection failed")
		respondError(w, http.StatusInternalServerError, "internal_error",
			"selection failed")
	}
}
