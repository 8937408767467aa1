// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/driftwood-io/driftwood/internal/logging"
)

// statusClientClosedRequest is the nginx convention for a cancelled request.
const statusClientClosedRequest = 499

// errorResponse is the uniform API error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes the error envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: code, Message: message})
}
