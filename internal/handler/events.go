// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/teamkwabo-boop/project29-backend/internal/store"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

// EventsHandler serves the admin event log.
type EventsHandler struct {
	queries *store.Queries
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(queries *store.Queries) *EventsHandler {
	return &EventsHandler{queries: queries}
}

// List handles GET /api/events with an optional limit query parameter.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxEventLimit {
			parsed = maxEventLimit
		}
		limit = parsed
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		slog.Error("event listing failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
