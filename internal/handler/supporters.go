// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler wires HTTP requests to the registry, auth, and
// reporting services.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamkwabo-boop/project29-backend/internal/model"
	"github.com/teamkwabo-boop/project29-backend/internal/registry"
)

// SupporterHandler handles supporter registration and listing.
type SupporterHandler struct {
	registry *registry.Service
}

// NewSupporterHandler creates a supporter handler.
func NewSupporterHandler(svc *registry.Service) *SupporterHandler {
	return &SupporterHandler{registry: svc}
}

// Submit handles POST /api/supporters.
func (h *SupporterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub registry.Submission
	if err := decodeJSON(r, &sub); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	supporter, err := h.registry.Submit(r.Context(), sub)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEntry) {
			writeJSONError(w, http.StatusBadRequest, "Duplicate entry")
			return
		}
		if ve, ok := model.AsValidationError(err); ok {
			writeJSONError(w, http.StatusBadRequest, ve.Error())
			return
		}
		slog.Error("supporter submission failed", "category", "registry", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("supporter registered",
		"category", "registry",
		"id", supporter.ID,
		"district", supporter.District,
	)
	writeJSONMessage(w, "Saved")
}

// List handles GET /api/supporters with optional district, sex, and q
// query parameters.
func (h *SupporterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	supporters, err := h.registry.List(r.Context(), registry.Filters{
		District: q.Get("district"),
		Sex:      q.Get("sex"),
		Query:    q.Get("q"),
	})
	if err != nil {
		slog.Error("supporter listing failed", "category", "registry", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, supporters)
}
