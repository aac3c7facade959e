// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/teamkwabo-boop/project29-backend/internal/report"
)

// StatsHandler serves the aggregate dashboard endpoints.
type StatsHandler struct {
	report *report.Service
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(svc *report.Service) *StatsHandler {
	return &StatsHandler{report: svc}
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.report.Stats(r.Context())
	if err != nil {
		slog.Error("stats computation failed", "category", "registry", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportCSV handles GET /api/export/csv, serving the full registry as a
// CSV attachment. The document is buffered before any header goes out so
// a store failure yields a clean 500 instead of a truncated download.
func (h *StatsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.report.WriteCSV(r.Context(), &buf); err != nil {
		slog.Error("csv export failed", "category", "registry", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="supporters.csv"`)
	_, _ = w.Write(buf.Bytes())
}
