// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// maxRequestBody caps JSON request bodies at 1 MB.
const maxRequestBody = 1 << 20

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeJSONMessage writes a JSON success message response.
func writeJSONMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": message,
	})
}

// decodeJSON decodes a JSON request body into v, rejecting oversized
// bodies. Unknown fields are ignored so old form clients keep working.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	return dec.Decode(v)
}
