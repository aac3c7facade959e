// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
	"github.com/teamkwabo-boop/project29-backend/internal/middleware"
	"github.com/teamkwabo-boop/project29-backend/internal/model"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
)

// MinPasswordLength is the minimum accepted admin password length.
const MinPasswordLength = 8

// AuthHandler handles admin login and password management.
type AuthHandler struct {
	queries    *store.Queries
	tokens     *auth.TokenService
	protection *middleware.LoginProtection
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(queries *store.Queries, tokens *auth.TokenService, protection *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:    queries,
		tokens:     tokens,
		protection: protection,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login. Unknown usernames and wrong passwords
// produce the same response; the caller must not learn which.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if locked, remaining := h.protection.IsAccountLocked(req.Username); locked {
		slog.Warn("login attempt on locked account",
			"category", "auth",
			"username", req.Username,
			"remaining", remaining.Round(time.Second),
		)
		writeJSONError(w, http.StatusTooManyRequests, "Account temporarily locked. Try again later.")
		return
	}

	admin, err := h.queries.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			slog.Error("login lookup failed", "category", "auth", "error", err)
		}
		h.failLogin(w, req.Username)
		return
	}

	ok, err := auth.CheckPassword(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			slog.Error("password verification failed", "category", "auth", "error", err)
		}
		h.failLogin(w, req.Username)
		return
	}

	// Transparently upgrade hashes created with older parameters.
	if auth.NeedsRehash(admin.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateAdminPassword(r.Context(), admin.ID, newHash); err != nil {
				slog.Warn("password rehash failed", "category", "auth", "error", err)
			}
		}
	}

	token, err := h.tokens.Issue(admin.ID, admin.Username)
	if err != nil {
		slog.Error("token issuance failed", "category", "auth", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.protection.RecordSuccessfulLogin(admin.Username)
	slog.Info("admin logged in", "category", "auth", "username", admin.Username)

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}

// failLogin records the failure and writes the uniform credentials error.
func (h *AuthHandler) failLogin(w http.ResponseWriter, username string) {
	if locked, duration := h.protection.RecordFailedAttempt(username); locked {
		slog.Warn("login failures locked account",
			"category", "auth",
			"username", username,
			"duration", duration,
		)
	}
	writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/admin/password. Requires a valid
// session token; the current password is re-verified before the change.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.NewPassword) < MinPasswordLength {
		writeJSONError(w, http.StatusBadRequest, "New password must be at least 8 characters")
		return
	}

	admin, err := h.queries.GetAdminByUsername(r.Context(), claims.Username)
	if err != nil {
		slog.Error("admin lookup failed", "category", "auth", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	ok, err := auth.CheckPassword(req.CurrentPassword, admin.PasswordHash)
	if err != nil || !ok {
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("password hashing failed", "category", "auth", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.queries.UpdateAdminPassword(r.Context(), admin.ID, newHash); err != nil {
		slog.Error("password update failed", "category", "auth", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("admin password changed", "category", "auth", "username", admin.Username)
	writeJSONMessage(w, "Password updated")
}
