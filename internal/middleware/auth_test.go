// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// protectedHandler records whether the inner handler ran and what claims
// it saw.
func protectedHandler(t *testing.T, reached *bool, wantUsername string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		claims := GetClaims(r)
		if claims == nil {
			t.Error("claims missing from context")
			return
		}
		if claims.Username != wantUsername {
			t.Errorf("Username = %q; want %q", claims.Username, wantUsername)
		}
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret)
	token, err := tokens.Issue(1, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var reached bool
	h := RequireAuth(tokens)(protectedHandler(t, &reached, "admin"))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if !reached {
		t.Error("handler should have been reached")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	tokens := auth.NewTokenService(testSecret)
	otherToken, err := auth.NewTokenService("another-secret-another-secret-ab").Issue(1, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name      string
		header    string
		wantError string
	}{
		{"missing header", "", "Unauthorized"},
		{"not bearer", "Basic dXNlcjpwYXNz", "Unauthorized"},
		{"bearer without token", "Bearer ", "Unauthorized"},
		{"malformed token", "Bearer garbage", "Invalid token"},
		{"wrong signature", "Bearer " + otherToken, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			h := RequireAuth(tokens)(protectedHandler(t, &reached, "admin"))

			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			if reached {
				t.Error("handler should not have been reached")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d; want 401", w.Code)
			}

			var resp APIError
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshaling response: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q; want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestGetClaims_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetClaims(req) != nil {
		t.Error("expected nil claims outside RequireAuth")
	}
}
