// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
	"github.com/teamkwabo-boop/project29-backend/internal/middleware"
	"github.com/teamkwabo-boop/project29-backend/internal/registry"
	"github.com/teamkwabo-boop/project29-backend/internal/report"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
	"github.com/teamkwabo-boop/project29-backend/internal/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testServer carries the wired router plus the pieces tests poke at
// directly.
type testServer struct {
	router  chi.Router
	queries *store.Queries
	tokens  *auth.TokenService
}

// newTestServer assembles the API routes the way the binary does, minus
// rate limiting so tests can hammer endpoints freely.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	if err := store.Seed(ctx, db, store.SeedParams{AdminUsername: "admin"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	queries := store.New(db)
	tokens := auth.NewTokenService(testSecret)
	refDate, _ := time.Parse("2006-01-02", "2029-10-01")
	registryService := registry.NewService(queries, refDate)
	reportService := report.NewService(queries)

	protectionCfg := middleware.DefaultLoginProtectionConfig()
	protectionCfg.IPRateLimit = 1000
	protectionCfg.IPBurst = 1000
	protection := middleware.NewLoginProtection(protectionCfg)

	supporterHandler := NewSupporterHandler(registryService)
	authHandler := NewAuthHandler(queries, tokens, protection)
	statsHandler := NewStatsHandler(reportService)
	eventsHandler := NewEventsHandler(queries)
	healthHandler := NewHealthHandler(db, tokens)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Route("/api", func(r chi.Router) {
		r.Post("/supporters", supporterHandler.Submit)
		r.Get("/supporters", supporterHandler.List)
		r.With(protection.Middleware()).Post("/admin/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))
			r.Get("/stats", statsHandler.Stats)
			r.Get("/export/csv", statsHandler.ExportCSV)
			r.Get("/events", eventsHandler.List)
			r.Post("/admin/password", authHandler.ChangePassword)
		})
	})

	return &testServer{router: r, queries: queries, tokens: tokens}
}

// do issues a request against the test router.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// login returns a valid session token for the seeded admin.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": store.DefaultAdminPassword,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("login response missing token")
	}
	return resp.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshaling response %q: %v", w.Body.String(), err)
	}
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func assertErrorBody(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &resp)
	if resp.Error != want {
		t.Errorf("error = %q; want %q", resp.Error, want)
	}
}

func testSubmission(contact string) map[string]string {
	return map[string]string{
		"name":      "Ama Mensah",
		"dob":       "1990-05-15",
		"sex":       "Female",
		"location":  "Hilltop",
		"community": "Riverside",
		"clan":      "Eagle",
		"district":  "North",
		"contact":   contact,
		"email":     "ama@example.com",
	}
}
