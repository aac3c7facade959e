// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
)

// DefaultAdminPassword is seeded when no explicit password is configured.
// It exists for first-run provisioning only and must be rotated before
// production use; Seed warns on every startup while it still verifies.
const DefaultAdminPassword = "changeMe123"

// SeedParams configures the initial admin credential.
type SeedParams struct {
	AdminUsername string
	// AdminPassword overrides DefaultAdminPassword when non-empty.
	AdminPassword string
}

// Seed provisions the admin credential. Insert-if-absent: an existing
// record is never overwritten, so re-running at every startup is safe.
func Seed(ctx context.Context, db *sql.DB, p SeedParams) error {
	queries := New(db)

	password := p.AdminPassword
	usingDefault := password == ""
	if usingDefault {
		password = DefaultAdminPassword
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	inserted, err := queries.CreateAdmin(ctx, p.AdminUsername, passwordHash)
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	if inserted {
		slog.Info("created admin account", "username", p.AdminUsername)
	}

	// Warn while the default credential is still live, whether just
	// seeded or left over from an earlier run.
	admin, err := queries.GetAdminByUsername(ctx, p.AdminUsername)
	if err != nil {
		return fmt.Errorf("reading admin: %w", err)
	}
	if ok, err := auth.CheckPassword(DefaultAdminPassword, admin.PasswordHash); err == nil && ok {
		slog.Warn("default admin password in use; rotate it before production",
			"category", "auth",
			"username", p.AdminUsername,
		)
	}

	return nil
}
