// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
	"github.com/teamkwabo-boop/project29-backend/internal/model"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
	"github.com/teamkwabo-boop/project29-backend/internal/testutil"
)

func newTestQueries(t *testing.T) *store.Queries {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return store.New(db)
}

func supporterParams(name, contact string) store.CreateSupporterParams {
	return store.CreateSupporterParams{
		Name:       name,
		DOB:        "1990-05-15",
		Sex:        model.SexFemale,
		Location:   "Hilltop",
		Community:  "Riverside",
		Clan:       "Eagle",
		District:   "North",
		Contact:    contact,
		Email:      "",
		CurrentAge: 34,
		Age2029:    39,
	}
}

func TestNewDB_InvalidPath(t *testing.T) {
	_, err := store.NewDB("/nonexistent-dir/sub/test.db")
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	// TestDB already migrated once; a second run must be a no-op.
	if err := store.Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestCreateSupporter_RoundTrip(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	created, err := q.CreateSupporter(ctx, supporterParams("Ama Mensah", "0244000001"))
	if err != nil {
		t.Fatalf("CreateSupporter: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero id")
	}

	listed, err := q.ListSupporters(ctx, store.ListSupportersParams{})
	if err != nil {
		t.Fatalf("ListSupporters: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("got %d supporters; want 1", len(listed))
	}
	if listed[0] != created {
		t.Errorf("listed = %+v; want %+v", listed[0], created)
	}
}

func TestCreateSupporter_EmailNullability(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	p := supporterParams("Ama Mensah", "0244000001")
	p.Email = "ama@example.com"
	if _, err := q.CreateSupporter(ctx, p); err != nil {
		t.Fatalf("CreateSupporter with email: %v", err)
	}

	p2 := supporterParams("Kofi Boateng", "0244000002")
	if _, err := q.CreateSupporter(ctx, p2); err != nil {
		t.Fatalf("CreateSupporter without email: %v", err)
	}

	listed, err := q.ListSupporters(ctx, store.ListSupportersParams{})
	if err != nil {
		t.Fatalf("ListSupporters: %v", err)
	}
	if listed[0].Email != "ama@example.com" {
		t.Errorf("email = %q; want ama@example.com", listed[0].Email)
	}
	if listed[1].Email != "" {
		t.Errorf("email = %q; want empty", listed[1].Email)
	}
}

func TestCreateSupporter_UniqueConstraint(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	if _, err := q.CreateSupporter(ctx, supporterParams("Ama Mensah", "0244000001")); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := q.CreateSupporter(ctx, supporterParams("Ama Mensah", "0244000001"))
	if !errors.Is(err, model.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}

	// Only the key triple matters; a different contact passes.
	if _, err := q.CreateSupporter(ctx, supporterParams("Ama Mensah", "0244000009")); err != nil {
		t.Fatalf("insert with different contact: %v", err)
	}
}

func TestCountSupporters(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	total, err := q.CountSupporters(ctx)
	if err != nil {
		t.Fatalf("CountSupporters: %v", err)
	}
	if total != 0 {
		t.Errorf("empty count = %d; want 0", total)
	}

	for i, contact := range []string{"0244000001", "0244000002", "0244000003"} {
		p := supporterParams("Supporter", contact)
		if i == 2 {
			p.Sex = model.SexMale
			p.District = "South"
		}
		if _, err := q.CreateSupporter(ctx, p); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	total, err = q.CountSupporters(ctx)
	if err != nil {
		t.Fatalf("CountSupporters: %v", err)
	}
	if total != 3 {
		t.Errorf("count = %d; want 3", total)
	}

	bySex, err := q.CountSupportersBySex(ctx)
	if err != nil {
		t.Fatalf("CountSupportersBySex: %v", err)
	}
	if len(bySex) != 2 {
		t.Fatalf("got %d sex groups; want 2", len(bySex))
	}
	var sum int64
	for _, gc := range bySex {
		sum += gc.Count
	}
	if sum != total {
		t.Errorf("sex group sum = %d; want %d", sum, total)
	}

	byDistrict, err := q.CountSupportersByDistrict(ctx)
	if err != nil {
		t.Fatalf("CountSupportersByDistrict: %v", err)
	}
	if len(byDistrict) != 2 {
		t.Fatalf("got %d district groups; want 2", len(byDistrict))
	}
	sum = 0
	for _, gc := range byDistrict {
		sum += gc.Count
	}
	if sum != total {
		t.Errorf("district group sum = %d; want %d", sum, total)
	}
}

func TestAdminLifecycle(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	_, err := q.GetAdminByUsername(ctx, "admin")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	inserted, err := q.CreateAdmin(ctx, "admin", "hash-1")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if !inserted {
		t.Error("expected first CreateAdmin to insert")
	}

	// Insert-if-absent: the existing hash must survive a re-run.
	inserted, err = q.CreateAdmin(ctx, "admin", "hash-2")
	if err != nil {
		t.Fatalf("second CreateAdmin: %v", err)
	}
	if inserted {
		t.Error("expected second CreateAdmin to be a no-op")
	}

	admin, err := q.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if admin.PasswordHash != "hash-1" {
		t.Errorf("hash = %q; want hash-1", admin.PasswordHash)
	}

	if err := q.UpdateAdminPassword(ctx, admin.ID, "hash-3"); err != nil {
		t.Fatalf("UpdateAdminPassword: %v", err)
	}
	admin, err = q.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername after update: %v", err)
	}
	if admin.PasswordHash != "hash-3" {
		t.Errorf("hash = %q; want hash-3", admin.PasswordHash)
	}

	err = q.UpdateAdminPassword(ctx, admin.ID+100, "hash-4")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	ctx := context.Background()

	if err := store.Seed(ctx, db, store.SeedParams{AdminUsername: "admin"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := q.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	ok, err := auth.CheckPassword(store.DefaultAdminPassword, admin.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("default password should verify, ok=%v err=%v", ok, err)
	}

	// Re-seeding with an explicit password must not overwrite.
	if err := store.Seed(ctx, db, store.SeedParams{AdminUsername: "admin", AdminPassword: "anotherPass99"}); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	admin2, err := q.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if admin2.PasswordHash != admin.PasswordHash {
		t.Error("re-seeding overwrote the existing credential")
	}
}

func TestSeed_ExplicitPassword(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Seed(ctx, db, store.SeedParams{AdminUsername: "admin", AdminPassword: "sup3rSecret!"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := store.New(db).GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if ok, _ := auth.CheckPassword("sup3rSecret!", admin.PasswordHash); !ok {
		t.Error("explicit password should verify")
	}
	if ok, _ := auth.CheckPassword(store.DefaultAdminPassword, admin.PasswordHash); ok {
		t.Error("default password should not verify")
	}
}

func TestEvents(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelWarning,
			Category:  model.EventCategoryAuth,
			Message:   "login failed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events; want 2", len(events))
	}
	if !events[0].CreatedAt.After(events[1].CreatedAt) {
		t.Error("events should be newest first")
	}
	if events[0].Metadata != "{}" {
		t.Errorf("empty metadata = %q; want {}", events[0].Metadata)
	}
}
