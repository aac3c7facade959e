// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/teamkwabo-boop/project29-backend/internal/model"
)

// Queries wraps a database handle with typed query methods. Construct
// once with New and inject it; services never touch *sql.DB directly.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance for the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// SQLITE_CONSTRAINT_UNIQUE extended result code.
const sqliteConstraintUnique = 2067

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const supporterColumns = "id, name, dob, sex, location, community, clan, district, contact, email, current_age, age_2029"

// CreateSupporterParams holds the fields for a new supporter row.
type CreateSupporterParams struct {
	Name       string
	DOB        string
	Sex        model.Sex
	Location   string
	Community  string
	Clan       string
	District   string
	Contact    string
	Email      string
	CurrentAge int
	Age2029    int
}

// CreateSupporter inserts a supporter record. The (name, dob, contact)
// uniqueness invariant is enforced by the database so the check-and-insert
// is atomic under concurrent submissions; a violation returns
// model.ErrDuplicateEntry and leaves the existing row untouched.
func (q *Queries) CreateSupporter(ctx context.Context, p CreateSupporterParams) (model.Supporter, error) {
	email := sql.NullString{String: p.Email, Valid: p.Email != ""}

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO supporters (name, dob, sex, location, community, clan, district, contact, email, current_age, age_2029)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.DOB, p.Sex.String(), p.Location, p.Community, p.Clan, p.District, p.Contact, email, p.CurrentAge, p.Age2029,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Supporter{}, model.ErrDuplicateEntry
		}
		return model.Supporter{}, fmt.Errorf("inserting supporter: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Supporter{}, fmt.Errorf("reading supporter id: %w", err)
	}

	return model.Supporter{
		ID:         id,
		Name:       p.Name,
		DOB:        p.DOB,
		Sex:        p.Sex,
		Location:   p.Location,
		Community:  p.Community,
		Clan:       p.Clan,
		District:   p.District,
		Contact:    p.Contact,
		Email:      p.Email,
		CurrentAge: p.CurrentAge,
		Age2029:    p.Age2029,
	}, nil
}

// ListSupportersParams are optional, conjunctive supporter filters.
// Empty fields impose no constraint.
type ListSupportersParams struct {
	District string // exact match
	Sex      string // exact match
	Query    string // substring of name, contact, or community
}

// ListSupporters returns supporters matching the filters in creation
// order (ascending id).
//
// Substring matching uses SQLite LIKE, which is case-insensitive for
// ASCII and case-sensitive for characters beyond ASCII. This is the
// store's default collation behavior and is pinned by tests.
func (q *Queries) ListSupporters(ctx context.Context, p ListSupportersParams) ([]model.Supporter, error) {
	query := "SELECT " + supporterColumns + " FROM supporters WHERE 1=1"
	var args []any

	if p.District != "" {
		query += " AND district = ?"
		args = append(args, p.District)
	}
	if p.Sex != "" {
		query += " AND sex = ?"
		args = append(args, p.Sex)
	}
	if p.Query != "" {
		pattern := "%" + escapeLike(p.Query) + "%"
		query += ` AND (name LIKE ? ESCAPE '\' OR contact LIKE ? ESCAPE '\' OR community LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY id ASC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing supporters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	supporters := []model.Supporter{}
	for rows.Next() {
		s, err := scanSupporter(rows)
		if err != nil {
			return nil, err
		}
		supporters = append(supporters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing supporters: %w", err)
	}
	return supporters, nil
}

// escapeLike escapes LIKE wildcards in user input so that a literal
// "%" or "_" in a search term matches itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func scanSupporter(rows *sql.Rows) (model.Supporter, error) {
	var s model.Supporter
	var sex string
	var email sql.NullString
	if err := rows.Scan(&s.ID, &s.Name, &s.DOB, &sex, &s.Location, &s.Community,
		&s.Clan, &s.District, &s.Contact, &email, &s.CurrentAge, &s.Age2029); err != nil {
		return model.Supporter{}, fmt.Errorf("scanning supporter: %w", err)
	}
	s.Sex = model.Sex(sex)
	s.Email = email.String
	return s, nil
}

// CountSupporters returns the total number of supporter records.
func (q *Queries) CountSupporters(ctx context.Context) (int64, error) {
	var total int64
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM supporters").Scan(&total); err != nil {
		return 0, fmt.Errorf("counting supporters: %w", err)
	}
	return total, nil
}

// GroupCount is one (value, count) pair of a grouped aggregate.
type GroupCount struct {
	Value string
	Count int64
}

// Groupable supporter columns. Grouping is restricted to this allowlist;
// column names are never taken from request input.
const (
	GroupBySex      = "sex"
	GroupByDistrict = "district"
)

// CountSupportersBySex returns supporter counts grouped by sex, covering
// every distinct value present.
func (q *Queries) CountSupportersBySex(ctx context.Context) ([]GroupCount, error) {
	return q.countSupportersBy(ctx, GroupBySex)
}

// CountSupportersByDistrict returns supporter counts grouped by district.
func (q *Queries) CountSupportersByDistrict(ctx context.Context) ([]GroupCount, error) {
	return q.countSupportersBy(ctx, GroupByDistrict)
}

func (q *Queries) countSupportersBy(ctx context.Context, column string) ([]GroupCount, error) {
	if column != GroupBySex && column != GroupByDistrict {
		return nil, fmt.Errorf("ungroupable column %q", column)
	}

	rows, err := q.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM supporters GROUP BY %s ORDER BY %s", column, column, column))
	if err != nil {
		return nil, fmt.Errorf("grouping supporters by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	counts := []GroupCount{}
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Value, &gc.Count); err != nil {
			return nil, fmt.Errorf("scanning group count: %w", err)
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grouping supporters by %s: %w", column, err)
	}
	return counts, nil
}

// GetAdminByUsername returns the admin credential for the given username.
// A missing record yields model.ErrNotFound.
func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (model.Admin, error) {
	var a model.Admin
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM admins WHERE username = ?", username).
		Scan(&a.ID, &a.Username, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, fmt.Errorf("admin %q: %w", username, model.ErrNotFound)
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("reading admin: %w", err)
	}
	return a, nil
}

// CreateAdmin inserts the admin credential if no record with the username
// exists yet. Idempotent: re-running is a no-op. Returns true when a row
// was inserted.
func (q *Queries) CreateAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO admins (username, password_hash) VALUES (?, ?)",
		username, passwordHash)
	if err != nil {
		return false, fmt.Errorf("inserting admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// UpdateAdminPassword replaces the stored password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE admins SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating admin password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("admin %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// CreateEventParams holds the fields for a new event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) (model.Event, error) {
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		p.Level, p.Category, p.Message, p.Metadata, p.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("inserting event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, fmt.Errorf("reading event id: %w", err)
	}
	return model.Event{
		ID:        id,
		Level:     p.Level,
		Category:  p.Category,
		Message:   p.Message,
		Metadata:  p.Metadata,
		CreatedAt: p.CreatedAt,
	}, nil
}

// ListRecentEvents returns up to limit events, newest first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, level, category, message, metadata, created_at FROM events ORDER BY created_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}
