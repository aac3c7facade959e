// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teamkwabo-boop/project29-backend/internal/model"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
)

// Service is the supporter registry: write-once ingestion and filtered
// listing. All persistence goes through the injected store queries.
type Service struct {
	queries *store.Queries
	refDate time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a registry service. refDate is the fixed future date
// the projected age field is computed against.
func NewService(queries *store.Queries, refDate time.Time) *Service {
	return &Service{
		queries: queries,
		refDate: refDate,
		now:     time.Now,
	}
}

// Submission is a raw supporter registration as received from the form.
type Submission struct {
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Sex       string `json:"sex"`
	Location  string `json:"location"`
	Community string `json:"community"`
	Clan      string `json:"clan"`
	District  string `json:"district"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
}

// Submit validates a submission, derives the age fields, and persists the
// record. Returns model.ErrDuplicateEntry when a record with the same
// (name, dob, contact) already exists, or a *model.ValidationError when a
// mandatory field is missing or invalid.
func (s *Service) Submit(ctx context.Context, sub Submission) (model.Supporter, error) {
	required := []struct {
		field string
		value *string
	}{
		{"name", &sub.Name},
		{"dob", &sub.DOB},
		{"sex", &sub.Sex},
		{"location", &sub.Location},
		{"community", &sub.Community},
		{"clan", &sub.Clan},
		{"district", &sub.District},
		{"contact", &sub.Contact},
	}
	for _, f := range required {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return model.Supporter{}, model.NewValidationError(f.field, "is required")
		}
	}
	sub.Email = strings.TrimSpace(sub.Email)

	sex, err := model.ParseSex(sub.Sex)
	if err != nil {
		return model.Supporter{}, model.NewValidationError("sex", "must be Male or Female")
	}

	dob, err := time.Parse(model.DateLayout, sub.DOB)
	if err != nil {
		return model.Supporter{}, model.NewValidationError("dob", "must be a date in YYYY-MM-DD format")
	}

	now := s.now()
	if dob.After(now) {
		return model.Supporter{}, model.NewValidationError("dob", "must not be in the future")
	}

	supporter, err := s.queries.CreateSupporter(ctx, store.CreateSupporterParams{
		Name:       sub.Name,
		DOB:        sub.DOB,
		Sex:        sex,
		Location:   sub.Location,
		Community:  sub.Community,
		Clan:       sub.Clan,
		District:   sub.District,
		Contact:    sub.Contact,
		Email:      sub.Email,
		CurrentAge: AgeAt(dob, now),
		Age2029:    AgeAt(dob, s.refDate),
	})
	if err != nil {
		// ErrDuplicateEntry passes through untouched for the handler.
		return model.Supporter{}, err
	}
	return supporter, nil
}

// Filters narrow a listing. Empty fields impose no constraint; filters
// compose conjunctively.
type Filters struct {
	District string
	Sex      string
	Query    string
}

// List returns supporters matching the filters in creation order. An
// empty result set is a valid response, not an error.
func (s *Service) List(ctx context.Context, f Filters) ([]model.Supporter, error) {
	supporters, err := s.queries.ListSupporters(ctx, store.ListSupportersParams{
		District: f.District,
		Sex:      f.Sex,
		Query:    f.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("listing supporters: %w", err)
	}
	return supporters, nil
}
