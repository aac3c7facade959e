// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report computes aggregate supporter statistics and renders the
// full registry as CSV for the admin dashboard.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/teamkwabo-boop/project29-backend/internal/model"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
)

// SexCount is one row of the gender breakdown.
type SexCount struct {
	Sex   string `json:"sex"`
	Count int64  `json:"count"`
}

// DistrictCount is one row of the district breakdown.
type DistrictCount struct {
	District string `json:"district"`
	Count    int64  `json:"count"`
}

// Stats is the dashboard aggregate response. The breakdowns cover every
// distinct value present; absent categories are not zero-padded.
type Stats struct {
	TotalSupporters   int64           `json:"totalSupporters"`
	GenderBreakdown   []SexCount      `json:"genderBreakdown"`
	DistrictBreakdown []DistrictCount `json:"districtBreakdown"`
}

// Service answers aggregate queries over the supporter registry.
type Service struct {
	queries *store.Queries
}

// NewService creates a reporting service.
func NewService(queries *store.Queries) *Service {
	return &Service{queries: queries}
}

// Stats runs the three aggregate queries concurrently and joins the
// results; no ordering dependency exists between them.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		total       int64
		bySex       []store.GroupCount
		byDistrict  []store.GroupCount
		g, groupCtx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		var err error
		total, err = s.queries.CountSupporters(groupCtx)
		return err
	})
	g.Go(func() error {
		var err error
		bySex, err = s.queries.CountSupportersBySex(groupCtx)
		return err
	})
	g.Go(func() error {
		var err error
		byDistrict, err = s.queries.CountSupportersByDistrict(groupCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("computing stats: %w", err)
	}

	stats := Stats{
		TotalSupporters:   total,
		GenderBreakdown:   make([]SexCount, 0, len(bySex)),
		DistrictBreakdown: make([]DistrictCount, 0, len(byDistrict)),
	}
	for _, gc := range bySex {
		stats.GenderBreakdown = append(stats.GenderBreakdown, SexCount{Sex: gc.Value, Count: gc.Count})
	}
	for _, gc := range byDistrict {
		stats.DistrictBreakdown = append(stats.DistrictBreakdown, DistrictCount{District: gc.Value, Count: gc.Count})
	}
	return stats, nil
}

// WriteCSV streams every supporter record to w as RFC 4180 CSV with a
// header row. An empty registry produces a header-only document.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	supporters, err := s.queries.ListSupporters(ctx, store.ListSupportersParams{})
	if err != nil {
		return fmt.Errorf("reading supporters for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(model.CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, sup := range supporters {
		if err := cw.Write(sup.CSVRecord()); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
