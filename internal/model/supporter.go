// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Supporter, Admin, Event, and the error taxonomy.
package model

import "fmt"

// Sex is the enumerated sex of a supporter.
//
// Construct via ParseSex at trust boundaries; direct casting bypasses
// validation.
type Sex string

// Supported sex values.
const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

var validSexes = map[Sex]bool{
	SexMale:   true,
	SexFemale: true,
}

// ParseSex constructs a Sex from external input. The form layer constrains
// the value, but the service must not trust it blindly.
func ParseSex(s string) (Sex, error) {
	v := Sex(s)
	if !validSexes[v] {
		return "", fmt.Errorf("invalid sex %q", s)
	}
	return v, nil
}

// String returns the string representation of the sex.
func (s Sex) String() string {
	return string(s)
}

// DateLayout is the wire and storage format for dates of birth.
const DateLayout = "2006-01-02"

// Supporter is a single registration record. Records are write-once:
// created via submission, never mutated or deleted.
//
// JSON field names follow the published wire contract of the registration
// form and dashboard.
type Supporter struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DOB        string `json:"dob"` // DateLayout
	Sex        Sex    `json:"sex"`
	Location   string `json:"location"`
	Community  string `json:"community"`
	Clan       string `json:"clan"`
	District   string `json:"district"`
	Contact    string `json:"contact"`
	Email      string `json:"email,omitempty"`
	CurrentAge int    `json:"currentAge"`
	Age2029    int    `json:"age2029"`
}

// CSVHeader is the export column set, matching storage column order.
var CSVHeader = []string{
	"id", "name", "dob", "sex", "location", "community",
	"clan", "district", "contact", "email", "currentAge", "age2029",
}

// CSVRecord returns the supporter's fields in CSVHeader order.
func (s Supporter) CSVRecord() []string {
	return []string{
		fmt.Sprintf("%d", s.ID),
		s.Name,
		s.DOB,
		s.Sex.String(),
		s.Location,
		s.Community,
		s.Clan,
		s.District,
		s.Contact,
		s.Email,
		fmt.Sprintf("%d", s.CurrentAge),
		fmt.Sprintf("%d", s.Age2029),
	}
}
