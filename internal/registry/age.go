// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry implements validated supporter ingestion with
// duplicate detection, derived age fields, and filtered querying.
package registry

import "time"

// AgeAt returns the whole years between dob and at, calendar-aware: if
// at's month/day precedes dob's month/day, the year in progress does not
// count.
func AgeAt(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return age
}
