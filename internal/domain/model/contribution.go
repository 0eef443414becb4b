// Package model contains domain models passed between layers.
package model

import "time"

// DateLayout is the calendar date format used by the contribution feed.
const DateLayout = "2006-01-02"

// ContributionDay is one calendar day of activity from the contribution feed.
// Sequences are chronologically ascending.
type ContributionDay struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Count int    `json:"count"` // non-negative
	Level int    `json:"level"` // 0-4 intensity bucket
}

// Time parses Date. The zero time is returned for malformed dates.
func (d ContributionDay) Time() time.Time {
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
