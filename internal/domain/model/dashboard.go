package model

import "time"

// AggregateStats is derived on every load and never persisted.
type AggregateStats struct {
	TotalContributions int `json:"total_contributions"`
	CurrentStreak      int `json:"current_streak"`
	LongestStreak      int `json:"longest_streak"`
	RepoCount          int `json:"repo_count"`
	TotalStars         int `json:"total_stars"`
}

// Sources records which upstream fetches produced data. A false flag means
// the matching aggregates are zero because the data was unavailable.
type Sources struct {
	Contributions bool `json:"contributions"`
	Profile       bool `json:"profile"`
	Repositories  bool `json:"repositories"`
}

// Complete reports whether every source answered.
func (s Sources) Complete() bool {
	return s.Contributions && s.Profile && s.Repositories
}

// Any reports whether at least one source answered.
func (s Sources) Any() bool {
	return s.Contributions || s.Profile || s.Repositories
}

// Dashboard is the payload behind the open source section of the site.
type Dashboard struct {
	Username      string            `json:"username"`
	Stats         AggregateStats    `json:"stats"`
	Contributions []ContributionDay `json:"contributions"`
	Sources       Sources           `json:"sources"`
	FetchedAt     time.Time         `json:"fetched_at"`
}
