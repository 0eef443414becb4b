// Package streak derives contribution aggregates from a day-count sequence.
//
// All functions expect days in chronologically ascending order, as the
// contribution feed delivers them, and never mutate their input.
package streak

import (
	"github.com/okian/folio/internal/domain/model"
)

// Total returns the sum of all day counts. Negative counts are ignored.
func Total(days []model.ContributionDay) int {
	total := 0
	for _, d := range days {
		if d.Count > 0 {
			total += d.Count
		}
	}
	return total
}

// Current returns the number of consecutive days with activity ending at the
// most recent day. A zero on the most recent day is skipped once, since
// today's activity may simply not have been recorded yet; the run before it
// still counts.
func Current(days []model.ContributionDay) int {
	if len(days) == 0 {
		return 0
	}

	offset := 0
	if days[len(days)-1].Count == 0 {
		offset = 1
	}

	run := 0
	for i := len(days) - 1 - offset; i >= 0; i-- {
		if days[i].Count <= 0 {
			break
		}
		run++
	}
	return run
}

// Longest returns the longest run of consecutive active days anywhere in
// the sequence.
func Longest(days []model.ContributionDay) int {
	best, run := 0, 0
	for _, d := range days {
		if d.Count <= 0 {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}

// Stars sums star counts over a repository list.
func Stars(repos []model.Repository) int {
	total := 0
	for _, r := range repos {
		if r.Stars > 0 {
			total += r.Stars
		}
	}
	return total
}

// Summarize builds the aggregate numbers for the dashboard. A nil profile
// or repository list leaves the matching counts at zero.
func Summarize(days []model.ContributionDay, profile *model.Profile, repos []model.Repository) model.AggregateStats {
	stats := model.AggregateStats{
		TotalContributions: Total(days),
		CurrentStreak:      Current(days),
		LongestStreak:      Longest(days),
		TotalStars:         Stars(repos),
	}
	if profile != nil {
		stats.RepoCount = profile.PublicRepos
	}
	return stats
}
