package probe

import (
	"fmt"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/streak"
)

// VerifyDashboard checks the served aggregates against the calendar that
// came with them and against the source flags. The calendar itself must be
// in ascending date order.
func VerifyDashboard(d model.Dashboard) error {
	var prev model.ContributionDay
	for i, day := range d.Contributions {
		at := day.Time()
		if at.IsZero() {
			return fmt.Errorf("%w: calendar day %d has malformed date %q", ErrFailed, i, day.Date)
		}
		if i > 0 && !at.After(prev.Time()) {
			return fmt.Errorf("%w: calendar not ascending at %s", ErrFailed, day.Date)
		}
		prev = day
	}
	if total := streak.Total(d.Contributions); total != d.Stats.TotalContributions {
		return fmt.Errorf("%w: total %d does not match calendar sum %d", ErrFailed, d.Stats.TotalContributions, total)
	}
	if cur := streak.Current(d.Contributions); cur != d.Stats.CurrentStreak {
		return fmt.Errorf("%w: current streak %d, calendar says %d", ErrFailed, d.Stats.CurrentStreak, cur)
	}
	if d.Stats.CurrentStreak > d.Stats.LongestStreak {
		return fmt.Errorf("%w: current streak %d exceeds longest %d", ErrFailed, d.Stats.CurrentStreak, d.Stats.LongestStreak)
	}
	if !d.Sources.Contributions && len(d.Contributions) > 0 {
		return fmt.Errorf("%w: calendar present but marked unavailable", ErrFailed)
	}
	if !d.Sources.Profile && d.Stats.RepoCount != 0 {
		return fmt.Errorf("%w: repo count %d without a profile", ErrFailed, d.Stats.RepoCount)
	}
	if !d.Sources.Repositories && d.Stats.TotalStars != 0 {
		return fmt.Errorf("%w: %d stars without a repository list", ErrFailed, d.Stats.TotalStars)
	}
	return nil
}
