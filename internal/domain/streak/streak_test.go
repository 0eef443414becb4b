package streak_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/streak"
	. "github.com/smartystreets/goconvey/convey"
)

// days builds an ascending sequence ending today from the given counts.
func days(counts ...int) []model.ContributionDay {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.ContributionDay, len(counts))
	for i, c := range counts {
		out[i] = model.ContributionDay{
			Date:  start.AddDate(0, 0, i).Format(model.DateLayout),
			Count: c,
		}
	}
	return out
}

func TestTotal(t *testing.T) {
	Convey("Given contribution sequences", t, func() {
		Convey("When the sequence is empty", func() {
			So(streak.Total(nil), ShouldEqual, 0)
			So(streak.Total(days()), ShouldEqual, 0)
		})

		Convey("When the sequence has counts", func() {
			seq := days(1, 0, 4, 7, 0, 2)

			Convey("Then the total is the sum of counts", func() {
				So(streak.Total(seq), ShouldEqual, 14)
			})

			Convey("And it does not depend on order", func() {
				shuffled := append([]model.ContributionDay(nil), seq...)
				r := rand.New(rand.NewSource(7))
				r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
				So(streak.Total(shuffled), ShouldEqual, streak.Total(seq))
			})
		})
	})
}

func TestCurrent(t *testing.T) {
	Convey("Given the current streak calculation", t, func() {
		Convey("When the last day is active", func() {
			Convey("Then the run stops at the first zero", func() {
				So(streak.Current(days(1, 3, 0, 5, 2)), ShouldEqual, 2)
			})
		})

		Convey("When the last day has no activity yet", func() {
			Convey("Then the trailing zero is skipped", func() {
				So(streak.Current(days(0, 2, 3, 4, 0)), ShouldEqual, 3)
			})

			Convey("And all prior positive days count", func() {
				So(streak.Current(days(1, 1, 1, 1, 0)), ShouldEqual, 4)
			})

			Convey("And only one zero is skipped", func() {
				So(streak.Current(days(4, 4, 0, 0)), ShouldEqual, 0)
			})
		})

		Convey("When every day is zero", func() {
			So(streak.Current(days(0)), ShouldEqual, 0)
			So(streak.Current(days(0, 0, 0, 0)), ShouldEqual, 0)
		})

		Convey("When the sequence is empty", func() {
			So(streak.Current(nil), ShouldEqual, 0)
		})

		Convey("When every day is active", func() {
			Convey("Then the run reaches the start of the sequence", func() {
				So(streak.Current(days(1, 2, 3)), ShouldEqual, 3)
			})
		})

		Convey("When the sequence has one active day", func() {
			So(streak.Current(days(9)), ShouldEqual, 1)
		})
	})
}

func TestLongest(t *testing.T) {
	Convey("Given the longest streak calculation", t, func() {
		So(streak.Longest(nil), ShouldEqual, 0)
		So(streak.Longest(days(0, 0)), ShouldEqual, 0)
		So(streak.Longest(days(1, 1, 1, 0, 1, 1, 0, 1)), ShouldEqual, 3)
		So(streak.Longest(days(0, 1, 1, 1, 1)), ShouldEqual, 4)
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given all three sources", t, func() {
		profile := &model.Profile{Login: "octocat", PublicRepos: 12}
		repos := []model.Repository{{Name: "a", Stars: 3}, {Name: "b", Stars: 0}, {Name: "c", Stars: 9}}
		stats := streak.Summarize(days(2, 0, 1, 1), profile, repos)

		Convey("Then every aggregate is filled in", func() {
			So(stats.TotalContributions, ShouldEqual, 4)
			So(stats.CurrentStreak, ShouldEqual, 2)
			So(stats.LongestStreak, ShouldEqual, 2)
			So(stats.RepoCount, ShouldEqual, 12)
			So(stats.TotalStars, ShouldEqual, 12)
		})
	})

	Convey("Given missing sources", t, func() {
		stats := streak.Summarize(nil, nil, nil)

		Convey("Then the aggregates stay at zero", func() {
			So(stats, ShouldResemble, model.AggregateStats{})
		})
	})
}
