// Package dashboard assembles the open source section: the contribution
// calendar plus aggregate stats, loaded from three independent upstreams.
package dashboard

import (
	"context"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/streak"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Upstream source names, used in logs and metrics.
const (
	SourceContributions = "contributions"
	SourceProfile       = "profile"
	SourceRepositories  = "repositories"
)

const defaultFetchTimeout = 8 * time.Second

// ContributionSource returns a user's contribution calendar.
type ContributionSource interface {
	Days(ctx context.Context, user string) ([]model.ContributionDay, error)
}

// GitHubSource returns profile and repository data.
type GitHubSource interface {
	Profile(ctx context.Context, user string) (model.Profile, error)
	Repositories(ctx context.Context, user string) ([]model.Repository, error)
}

// Loader fetches everything a Dashboard needs. Failures never abort the
// load; the failing source is flagged and its figures stay zero.
type Loader struct {
	user          string
	contributions ContributionSource
	github        GitHubSource
	timeout       time.Duration
	now           func() time.Time
	logger        logger.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFetchTimeout bounds each upstream call.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLoaderClock replaces time.Now.
func WithLoaderClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLoaderLogger sets a custom logger.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a loader for user.
func NewLoader(user string, c ContributionSource, g GitHubSource, opts ...LoaderOption) *Loader {
	l := &Loader{
		user:          user,
		contributions: c,
		github:        g,
		timeout:       defaultFetchTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("dashboard")
	}
	return l
}

// Load runs the three fetches concurrently and summarizes whatever came back.
func (l *Loader) Load(ctx context.Context) (model.Dashboard, error) {
	var (
		days    []model.ContributionDay
		profile model.Profile
		repos   []model.Repository
		src     model.Sources
	)

	// Each goroutine reports nil so one failure does not cancel the others.
	// Results are kept only when the fetch succeeded, so a failed source
	// contributes nothing even if it returned partial data.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src.Contributions = l.fetch(gctx, SourceContributions, func(ctx context.Context) error {
			d, err := l.contributions.Days(ctx, l.user)
			if err != nil {
				return err
			}
			if d == nil {
				return ErrNoContributions
			}
			days = d
			return nil
		})
		return nil
	})
	g.Go(func() error {
		src.Profile = l.fetch(gctx, SourceProfile, func(ctx context.Context) error {
			p, err := l.github.Profile(ctx, l.user)
			if err != nil {
				return err
			}
			profile = p
			return nil
		})
		return nil
	})
	g.Go(func() error {
		src.Repositories = l.fetch(gctx, SourceRepositories, func(ctx context.Context) error {
			r, err := l.github.Repositories(ctx, l.user)
			if err != nil {
				return err
			}
			repos = r
			return nil
		})
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return model.Dashboard{}, err
	}

	var p *model.Profile
	if src.Profile {
		p = &profile
	}
	if days == nil {
		days = []model.ContributionDay{}
	}
	return model.Dashboard{
		Username:      l.user,
		Stats:         streak.Summarize(days, p, repos),
		Contributions: days,
		Sources:       src,
		FetchedAt:     l.now().UTC(),
	}, nil
}

// fetch runs f under the fetch timeout, records the outcome and reports
// whether it succeeded.
func (l *Loader) fetch(ctx context.Context, source string, f func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	err := f(ctx)
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		metrics.RecordUpstreamFetch(source, "error", latency)
		l.logger.Warn(ctx, "upstream fetch failed",
			logger.String("source", source),
			logger.String("user", l.user),
			logger.Error(err),
		)
		return false
	}
	metrics.RecordUpstreamFetch(source, "ok", latency)
	return true
}
