package service

import (
	"time"

	"github.com/okian/folio/internal/content"
	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/dashboard"
	"github.com/okian/folio/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending deliveries.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions bounds open contact sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionIdle expires sessions untouched for d.
func WithSessionIdle(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionIdle = d
		}
	}
}

// WithSuccessReset sets how long a successful form shows success. Zero
// keeps it until dismissed.
func WithSuccessReset(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.successReset = d
		}
	}
}

// WithFetchTimeout bounds every upstream call.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithStatsTTL sets how long a dashboard load is served from cache.
func WithStatsTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.statsTTL = d
		}
	}
}

// WithStatsRefresh sets the background warm-up interval. Zero disables
// the periodic refresh; the cache is still filled on first request.
func WithStatsRefresh(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.statsRefresh = d
		}
	}
}

// WithGitHubUsername picks the account shown in the dashboard.
func WithGitHubUsername(user string) Option {
	return func(s *Service) {
		if user != "" {
			s.githubUser = user
		}
	}
}

// WithRelay sets the form relay.
func WithRelay(r contact.Relay) Option {
	return func(s *Service) {
		if r != nil {
			s.relay = r
		}
	}
}

// WithContributionSource sets the contribution calendar upstream.
func WithContributionSource(c dashboard.ContributionSource) Option {
	return func(s *Service) {
		if c != nil {
			s.contributions = c
		}
	}
}

// WithGitHubSource sets the profile and repository upstream.
func WithGitHubSource(g dashboard.GitHubSource) Option {
	return func(s *Service) {
		if g != nil {
			s.github = g
		}
	}
}

// WithPortfolio sets the portfolio content.
func WithPortfolio(p *content.Portfolio) Option {
	return func(s *Service) {
		if p != nil {
			s.portfolio = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
