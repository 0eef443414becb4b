package repository

import (
	"time"

	"github.com/okian/folio/pkg/logger"
)

// Option applies a configuration option to the SessionStore.
type Option func(*SessionStore)

// WithMaxSessions bounds the number of open sessions. When full, the
// least recently used session is closed to make room.
func WithMaxSessions(n int) Option {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTimeout expires sessions that were not touched for d.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithSweepInterval sets how often the background sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SessionStore) {
		if l != nil {
			s.logger = l
		}
	}
}
