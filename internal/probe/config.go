// Package probe drives a running folio instance over HTTP: it checks the
// read endpoints, verifies the dashboard figures and pushes contact forms
// through the full submit cycle.
package probe

import (
	"time"

	"github.com/okian/folio/internal/domain/contact"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Timeout  time.Duration // HTTP request timeout
	Sessions int           // Contact sessions to submit; zero skips the contact step
	Workers  int           // Concurrent contact sessions
	Poll     time.Duration // Interval between session state polls
	Wait     time.Duration // How long a submission may stay in submitting
	Form     contact.Form  // Fields sent by every session
	Verbose  bool          // Log each session outcome
}

// Stats holds probe statistics.
type Stats struct {
	SessionsOpened    int
	SessionsSucceeded int
	SessionsFailed    int
	SessionsRejected  int
	SessionsTimedOut  int
	DashboardComplete bool
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Outcome values reported per contact session.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeTimeout  = "timeout"
)
