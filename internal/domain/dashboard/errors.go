package dashboard

import "errors"

// Sentinel kinds for dashboard errors.
var (
	// ErrStopped is returned by a Refresher that was stopped.
	ErrStopped = errors.New("refresher stopped")
	// ErrNoContributions marks a calendar response that carried no days
	// array, which is reported as an unavailable source rather than zero.
	ErrNoContributions = errors.New("contribution calendar missing")
)
