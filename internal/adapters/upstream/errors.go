package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrStatus      = errors.New("unexpected upstream status")
	ErrDecode      = errors.New("upstream response could not be decoded")
	ErrNotFound    = errors.New("upstream resource not found")
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)
