// Package types contains the shapes and error kinds shared between the
// service layer and the HTTP API.
package types

import (
	"errors"
	"time"

	"github.com/okian/folio/internal/domain/contact"
)

// Error kinds the API maps to status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrUnavailable  = errors.New("service unavailable")
)

// ContactSession is a form session as seen by the browser. The embedded
// state is flattened into the JSON object.
type ContactSession struct {
	ID string `json:"id"`
	contact.State
}

// Health is the liveness payload.
type Health struct {
	Status string    `json:"status"`
	Uptime string    `json:"uptime"`
	Time   time.Time `json:"time"`
}
