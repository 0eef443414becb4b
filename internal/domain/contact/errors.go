package contact

import "errors"

// Sentinel kinds for contact errors.
var (
	// ErrBusy is returned when the current status does not accept the call,
	// e.g. a second submit while one is in flight.
	ErrBusy = errors.New("form is busy")
	// ErrInvalidForm wraps field validation errors.
	ErrInvalidForm = errors.New("invalid form")
	// ErrInvalidTransition is returned for transitions the state machine lacks.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("form session closed")
	// ErrMalformedResponse marks a relay answer that could not be decoded.
	// Relay implementations wrap it so the controller can tell it apart
	// from a transport failure.
	ErrMalformedResponse = errors.New("malformed relay response")
)

// Messages shown to the visitor.
const (
	MessageNetwork  = "Unable to reach the server. Please check your connection and try again."
	MessageFallback = "Something went wrong. Please try again later."
	MessageBusy     = "We are receiving a lot of messages right now. Please try again in a moment."
)
