package contact

import "context"

// Result is the relay's verdict once the HTTP exchange completed.
type Result struct {
	Success bool
	Message string
}

// Relay delivers a form to the third-party form relay. A returned error
// means the exchange itself failed; a relay-side rejection is reported
// through Result with Success=false.
type Relay interface {
	Submit(ctx context.Context, f Form) (Result, error)
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(ctx context.Context, f Form) (Result, error)

// Submit calls fn.
func (fn RelayFunc) Submit(ctx context.Context, f Form) (Result, error) { return fn(ctx, f) }
