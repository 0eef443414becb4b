package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/folio/pkg/logger"
)

// Status is the form lifecycle state.
type Status string

// Form lifecycle states.
const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Outcome classifies how a delivery ended.
type Outcome string

// Delivery outcomes.
const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRelayError   Outcome = "relay_error"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeMalformed    Outcome = "malformed"
	OutcomeDiscarded    Outcome = "discarded"
)

// DefaultResetAfter is how long success is shown before the form returns to idle.
const DefaultResetAfter = 6 * time.Second

// State is a point-in-time copy of a controller.
type State struct {
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Form         Form      `json:"form"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Controller owns one form session. All methods are safe for concurrent use.
//
// Transitions: idle -> submitting -> {success, error}; success -> idle
// (timer or Dismiss); error -> submitting (resubmit).
type Controller struct {
	mu sync.Mutex

	relay Relay

	form      Form
	status    Status
	errMsg    string
	updatedAt time.Time

	// gen increments on every Begin so late timers and deliveries from an
	// earlier attempt cannot touch a newer one.
	gen    uint64
	cancel context.CancelFunc
	timer  Timer
	closed bool

	resetAfter time.Duration
	afterFunc  AfterFunc
	now        func() time.Time
	logger     logger.Logger
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithResetAfter sets the success display time. Zero or negative keeps the
// success state until Dismiss.
func WithResetAfter(d time.Duration) Option {
	return func(c *Controller) {
		c.resetAfter = d
	}
}

// WithClock replaces time.Now and time.AfterFunc, for tests.
func WithClock(now func() time.Time, after AfterFunc) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
		if after != nil {
			c.afterFunc = after
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an idle controller with an empty form.
func New(relay Relay, opts ...Option) *Controller {
	c := &Controller{
		relay:      relay,
		status:     StatusIdle,
		resetAfter: DefaultResetAfter,
		afterFunc:  realAfterFunc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("contact")
	}
	c.updatedAt = c.now()
	return c
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{Status: c.status, Form: c.form, UpdatedAt: c.updatedAt}
	if c.status == StatusError {
		s.ErrorMessage = c.errMsg
	}
	return s
}

// Update replaces the form fields. The message is truncated to
// MaxMessageLength runes.
func (c *Controller) Update(f Form) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.stateLocked(), ErrClosed
	}
	if c.status == StatusSubmitting {
		return c.stateLocked(), ErrBusy
	}
	c.form = f.normalize()
	c.updatedAt = c.now()
	return c.stateLocked(), nil
}

// Begin validates the form and moves idle or error to submitting.
func (c *Controller) Begin() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.stateLocked(), ErrClosed
	}
	switch c.status {
	case StatusIdle, StatusError:
	default:
		return c.stateLocked(), ErrBusy
	}
	if err := c.form.Validate(); err != nil {
		return c.stateLocked(), fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	c.stopTimerLocked()
	c.gen++
	c.status = StatusSubmitting
	c.errMsg = ""
	c.updatedAt = c.now()
	return c.stateLocked(), nil
}

// Deliver performs the relay call for the submission started by Begin and
// applies its result. Results arriving after Close, or after the attempt was
// superseded, are dropped and reported as OutcomeDiscarded.
func (c *Controller) Deliver(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return OutcomeDiscarded, ErrClosed
	}
	if c.status != StatusSubmitting || c.cancel != nil {
		c.mu.Unlock()
		return OutcomeDiscarded, ErrInvalidTransition
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	gen := c.gen
	form := c.form
	c.mu.Unlock()

	res, err := c.relay.Submit(ctx, form)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.cancel = nil
	}
	if c.closed || c.gen != gen || c.status != StatusSubmitting {
		c.logger.Debug(ctx, "dropping stale relay result")
		return OutcomeDiscarded, nil
	}

	switch {
	case err != nil && errors.Is(err, ErrMalformedResponse):
		c.logger.Warn(ctx, "relay response could not be decoded", logger.Error(err))
		c.failLocked(MessageFallback)
		return OutcomeMalformed, nil
	case err != nil:
		c.logger.Warn(ctx, "relay request failed", logger.Error(err))
		c.failLocked(MessageNetwork)
		return OutcomeNetworkError, nil
	case !res.Success:
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = MessageFallback
		}
		c.logger.Info(ctx, "relay rejected submission", logger.String("message", msg))
		c.failLocked(msg)
		return OutcomeRelayError, nil
	}

	c.form = Form{}
	c.status = StatusSuccess
	c.errMsg = ""
	c.updatedAt = c.now()
	c.armResetLocked(gen)
	return OutcomeSuccess, nil
}

// Submit runs Begin and Deliver back to back.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	if _, err := c.Begin(); err != nil {
		return c.State(), err
	}
	if _, err := c.Deliver(ctx); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

// Fail moves a pending submission to error with msg, for when the delivery
// could not even be scheduled.
func (c *Controller) Fail(msg string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.stateLocked(), ErrClosed
	}
	if c.status != StatusSubmitting || c.cancel != nil {
		return c.stateLocked(), ErrInvalidTransition
	}
	if strings.TrimSpace(msg) == "" {
		msg = MessageFallback
	}
	c.failLocked(msg)
	return c.stateLocked(), nil
}

// Dismiss returns a successful form to idle ahead of the timer.
func (c *Controller) Dismiss() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.stateLocked(), ErrClosed
	}
	switch c.status {
	case StatusIdle:
		return c.stateLocked(), nil
	case StatusSuccess:
		c.stopTimerLocked()
		c.status = StatusIdle
		c.updatedAt = c.now()
		return c.stateLocked(), nil
	default:
		return c.stateLocked(), ErrInvalidTransition
	}
}

// Close stops the reset timer and cancels an in-flight delivery. It is
// idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) failLocked(msg string) {
	c.status = StatusError
	c.errMsg = msg
	c.updatedAt = c.now()
}

func (c *Controller) armResetLocked(gen uint64) {
	if c.resetAfter <= 0 {
		return
	}
	c.timer = c.afterFunc(c.resetAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.gen != gen || c.status != StatusSuccess {
			return
		}
		c.status = StatusIdle
		c.updatedAt = c.now()
		c.timer = nil
	})
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
