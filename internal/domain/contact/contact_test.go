package contact

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/folio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeClock captures AfterFunc callbacks so tests fire them by hand.
type fakeClock struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// fire runs every callback; stopped ones are still invoked to prove the
// controller ignores late timers.
func (c *fakeClock) fire() {
	c.mu.Lock()
	ts := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, t := range ts {
		t.f()
	}
}

func validForm() Form {
	return Form{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello there"}
}

func staticRelay(res Result, err error) Relay {
	return RelayFunc(func(context.Context, Form) (Result, error) { return res, err })
}

func TestFormValidation(t *testing.T) {
	Convey("Given form input", t, func() {
		Convey("When every required field is set", func() {
			So(validForm().Validate(), ShouldBeNil)
		})

		Convey("When the subject is omitted", func() {
			f := validForm()
			f.Subject = ""
			So(f.Validate(), ShouldBeNil)
		})

		Convey("When the email is malformed", func() {
			f := validForm()
			f.Email = "not-an-email"
			So(f.Validate(), ShouldNotBeNil)
		})

		Convey("When the message is missing", func() {
			f := validForm()
			f.Message = ""
			So(f.Validate(), ShouldNotBeNil)
		})

		Convey("When normalizing an oversized message", func() {
			f := validForm()
			f.Name = "  Ada  "
			f.Message = strings.Repeat("é", MaxMessageLength+50)
			n := f.normalize()
			So(n.Name, ShouldEqual, "Ada")
			So([]rune(n.Message), ShouldHaveLength, MaxMessageLength)
		})
	})
}

func TestControllerSubmit(t *testing.T) {
	Convey("Given a new controller", t, func() {
		clock := &fakeClock{}
		var got []Form
		relay := RelayFunc(func(_ context.Context, f Form) (Result, error) {
			got = append(got, f)
			return Result{Success: true}, nil
		})
		c := New(relay, WithClock(nil, clock.AfterFunc))

		So(c.State().Status, ShouldEqual, StatusIdle)
		So(c.State().Form.IsEmpty(), ShouldBeTrue)

		Convey("When the relay accepts the submission", func() {
			_, err := c.Update(validForm())
			So(err, ShouldBeNil)
			st, err := c.Submit(context.Background())

			Convey("Then the form is cleared and success shown", func() {
				So(err, ShouldBeNil)
				So(st.Status, ShouldEqual, StatusSuccess)
				So(st.Form.IsEmpty(), ShouldBeTrue)
				So(st.ErrorMessage, ShouldBeEmpty)
				So(got, ShouldHaveLength, 1)
				So(got[0], ShouldResemble, validForm())
			})

			Convey("Then the reset timer returns it to idle", func() {
				So(clock.pending, ShouldHaveLength, 1)
				So(clock.pending[0].d, ShouldEqual, DefaultResetAfter)
				clock.fire()
				So(c.State().Status, ShouldEqual, StatusIdle)
			})

			Convey("Then Dismiss returns it to idle and stops the timer", func() {
				timer := clock.pending[0]
				st, err := c.Dismiss()
				So(err, ShouldBeNil)
				So(st.Status, ShouldEqual, StatusIdle)
				So(timer.stopped, ShouldBeTrue)
			})

			Convey("Then a second submit is refused while success is shown", func() {
				_, err := c.Update(validForm())
				So(err, ShouldBeNil)
				_, err = c.Begin()
				So(errors.Is(err, ErrBusy), ShouldBeTrue)
			})
		})

		Convey("When the form is invalid", func() {
			_, err := c.Update(Form{Name: "Ada"})
			So(err, ShouldBeNil)
			st, err := c.Submit(context.Background())

			Convey("Then nothing is sent and status stays idle", func() {
				So(errors.Is(err, ErrInvalidForm), ShouldBeTrue)
				So(st.Status, ShouldEqual, StatusIdle)
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestControllerFailures(t *testing.T) {
	Convey("Given a filled form", t, func() {
		submit := func(r Relay) (*Controller, State) {
			c := New(r, WithResetAfter(0))
			_, err := c.Update(validForm())
			So(err, ShouldBeNil)
			st, err := c.Submit(context.Background())
			So(err, ShouldBeNil)
			return c, st
		}

		Convey("When the relay rejects with a message", func() {
			_, st := submit(staticRelay(Result{Success: false, Message: "Invalid access key"}, nil))

			Convey("Then the relay message is shown and fields are kept", func() {
				So(st.Status, ShouldEqual, StatusError)
				So(st.ErrorMessage, ShouldEqual, "Invalid access key")
				So(st.Form, ShouldResemble, validForm())
			})
		})

		Convey("When the relay rejects without a message", func() {
			_, st := submit(staticRelay(Result{Success: false}, nil))
			So(st.ErrorMessage, ShouldEqual, MessageFallback)
		})

		Convey("When the network fails", func() {
			_, st := submit(staticRelay(Result{}, errors.New("dial tcp: refused")))
			So(st.Status, ShouldEqual, StatusError)
			So(st.ErrorMessage, ShouldEqual, MessageNetwork)
			So(st.Form, ShouldResemble, validForm())
		})

		Convey("When the response is malformed", func() {
			_, st := submit(staticRelay(Result{}, ErrMalformedResponse))
			So(st.ErrorMessage, ShouldEqual, MessageFallback)
		})

		Convey("When resubmitting after an error", func() {
			calls := 0
			c, st := submit(RelayFunc(func(context.Context, Form) (Result, error) {
				calls++
				if calls == 1 {
					return Result{}, errors.New("offline")
				}
				return Result{Success: true}, nil
			}))
			So(st.Status, ShouldEqual, StatusError)

			st, err := c.Submit(context.Background())
			Convey("Then the retry succeeds and the error clears", func() {
				So(err, ShouldBeNil)
				So(st.Status, ShouldEqual, StatusSuccess)
				So(st.ErrorMessage, ShouldBeEmpty)
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When success is kept until dismissed", func() {
			c, st := submit(staticRelay(Result{Success: true}, nil))
			So(st.Status, ShouldEqual, StatusSuccess)
			_, err := c.Dismiss()
			So(err, ShouldBeNil)
			So(c.State().Status, ShouldEqual, StatusIdle)
		})
	})
}

func TestControllerTransitions(t *testing.T) {
	Convey("Given a controller with a blocking relay", t, func() {
		release := make(chan struct{})
		entered := make(chan struct{})
		relay := RelayFunc(func(ctx context.Context, _ Form) (Result, error) {
			close(entered)
			select {
			case <-release:
				return Result{Success: true}, nil
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		})
		c := New(relay, WithResetAfter(0))
		_, err := c.Update(validForm())
		So(err, ShouldBeNil)
		_, err = c.Begin()
		So(err, ShouldBeNil)

		type delivered struct {
			outcome Outcome
			err     error
		}
		done := make(chan delivered, 1)
		go func() {
			o, err := c.Deliver(context.Background())
			done <- delivered{o, err}
		}()
		<-entered

		Convey("When a second submit arrives while in flight", func() {
			_, err := c.Begin()
			So(errors.Is(err, ErrBusy), ShouldBeTrue)
			_, err = c.Update(Form{Name: "other"})
			So(errors.Is(err, ErrBusy), ShouldBeTrue)
			So(c.State().Status, ShouldEqual, StatusSubmitting)

			close(release)
			d := <-done
			So(d.err, ShouldBeNil)
			So(d.outcome, ShouldEqual, OutcomeSuccess)
		})

		Convey("When the controller closes mid-flight", func() {
			c.Close()
			d := <-done

			Convey("Then the late result is discarded", func() {
				So(d.err, ShouldBeNil)
				So(d.outcome, ShouldEqual, OutcomeDiscarded)
				So(c.State().Status, ShouldEqual, StatusSubmitting)
				So(c.Closed(), ShouldBeTrue)
				_, err := c.Update(validForm())
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When Fail is called during delivery", func() {
			_, err := c.Fail("x")
			So(errors.Is(err, ErrInvalidTransition), ShouldBeTrue)
			close(release)
			<-done
		})
	})

	Convey("Given a pending submission that was never delivered", t, func() {
		c := New(staticRelay(Result{Success: true}, nil))
		_, err := c.Update(validForm())
		So(err, ShouldBeNil)
		_, err = c.Begin()
		So(err, ShouldBeNil)

		Convey("When it fails to schedule", func() {
			st, err := c.Fail(MessageBusy)
			So(err, ShouldBeNil)
			So(st.Status, ShouldEqual, StatusError)
			So(st.ErrorMessage, ShouldEqual, MessageBusy)
			So(st.Form, ShouldResemble, validForm())
		})
	})

	Convey("Given an idle controller", t, func() {
		c := New(staticRelay(Result{Success: true}, nil))

		Convey("Then Dismiss is a no-op and Deliver is refused", func() {
			st, err := c.Dismiss()
			So(err, ShouldBeNil)
			So(st.Status, ShouldEqual, StatusIdle)
			_, err = c.Deliver(context.Background())
			So(errors.Is(err, ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestStaleResetTimer(t *testing.T) {
	Convey("Given a success whose timer fires after a new attempt began", t, func() {
		clock := &fakeClock{}
		results := []Result{{Success: true}, {Success: false, Message: "nope"}}
		i := 0
		c := New(RelayFunc(func(context.Context, Form) (Result, error) {
			r := results[i]
			i++
			return r, nil
		}), WithClock(nil, clock.AfterFunc))

		_, _ = c.Update(validForm())
		_, err := c.Submit(context.Background())
		So(err, ShouldBeNil)
		_, err = c.Dismiss()
		So(err, ShouldBeNil)
		_, _ = c.Update(validForm())
		st, err := c.Submit(context.Background())
		So(err, ShouldBeNil)
		So(st.Status, ShouldEqual, StatusError)

		Convey("Then the old timer leaves the error state alone", func() {
			clock.fire()
			So(c.State().Status, ShouldEqual, StatusError)
			So(c.State().ErrorMessage, ShouldEqual, "nope")
		})
	})
}
