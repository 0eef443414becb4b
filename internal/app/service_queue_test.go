package service

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type noDays struct{}

func (noDays) Days(context.Context, string) ([]model.ContributionDay, error) {
	return []model.ContributionDay{}, nil
}

type noGitHub struct{}

func (noGitHub) Profile(context.Context, string) (model.Profile, error) { return model.Profile{}, nil }

func (noGitHub) Repositories(context.Context, string) ([]model.Repository, error) { return nil, nil }

func TestSubmitContact_QueueClosedDuringStop(t *testing.T) {
	Convey("Given a session whose submit lands after the queue closed", t, func() {
		ctx := context.Background()
		svc := New(
			WithWorkerCount(1),
			WithQueueSize(4),
			WithStatsRefresh(0),
			WithContributionSource(noDays{}),
			WithGitHubSource(noGitHub{}),
			WithRelay(contact.RelayFunc(func(context.Context, contact.Form) (contact.Result, error) {
				return contact.Result{Success: true}, nil
			})),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		s, err := svc.OpenContact(ctx)
		So(err, ShouldBeNil)
		_, err = svc.UpdateContact(ctx, s.ID, contact.Form{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
		So(err, ShouldBeNil)

		// as when Stop closes the queue after the submit passed its running check
		So(svc.queue.Close(), ShouldBeNil)
		got, err := svc.SubmitContact(ctx, s.ID)

		Convey("Then it is reported as unavailable, not as backpressure", func() {
			So(errors.Is(err, types.ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, types.ErrBackpressure), ShouldBeFalse)
			So(got.Status, ShouldEqual, contact.StatusError)
			So(got.ErrorMessage, ShouldEqual, contact.MessageFallback)
		})
	})
}
