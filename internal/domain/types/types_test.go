package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/folio/internal/domain/contact"
	types "github.com/okian/folio/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestContactSessionJSON(t *testing.T) {
	Convey("Given a session in the error state", t, func() {
		s := types.ContactSession{
			ID: "abc",
			State: contact.State{
				Status:       contact.StatusError,
				ErrorMessage: contact.MessageNetwork,
				Form:         contact.Form{Name: "Ada", Email: "ada@example.com", Message: "hi"},
				UpdatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}

		Convey("When encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)

			Convey("Then the state fields sit next to the id", func() {
				So(m["id"], ShouldEqual, "abc")
				So(m["status"], ShouldEqual, "error")
				So(m["error_message"], ShouldEqual, contact.MessageNetwork)
				So(m["form"].(map[string]any)["name"], ShouldEqual, "Ada")
				_, hasSubject := m["form"].(map[string]any)["subject"]
				So(hasSubject, ShouldBeFalse)
			})
		})
	})

	Convey("Given an idle session", t, func() {
		raw, err := json.Marshal(types.ContactSession{ID: "x", State: contact.State{Status: contact.StatusIdle}})

		Convey("Then no error message is emitted", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldNotContainSubstring, "error_message")
		})
	})
}
