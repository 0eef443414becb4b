package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/okian/folio/internal/domain/contact"
	. "github.com/smartystreets/goconvey/convey"
)

func form() contact.Form {
	return contact.Form{Name: "Ada", Email: "ada@example.com", Message: "Hello"}
}

func TestRelaySubmit(t *testing.T) {
	Convey("Given a relay endpoint", t, func() {
		var got map[string]any
		var status = http.StatusOK
		var body = `{"success":true,"message":"Email sent successfully!"}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			got = nil
			_ = json.Unmarshal(raw, &got)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
		defer srv.Close()

		relay := NewRelay(srv.URL, "key-123", "Portfolio Contact Form", time.Second)

		Convey("When the relay accepts the form", func() {
			res, err := relay.Submit(context.Background(), form())

			Convey("Then the payload carries the key and botcheck", func() {
				So(err, ShouldBeNil)
				So(res.Success, ShouldBeTrue)
				So(got["access_key"], ShouldEqual, "key-123")
				So(got["from_name"], ShouldEqual, "Portfolio Contact Form")
				So(got["name"], ShouldEqual, "Ada")
				So(got["email"], ShouldEqual, "ada@example.com")
				So(got["message"], ShouldEqual, "Hello")
				So(got["botcheck"], ShouldEqual, false)
				_, hasSubject := got["subject"]
				So(hasSubject, ShouldBeFalse)
			})
		})

		Convey("When the relay rejects with a 4xx body", func() {
			status = http.StatusBadRequest
			body = `{"success":false,"message":"Invalid access key"}`
			res, err := relay.Submit(context.Background(), form())

			So(err, ShouldBeNil)
			So(res.Success, ShouldBeFalse)
			So(res.Message, ShouldEqual, "Invalid access key")
		})

		Convey("When the body is not JSON", func() {
			status = http.StatusBadGateway
			body = `<html>bad gateway</html>`
			_, err := relay.Submit(context.Background(), form())

			So(errors.Is(err, contact.ErrMalformedResponse), ShouldBeTrue)
		})
	})

	Convey("Given an unreachable relay", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewRelay(url, "k", "f", time.Second).Submit(context.Background(), form())

		Convey("Then a transport error is returned", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, contact.ErrMalformedResponse), ShouldBeFalse)
		})
	})
}

func TestContributionsDays(t *testing.T) {
	Convey("Given a contributions endpoint", t, func() {
		var path, year string
		var status = http.StatusOK
		var body = `{"total":{"lastYear":5},"contributions":[
			{"date":"2025-01-01","count":2,"level":1},
			{"date":"2025-01-02","count":3,"level":2}]}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			year = r.URL.Query().Get("y")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
		defer srv.Close()

		client := NewContributions(srv.URL, time.Second)

		Convey("When the calendar is returned", func() {
			days, err := client.Days(context.Background(), "octocat")

			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/v4/octocat")
			So(year, ShouldEqual, "last")
			So(days, ShouldHaveLength, 2)
			So(days[1].Date, ShouldEqual, "2025-01-02")
			So(days[1].Count, ShouldEqual, 3)
			So(days[1].Level, ShouldEqual, 2)
		})

		Convey("When the array is missing", func() {
			body = `{"error":"user not found"}`
			days, err := client.Days(context.Background(), "octocat")

			So(err, ShouldBeNil)
			So(days, ShouldBeNil)
		})

		Convey("When the upstream fails", func() {
			status = http.StatusInternalServerError
			_, err := client.Days(context.Background(), "octocat")

			So(errors.Is(err, ErrStatus), ShouldBeTrue)
		})

		Convey("When the body is garbage", func() {
			body = `nope`
			_, err := client.Days(context.Background(), "octocat")

			So(errors.Is(err, ErrDecode), ShouldBeTrue)
		})
	})
}

func TestGitHub(t *testing.T) {
	Convey("Given a GitHub REST server", t, func() {
		var auth string
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `{"login":"octocat","name":"The Octocat","avatar_url":"https://a/b.png","public_repos":3,"followers":10}`)
		})
		mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page < 2 {
				w.Header().Set("Link", fmt.Sprintf(`<http://%s/users/octocat/repos?page=2>; rel="next"`, r.Host))
				_, _ = io.WriteString(w, `[{"name":"a","stargazers_count":4,"language":"Go"},{"name":"b","stargazers_count":1,"fork":true}]`)
				return
			}
			_, _ = io.WriteString(w, `[{"name":"c","stargazers_count":5}]`)
		})
		mux.HandleFunc("/users/ghost", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)
		})
		mux.HandleFunc("/users/limited", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"message":"API rate limit exceeded"}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gh, err := NewGitHub(WithBaseURL(srv.URL), WithToken("t0ken"), WithTimeout(time.Second))
		So(err, ShouldBeNil)

		Convey("When reading a profile", func() {
			p, err := gh.Profile(context.Background(), "octocat")

			So(err, ShouldBeNil)
			So(p.Login, ShouldEqual, "octocat")
			So(p.Name, ShouldEqual, "The Octocat")
			So(p.PublicRepos, ShouldEqual, 3)
			So(p.Followers, ShouldEqual, 10)
			So(auth, ShouldEqual, "Bearer t0ken")
		})

		Convey("When listing repositories across pages", func() {
			repos, err := gh.Repositories(context.Background(), "octocat")

			So(err, ShouldBeNil)
			So(repos, ShouldHaveLength, 3)
			So(repos[0].Stars, ShouldEqual, 4)
			So(repos[0].Language, ShouldEqual, "Go")
			So(repos[1].Fork, ShouldBeTrue)
			So(repos[2].Name, ShouldEqual, "c")
		})

		Convey("When the user does not exist", func() {
			_, err := gh.Profile(context.Background(), "ghost")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When the rate limit is exhausted", func() {
			_, err := gh.Profile(context.Background(), "limited")
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
		})
	})
}
