package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/okian/folio/internal/app"
	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	m.Run()
}

// upstreams answers every outbound call the service makes.
func upstreams() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"contributions":[{"date":"2025-01-01","count":3,"level":2}]}`)
	})
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"login":"octocat","public_repos":2}`)
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"a","stargazers_count":5}]`)
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	})
	return httptest.NewServer(mux)
}

func TestConfigToService(t *testing.T) {
	up := upstreams()
	defer up.Close()

	t.Setenv("FOLIO_ADDR", ":0")
	t.Setenv("FOLIO_GITHUB_USERNAME", "octocat")
	t.Setenv("FOLIO_GITHUB_API_URL", up.URL)
	t.Setenv("FOLIO_CONTRIBUTIONS_API_URL", up.URL)
	t.Setenv("FOLIO_RELAY_URL", up.URL+"/submit")
	t.Setenv("FOLIO_STATS_REFRESH_MS", "0")
	t.Setenv("FOLIO_WORKER_COUNT", "2")

	convey.Convey("Given configuration from the environment", t, func() {
		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)

		opts, err := app.OptionsFromConfig(cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := app.New(opts...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := newMux(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("When the wired mux is queried", func() {
			convey.Convey("Then every surface answers", func() {
				for _, p := range []string{"/", "/healthz", "/metrics", "/stats", "/api/portfolio", "/api-docs", "/openapi.yaml", "/openapi.json"} {
					convey.So(get(p).Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then the dashboard is built from the upstreams", func() {
				w := get("/api/github")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"total_contributions":3`)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"total_stars":5`)
			})

			convey.Convey("Then a contact form is delivered through the relay", func() {
				open := httptest.NewRecorder()
				mux.ServeHTTP(open, httptest.NewRequest(http.MethodPost, "/api/contact", nil))
				convey.So(open.Code, convey.ShouldEqual, http.StatusCreated)
				loc := open.Header().Get("Location")

				put := httptest.NewRecorder()
				mux.ServeHTTP(put, httptest.NewRequest(http.MethodPut, loc,
					strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hi"}`)))
				convey.So(put.Code, convey.ShouldEqual, http.StatusOK)

				sub := httptest.NewRecorder()
				mux.ServeHTTP(sub, httptest.NewRequest(http.MethodPost, loc+"/submit", nil))
				convey.So(sub.Code, convey.ShouldEqual, http.StatusAccepted)

				deadline := time.Now().Add(2 * time.Second)
				body := ""
				for time.Now().Before(deadline) {
					body = get(loc).Body.String()
					if strings.Contains(body, `"status":"success"`) {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(body, convey.ShouldContainSubstring, `"status":"success"`)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := app.New()

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loops return when ctx ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			startSystemMetricsUpdater(ctx)
			startServiceMetricsUpdater(ctx, svc)
			convey.So(ctx.Err(), convey.ShouldNotBeNil)
		})
	})
}
