package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/pkg/logger"
)

// ErrFailed is returned when a probe step fails verification.
var ErrFailed = errors.New("probe failed")

// Run executes every probe step against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	log := logger.Get().Named("probe")

	log.Info(ctx, "starting folio probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	if err := CheckHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := CheckPortfolio(ctx, client); err != nil {
		return stats, fmt.Errorf("portfolio check failed: %w", err)
	}
	complete, err := CheckDashboard(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("dashboard check failed: %w", err)
	}
	stats.DashboardComplete = complete

	if cfg.Sessions > 0 {
		if err := SubmitForms(ctx, client, cfg, stats); err != nil {
			return stats, fmt.Errorf("contact check failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// CheckHealth verifies the service is running.
func CheckHealth(ctx context.Context, c *Client) error {
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != "ok" {
		return fmt.Errorf("%w: health status %q", ErrFailed, h.Status)
	}
	logger.Get().Info(ctx, "service is healthy", logger.String("uptime", h.Uptime))
	return nil
}

// CheckPortfolio verifies the content endpoint returns a profile.
func CheckPortfolio(ctx context.Context, c *Client) error {
	p, err := c.Portfolio(ctx)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	logger.Get().Info(ctx, "portfolio served",
		logger.String("name", p.Profile.Name),
		logger.Int("projects", len(p.Projects)),
		logger.Int("experience", len(p.Experience)))
	return nil
}

// CheckDashboard fetches the dashboard and verifies its figures agree with
// the calendar it was built from. It reports whether every source answered.
func CheckDashboard(ctx context.Context, c *Client) (bool, error) {
	d, err := c.Dashboard(ctx)
	if err != nil {
		return false, err
	}
	if err := VerifyDashboard(d); err != nil {
		return false, err
	}
	if !d.Sources.Complete() {
		logger.Get().Warn(ctx, "dashboard is partial",
			logger.Bool("contributions", d.Sources.Contributions),
			logger.Bool("profile", d.Sources.Profile),
			logger.Bool("repositories", d.Sources.Repositories))
	}
	logger.Get().Info(ctx, "dashboard verified",
		logger.Int("total", d.Stats.TotalContributions),
		logger.Int("streak", d.Stats.CurrentStreak),
		logger.Int("repos", d.Stats.RepoCount),
		logger.Int("stars", d.Stats.TotalStars))
	return d.Sources.Complete(), nil
}

// SubmitForms opens cfg.Sessions contact sessions, submits each and waits
// for a terminal status. At most cfg.Workers sessions run at once.
func SubmitForms(ctx context.Context, c *Client, cfg *Config, stats *Stats) error {
	var mu sync.Mutex
	record := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		stats.SessionsOpened++
		switch outcome {
		case OutcomeSuccess:
			stats.SessionsSucceeded++
		case OutcomeRejected:
			stats.SessionsRejected++
		case OutcomeTimeout:
			stats.SessionsTimedOut++
		default:
			stats.SessionsFailed++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < cfg.Sessions; i++ {
		g.Go(func() error {
			outcome, msg, err := submitOne(gctx, c, cfg)
			if err != nil {
				return err
			}
			record(outcome)
			if cfg.Verbose {
				logger.Get().Info(gctx, "session finished",
					logger.Int("n", i), logger.String("outcome", outcome), logger.String("message", msg))
			}
			return nil
		})
	}
	return g.Wait()
}

func submitOne(ctx context.Context, c *Client, cfg *Config) (string, string, error) {
	s, err := c.Open(ctx)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = c.Close(context.WithoutCancel(ctx), s.ID) }()

	if _, err := c.Update(ctx, s.ID, cfg.Form); err != nil {
		return "", "", err
	}
	if _, err := c.Submit(ctx, s.ID); err != nil {
		if errors.Is(err, ErrBackpressure) {
			return OutcomeRejected, err.Error(), nil
		}
		return "", "", err
	}

	deadline := time.Now().Add(cfg.Wait)
	for {
		s, err = c.State(ctx, s.ID)
		if err != nil {
			return "", "", err
		}
		switch s.Status {
		case contact.StatusSuccess, contact.StatusIdle:
			// idle means the success auto-reset already fired
			return OutcomeSuccess, "", nil
		case contact.StatusError:
			return OutcomeError, s.ErrorMessage, nil
		}
		if time.Now().After(deadline) {
			return OutcomeTimeout, "", nil
		}
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(cfg.Poll):
		}
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("sessionsOpened", stats.SessionsOpened),
		logger.Int("sessionsSucceeded", stats.SessionsSucceeded),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("sessionsRejected", stats.SessionsRejected),
		logger.Int("sessionsTimedOut", stats.SessionsTimedOut),
		logger.Bool("dashboardComplete", stats.DashboardComplete),
		logger.String("duration", stats.Duration.String()))
}
