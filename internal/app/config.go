package service

import (
	"fmt"

	"github.com/okian/folio/internal/adapters/upstream"
	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/internal/content"
)

// OptionsFromConfig builds the upstream clients and content named by cfg
// and returns the options that wire them into a Service.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	gh, err := upstream.NewGitHub(
		upstream.WithToken(cfg.GitHubToken),
		upstream.WithBaseURL(cfg.GitHubAPIURL),
		upstream.WithTimeout(cfg.FetchTimeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("github client: %w", err)
	}
	portfolio, err := content.Load(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("portfolio content: %w", err)
	}

	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithMaxSessions(cfg.MaxSessions),
		WithSessionIdle(cfg.SessionIdle()),
		WithSuccessReset(cfg.SuccessReset()),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithStatsTTL(cfg.StatsTTL()),
		WithStatsRefresh(cfg.StatsRefresh()),
		WithGitHubUsername(cfg.GitHubUsername),
		WithRelay(upstream.NewRelay(cfg.RelayURL, cfg.RelayAccessKey, cfg.RelayFromName, cfg.FetchTimeout())),
		WithContributionSource(upstream.NewContributions(cfg.ContributionsAPIURL, cfg.FetchTimeout())),
		WithGitHubSource(gh),
		WithPortfolio(portfolio),
	}, nil
}
