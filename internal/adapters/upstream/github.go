package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/okian/folio/internal/domain/model"
	"golang.org/x/oauth2"
)

const reposPerPage = 100

// GitHub reads public profile and repository data.
type GitHub struct {
	client *github.Client
}

// GitHubOption configures NewGitHub.
type GitHubOption func(*githubOptions)

type githubOptions struct {
	token   string
	baseURL string
	timeout time.Duration
}

// WithToken attaches a personal access token; without one the
// unauthenticated rate limit applies.
func WithToken(token string) GitHubOption {
	return func(o *githubOptions) { o.token = token }
}

// WithBaseURL points the client at another REST root, e.g. a test server.
func WithBaseURL(u string) GitHubOption {
	return func(o *githubOptions) { o.baseURL = u }
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) GitHubOption {
	return func(o *githubOptions) { o.timeout = d }
}

// NewGitHub builds a REST client.
func NewGitHub(opts ...GitHubOption) (*GitHub, error) {
	var o githubOptions
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{Timeout: o.timeout}
	if o.token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token})
		hc = oauth2.NewClient(context.Background(), ts)
		hc.Timeout = o.timeout
	}

	client := github.NewClient(hc)
	client.UserAgent = UserAgent
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}
	return &GitHub{client: client}, nil
}

// Profile returns the public profile of user.
func (g *GitHub) Profile(ctx context.Context, user string) (model.Profile, error) {
	const op = "upstream.github.profile"

	u, _, err := g.client.Users.Get(ctx, user)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%s: %w", op, classify(err))
	}
	return model.Profile{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		AvatarURL:   u.GetAvatarURL(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
	}, nil
}

// Repositories lists every public repository owned by user, following
// pagination to the end.
func (g *GitHub) Repositories(ctx context.Context, user string) ([]model.Repository, error) {
	const op = "upstream.github.repositories"

	opt := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: reposPerPage},
	}
	var all []model.Repository
	for {
		repos, resp, err := g.client.Repositories.ListByUser(ctx, user, opt)
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", op, opt.Page, classify(err))
		}
		for _, r := range repos {
			all = append(all, model.Repository{
				Name:     r.GetName(),
				Stars:    r.GetStargazersCount(),
				Language: r.GetLanguage(),
				Fork:     r.GetFork(),
			})
		}
		if resp.NextPage == 0 {
			return all, nil
		}
		opt.Page = resp.NextPage
	}
}

func classify(err error) error {
	var rate *github.RateLimitError
	if errors.As(err, &rate) {
		return fmt.Errorf("%w: resets %s", ErrRateLimited, rate.Rate.Reset.Format(time.RFC3339))
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	var resp *github.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil && resp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
