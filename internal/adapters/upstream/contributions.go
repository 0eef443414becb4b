package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/okian/folio/internal/domain/model"
)

// DefaultContributionsURL serves public contribution calendars.
const DefaultContributionsURL = "https://github-contributions-api.jogruber.de"

type contributionsResponse struct {
	Contributions []model.ContributionDay `json:"contributions"`
}

// Contributions reads the trailing-year contribution calendar of a user.
type Contributions struct {
	http *resty.Client
}

// NewContributions builds a client rooted at baseURL.
func NewContributions(baseURL string, timeout time.Duration) *Contributions {
	if baseURL == "" {
		baseURL = DefaultContributionsURL
	}
	return &Contributions{http: newRestClient(baseURL, timeout)}
}

// Days returns the calendar in ascending date order. A response without a
// contributions array yields nil and no error.
func (c *Contributions) Days(ctx context.Context, user string) ([]model.ContributionDay, error) {
	const op = "upstream.contributions.days"

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("user", user).
		SetQueryParam("y", "last").
		Get("/v4/{user}")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrStatus, resp.StatusCode())
	}

	var out contributionsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}
	return out.Contributions, nil
}
