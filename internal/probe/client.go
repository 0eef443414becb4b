package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/okian/folio/internal/content"
	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrStatus is returned for any unexpected HTTP status.
var ErrStatus = errors.New("unexpected status")

// ErrBackpressure marks a submit refused because the delivery queue is full.
var ErrBackpressure = errors.New("service busy")

// APIError is the service's JSON error body.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Client talks to the folio HTTP API.
type Client struct {
	rest *resty.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "folio-probe/1.0").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &Client{rest: rest}
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) (types.Health, error) {
	var out types.Health
	return out, c.do(ctx, http.MethodGet, "/healthz", nil, &out, http.StatusOK)
}

// Portfolio calls GET /api/portfolio.
func (c *Client) Portfolio(ctx context.Context) (content.Portfolio, error) {
	var out content.Portfolio
	return out, c.do(ctx, http.MethodGet, "/api/portfolio", nil, &out, http.StatusOK)
}

// Dashboard calls GET /api/github.
func (c *Client) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var out model.Dashboard
	return out, c.do(ctx, http.MethodGet, "/api/github", nil, &out, http.StatusOK)
}

// Open calls POST /api/contact.
func (c *Client) Open(ctx context.Context) (types.ContactSession, error) {
	var out types.ContactSession
	return out, c.do(ctx, http.MethodPost, "/api/contact", nil, &out, http.StatusCreated)
}

// State calls GET /api/contact/{id}.
func (c *Client) State(ctx context.Context, id string) (types.ContactSession, error) {
	var out types.ContactSession
	return out, c.do(ctx, http.MethodGet, "/api/contact/"+id, nil, &out, http.StatusOK)
}

// Update calls PUT /api/contact/{id}.
func (c *Client) Update(ctx context.Context, id string, f contact.Form) (types.ContactSession, error) {
	var out types.ContactSession
	return out, c.do(ctx, http.MethodPut, "/api/contact/"+id, f, &out, http.StatusOK)
}

// Submit calls POST /api/contact/{id}/submit.
func (c *Client) Submit(ctx context.Context, id string) (types.ContactSession, error) {
	var out types.ContactSession
	return out, c.do(ctx, http.MethodPost, "/api/contact/"+id+"/submit", nil, &out, http.StatusAccepted)
}

// Close calls DELETE /api/contact/{id}.
func (c *Client) Close(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/contact/"+id, nil, nil, http.StatusNoContent)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, want int) error {
	var apiErr APIError
	req := c.rest.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() == want {
		return nil
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrBackpressure, apiErr.Message)
	}
	return fmt.Errorf("%s %s: %w %d: %s", method, path, ErrStatus, resp.StatusCode(), apiErr.Message)
}
