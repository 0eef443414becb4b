// Package upstream talks to the third-party HTTP APIs the site depends on:
// the form relay, the contribution calendar and the GitHub REST API.
package upstream

import (
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

// UserAgent is sent on every outbound request.
const UserAgent = "folio/1.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newRestClient returns a resty client that encodes with jsoniter. Retries
// stay disabled: every caller makes exactly one attempt.
func newRestClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetRetryCount(0)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}
