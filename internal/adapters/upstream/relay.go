package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/okian/folio/internal/domain/contact"
)

// DefaultRelayURL is the Web3Forms submit endpoint.
const DefaultRelayURL = "https://api.web3forms.com/submit"

type relayRequest struct {
	AccessKey string `json:"access_key"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	FromName  string `json:"from_name"`
	Botcheck  bool   `json:"botcheck"`
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Relay submits contact forms to a Web3Forms-compatible endpoint.
type Relay struct {
	http      *resty.Client
	url       string
	accessKey string
	fromName  string
}

var _ contact.Relay = (*Relay)(nil)

// NewRelay builds a relay client. timeout bounds a single POST.
func NewRelay(url, accessKey, fromName string, timeout time.Duration) *Relay {
	if url == "" {
		url = DefaultRelayURL
	}
	return &Relay{
		http:      newRestClient("", timeout),
		url:       url,
		accessKey: accessKey,
		fromName:  fromName,
	}
}

// Submit posts f. The relay's verdict is taken from the body whatever the
// HTTP status: Web3Forms answers 4xx with {success:false,message}. A body
// that is not a JSON object wraps contact.ErrMalformedResponse.
func (r *Relay) Submit(ctx context.Context, f contact.Form) (contact.Result, error) {
	const op = "upstream.relay.submit"

	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(relayRequest{
			AccessKey: r.accessKey,
			Name:      f.Name,
			Email:     f.Email,
			Subject:   f.Subject,
			Message:   f.Message,
			FromName:  r.fromName,
		}).
		Post(r.url)
	if err != nil {
		return contact.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	var out relayResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return contact.Result{}, fmt.Errorf("%s: status %d: %w: %w", op, resp.StatusCode(), contact.ErrMalformedResponse, err)
	}
	return contact.Result{Success: out.Success, Message: out.Message}, nil
}
