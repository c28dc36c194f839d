package tenpay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fitstack/paygate/internal/core/domain"
)

// Client implements gateway.Transport over HTTPS. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// NewClient creates a Tenpay transport. Every call is bounded by timeout in
// addition to the caller's context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "text/xml, application/xml"),
	}
}

// Fetch GETs rawURL (already carrying its signed query string) and returns the body.
// Transport failures and non-2xx answers wrap domain.ErrProviderUnavailable.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: tenpay returned status %d", domain.ErrProviderUnavailable, resp.StatusCode())
	}
	return resp.Body(), nil
}
