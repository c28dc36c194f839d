// Package merchantcore provides the HTTP client that tells the merchant's
// order system about confirmed payments.
package merchantcore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fitstack/paygate/internal/core/domain"
)

// settlementEvent is the payload posted to the merchant core.
type settlementEvent struct {
	Event     string `json:"event"`
	OrderID   string `json:"order_id"`
	Amount    string `json:"amount"`
	Provider  string `json:"provider"`
	NotifyID  string `json:"notify_id"`
	SettledAt string `json:"settled_at"`
}

// Client implements ports.SettlementNotifier.
type Client struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

// NewClient creates a merchant core client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    resty.New().SetTimeout(timeout),
	}
}

// NotifySettlement posts a confirmed payment to the merchant core.
// POST /api/v1/payments/settlements/
func (c *Client) NotifySettlement(ctx context.Context, s domain.Settlement) error {
	url := fmt.Sprintf("%s/api/v1/payments/settlements/", c.baseURL)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Internal-API-Key", c.apiKey).
		SetBody(settlementEvent{
			Event:     "payment.settled",
			OrderID:   s.Order.ID,
			Amount:    s.Order.Amount.StringFixed(2),
			Provider:  s.Provider,
			NotifyID:  s.NotifyID,
			SettledAt: s.SettledAt.UTC().Format(time.RFC3339),
		}).
		Post(url)
	if err != nil {
		return domain.NewServiceError(domain.ErrSettlementFailed,
			"request failed: "+err.Error(), "HTTP_ERROR")
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return domain.NewServiceError(domain.ErrSettlementFailed,
			fmt.Sprintf("merchant core returned status %d: %s", resp.StatusCode(), resp.String()),
			"CORE_ERROR")
	}

	return nil
}
