package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fitstack/paygate/internal/core/domain"
)

// Transport performs the blocking GET calls the protocol needs (notify-id
// confirmation, order query). Implementations must be safe for concurrent use.
type Transport interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Acknowledger writes the acknowledgment body a provider expects after a
// server-pushed notification was accepted.
type Acknowledger interface {
	Acknowledge(body string) error
}

// AcknowledgerFunc adapts a function to Acknowledger.
type AcknowledgerFunc func(body string) error

func (f AcknowledgerFunc) Acknowledge(body string) error { return f(body) }

// DeliveryMethod tells how a notification reached us.
type DeliveryMethod int

const (
	// BrowserRedirect is the customer's browser returning from the pay page.
	BrowserRedirect DeliveryMethod = iota
	// ServerPush is the provider calling the notify url directly; it keeps
	// redelivering until acknowledged.
	ServerPush
)

func (d DeliveryMethod) String() string {
	if d == ServerPush {
		return "server_push"
	}
	return "browser_redirect"
}

// DetectDelivery classifies an inbound notification request. Provider servers
// POST, or GET without a User-Agent; browsers always send one.
func DetectDelivery(method, userAgent string) DeliveryMethod {
	if method == http.MethodPost {
		return ServerPush
	}
	if method == http.MethodGet && userAgent == "" {
		return ServerPush
	}
	return BrowserRedirect
}

// Gateway builds signed requests and verifies notifications for one provider.
// It holds no per-operation state and can be shared between goroutines.
type Gateway struct {
	provider     Provider
	notifySigner *Signer
	querySigner  *Signer
	transport    Transport
	logger       zerolog.Logger
}

// New validates the provider table and creates a gateway.
func New(provider Provider, transport Transport, logger zerolog.Logger) (*Gateway, error) {
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", domain.ErrInvalidProvider)
	}
	notifySigner, err := NewSigner(provider.Notify.Signing, provider.Fields.Sign)
	if err != nil {
		return nil, err
	}
	querySigner, err := NewSigner(provider.Query.Signing, provider.Fields.Sign)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		provider:     provider,
		notifySigner: notifySigner,
		querySigner:  querySigner,
		transport:    transport,
		logger:       logger.With().Str("provider", provider.Name).Logger(),
	}, nil
}

// Provider returns the provider table the gateway was built with.
func (g *Gateway) Provider() Provider {
	return g.provider
}
