// Package service implements the core business logic.
package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fitstack/paygate/internal/core/domain"
	"github.com/fitstack/paygate/internal/core/gateway"
	"github.com/fitstack/paygate/internal/core/ports"
)

// Notification is an inbound provider notification as received over HTTP.
type Notification struct {
	Fields   url.Values
	Channel  gateway.Channel
	Delivery gateway.DeliveryMethod
}

// PaymentService orchestrates payment operations for a single merchant.
type PaymentService struct {
	merchant domain.Merchant
	gateway  ports.PaymentGateway
	notifier ports.SettlementNotifier // nil disables the settlement callback
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPaymentService creates a new payment service. notifier may be nil.
func NewPaymentService(
	merchant domain.Merchant,
	gw ports.PaymentGateway,
	notifier ports.SettlementNotifier,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		merchant: merchant,
		gateway:  gw,
		notifier: notifier,
		logger:   logger.With().Str("component", "payment_service").Logger(),
		now:      time.Now,
	}
}

// CreateCheckout signs a payment request for the order in req.
func (s *PaymentService) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.Checkout, error) {
	order := domain.Order{ID: req.OrderID, Subject: req.Subject, Amount: req.Amount}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	pr, err := s.gateway.BuildPaymentRequest(s.merchant, order, req.ClientIP)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to build payment request")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("amount", order.Amount.StringFixed(2)).
		Msg("checkout created")

	return &domain.Checkout{
		OrderID:  order.ID,
		PayURL:   pr.URL(),
		Endpoint: pr.Endpoint,
		Fields:   pr.Form(),
	}, nil
}

// HandleNotification verifies n and, once confirmed, forwards the settlement to
// the merchant core. The provider is acknowledged through ack only after the
// merchant core accepted the settlement, so a failed callback is redelivered.
//
// A rejected notification returns an error wrapping domain.ErrNotificationRejected;
// an undetermined one wraps domain.ErrProviderUnavailable.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification, ack gateway.Acknowledger) (*domain.Settlement, error) {
	provider := s.gateway.Provider()
	params := gateway.ParameterSetFrom(gateway.DecodeValues(n.Fields, provider.Notify.Signing.Encoding), n.Channel)

	// Hold the token back until the settlement is recorded.
	var token string
	gated := gateway.AcknowledgerFunc(func(body string) error {
		token = body
		return nil
	})

	var order domain.Order
	res, err := s.gateway.VerifyNotification(ctx, s.merchant, gateway.Notification{
		Params:   params,
		Delivery: n.Delivery,
	}, &order, gated)
	if err != nil {
		return nil, err
	}
	if !res.Accepted() {
		return nil, domain.NewServiceError(domain.ErrNotificationRejected, res.Reason, "NOTIFICATION_REJECTED")
	}

	settlement := &domain.Settlement{
		Provider:  provider.Name,
		NotifyID:  params.Value(provider.Fields.NotifyID),
		Order:     order,
		SettledAt: s.now(),
	}

	logger := s.logger.With().
		Str("order_id", order.ID).
		Str("notify_id", settlement.NotifyID).
		Logger()

	if s.notifier != nil {
		if err := s.notifier.NotifySettlement(ctx, *settlement); err != nil {
			logger.Error().Err(err).Msg("failed to forward settlement")
			return nil, err
		}
	}

	if token != "" && ack != nil {
		if err := ack.Acknowledge(token); err != nil {
			// The settlement is recorded; the provider will redeliver and the
			// merchant core sees the same notify id again.
			logger.Warn().Err(err).Msg("failed to acknowledge notification")
		}
	}

	logger.Info().
		Str("amount", order.Amount.StringFixed(2)).
		Str("delivery", n.Delivery.String()).
		Msg("payment settled")
	return settlement, nil
}

// QueryOrder asks the provider whether orderID was paid in full.
func (s *PaymentService) QueryOrder(ctx context.Context, orderID string, amount decimal.Decimal) (bool, error) {
	order := domain.Order{ID: orderID, Amount: amount}
	if err := order.Validate(); err != nil {
		return false, err
	}

	paid, err := s.gateway.QueryOrder(ctx, s.merchant, order)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			s.logger.Warn().Err(err).Str("order_id", orderID).Msg("order status undetermined")
		}
		return false, err
	}
	return paid, nil
}
