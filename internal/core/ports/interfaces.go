// Package ports defines the interfaces (ports) for the payment service.
// These are contracts that adapters must implement.
package ports

import (
	"context"

	"github.com/fitstack/paygate/internal/core/domain"
	"github.com/fitstack/paygate/internal/core/gateway"
)

// PaymentGateway builds signed requests and authenticates notifications for
// one provider. *gateway.Gateway is the production implementation.
type PaymentGateway interface {
	// BuildPaymentRequest signs the redirect the customer is sent to.
	BuildPaymentRequest(m domain.Merchant, o domain.Order, clientAddr string) (*gateway.PaymentRequest, error)

	// VerifyNotification authenticates an inbound notification. Errors mean the
	// outcome could not be determined; rejections are reported in the Result.
	VerifyNotification(ctx context.Context, m domain.Merchant, n gateway.Notification, order *domain.Order, ack gateway.Acknowledger) (gateway.Result, error)

	// QueryOrder asks the provider whether o was paid.
	QueryOrder(ctx context.Context, m domain.Merchant, o domain.Order) (bool, error)

	// Provider returns the provider table in use.
	Provider() gateway.Provider
}

// SettlementNotifier tells the merchant's order system about confirmed payments.
type SettlementNotifier interface {
	NotifySettlement(ctx context.Context, s domain.Settlement) error
}
