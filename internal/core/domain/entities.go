// Package domain contains the core business entities for the payment gateway service.
// This is the innermost layer - no framework dependencies.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant holds the credentials the merchant was issued by the provider.
// It is read-only for the duration of one operation.
type Merchant struct {
	PartnerID string // Account identifier, sent as a request parameter
	Key       string // Shared signing key, never transmitted
	NotifyURL string // Where the provider pushes notifications
	ReturnURL string // Where the browser is redirected after paying
}

// Validate reports a configuration problem with the merchant credentials.
func (m Merchant) Validate() error {
	switch {
	case m.PartnerID == "":
		return NewServiceError(ErrInvalidMerchant, "partner id is required", "MERCHANT_CONFIG_ERROR")
	case m.Key == "":
		return NewServiceError(ErrInvalidMerchant, "signing key is required", "MERCHANT_CONFIG_ERROR")
	case m.NotifyURL == "":
		return NewServiceError(ErrInvalidMerchant, "notify url is required", "MERCHANT_CONFIG_ERROR")
	}
	return nil
}

// Order is the merchant order being paid.
// Amount is in major units (e.g. 19.99); it travels on the wire in minor units.
type Order struct {
	ID      string          `json:"order_id"`
	Subject string          `json:"subject"`
	Amount  decimal.Decimal `json:"amount"`
}

// Validate performs basic validation on the order.
func (o Order) Validate() error {
	if o.ID == "" {
		return NewServiceError(ErrInvalidOrder, "order_id is required", "VALIDATION_ERROR")
	}
	if !o.Amount.IsPositive() {
		return NewServiceError(ErrInvalidOrder, "amount must be greater than 0", "VALIDATION_ERROR")
	}
	return nil
}

// MinorUnits returns the order amount in cents, rounded half away from zero.
func (o Order) MinorUnits() int64 {
	return o.Amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts an integer cent amount back to major units.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// CheckoutRequest represents an incoming checkout request from the merchant backend.
type CheckoutRequest struct {
	OrderID  string          `json:"order_id" binding:"required"`
	Subject  string          `json:"subject" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	ClientIP string          `json:"client_ip"`
}

// Checkout is a signed, ready-to-transmit payment request.
type Checkout struct {
	OrderID  string            `json:"order_id"`
	PayURL   string            `json:"pay_url"`  // Endpoint with the signed query string
	Endpoint string            `json:"endpoint"` // Form action for POST submission
	Fields   map[string]string `json:"fields"`   // Form fields, including the signature
}

// Settlement is an order the provider has confirmed as paid.
type Settlement struct {
	Provider  string    `json:"provider"`
	NotifyID  string    `json:"notify_id"`
	Order     Order     `json:"order"`
	SettledAt time.Time `json:"settled_at"`
}
