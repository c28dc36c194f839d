// Package domain contains the core business entities for the payment gateway service.
package domain

import "errors"

// Domain errors - represent business rule violations and infrastructure failures.
var (
	// ErrInvalidMerchant is returned when merchant credentials are incomplete.
	ErrInvalidMerchant = errors.New("invalid merchant configuration")

	// ErrInvalidProvider is returned when a provider table is incomplete or malformed.
	ErrInvalidProvider = errors.New("invalid provider configuration")

	// ErrInvalidOrder is returned for malformed orders.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrProviderUnavailable is returned when the provider could not be reached
	// or answered with a non-2xx status. The outcome is undetermined, not rejected.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrNotificationRejected is returned when a notification failed verification.
	ErrNotificationRejected = errors.New("notification rejected")

	// ErrSettlementFailed is returned when the merchant core could not be told about a settlement.
	ErrSettlementFailed = errors.New("failed to notify merchant core")
)

// ServiceError wraps errors with additional context.
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(err error, message, code string) *ServiceError {
	return &ServiceError{Err: err, Message: message, Code: code}
}
