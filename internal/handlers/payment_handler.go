// Package handlers contains the HTTP handlers for the payment service.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fitstack/paygate/internal/core/domain"
	"github.com/fitstack/paygate/internal/core/gateway"
	"github.com/fitstack/paygate/internal/core/service"
)

// PaymentService is the subset of service.PaymentService the handlers use.
type PaymentService interface {
	CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.Checkout, error)
	HandleNotification(ctx context.Context, n service.Notification, ack gateway.Acknowledger) (*domain.Settlement, error)
	QueryOrder(ctx context.Context, orderID string, amount decimal.Decimal) (bool, error)
}

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{service: svc, logger: logger}
}

// CreateCheckout handles POST /api/v1/payments/checkout
// Signs a payment request the merchant front end redirects the customer to.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
			"code":    "VALIDATION_ERROR",
		})
		return
	}
	if req.ClientIP == "" {
		req.ClientIP = c.ClientIP()
	}

	checkout, err := h.service.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"checkout": checkout,
	})
}

// QueryOrder handles GET /api/v1/payments/orders/:order_id?amount=
func (h *PaymentHandler) QueryOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "amount must be a decimal number",
			"code":    "VALIDATION_ERROR",
		})
		return
	}

	paid, err := h.service.QueryOrder(c.Request.Context(), orderID, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": orderID,
		"paid":     paid,
	})
}

// HandleNotify handles GET|POST /notify/tenpay
// Server pushes are answered with the provider's plain-text token; browser
// redirects get a JSON result for the return page.
func (h *PaymentHandler) HandleNotify(c *gin.Context) {
	delivery := gateway.DetectDelivery(c.Request.Method, c.Request.UserAgent())

	channel := gateway.ChannelGet
	if c.Request.Method == http.MethodPost {
		channel = gateway.ChannelPost
	}
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}

	ack := gateway.AcknowledgerFunc(func(body string) error {
		c.String(http.StatusOK, body)
		return nil
	})

	settlement, err := h.service.HandleNotification(c.Request.Context(), service.Notification{
		Fields:   c.Request.Form,
		Channel:  channel,
		Delivery: delivery,
	}, ack)

	if delivery == gateway.ServerPush {
		switch {
		case err == nil:
			// The service already wrote the provider's token through ack.
		case errors.Is(err, domain.ErrNotificationRejected):
			c.String(http.StatusOK, "fail")
		default:
			_ = c.Error(err)
			c.String(http.StatusServiceUnavailable, "retry")
		}
		return
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":   "paid",
			"order_id": settlement.Order.ID,
			"amount":   settlement.Order.Amount.StringFixed(2),
		})
	case errors.Is(err, domain.ErrNotificationRejected):
		c.JSON(http.StatusOK, gin.H{"status": "rejected"})
	default:
		h.writeError(c, err)
	}
}

// Health handles GET /health
func (h *PaymentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "paygate",
		"version": "1.0.0",
	})
}

// writeError maps service errors to HTTP statuses.
func (h *PaymentHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		status, code, message = http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrProviderUnavailable):
		status, code, message = http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Payment provider unavailable"
	case errors.Is(err, domain.ErrSettlementFailed):
		status, code, message = http.StatusBadGateway, "SETTLEMENT_FAILED", "Failed to record settlement"
	}

	var se *domain.ServiceError
	if errors.As(err, &se) && se.Code != "" && status == http.StatusBadRequest {
		code = se.Code
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
