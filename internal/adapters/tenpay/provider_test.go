package tenpay

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/paygate/internal/core/domain"
	"github.com/fitstack/paygate/internal/core/gateway"
)

func TestProvider_Defaults(t *testing.T) {
	p, err := Provider(Options{})
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	assert.Equal(t, DefaultPayURL, p.PayURL)
	assert.Equal(t, DefaultVerifyURL, p.VerifyURL)
	assert.Equal(t, DefaultQueryURL, p.QueryURL)
	assert.Equal(t, "GBK", p.Charset)
	assert.Equal(t, "success", p.AckToken)
	assert.True(t, p.ConfirmNotify)
	assert.Equal(t, gateway.DigestMD5, p.Notify.Signing.Digest)
	assert.True(t, p.Notify.Signing.UpperHex)
	assert.Contains(t, p.Notify.Expect, gateway.Expectation{Field: "trade_state", Value: "0"})
}

func TestProvider_Overrides(t *testing.T) {
	p, err := Provider(Options{
		PayURL:           "https://sandbox.example/pay",
		Charset:          "utf-8",
		SkipConfirmation: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.example/pay", p.PayURL)
	assert.Equal(t, DefaultQueryURL, p.QueryURL)
	assert.Equal(t, "utf-8", p.Charset)
	assert.False(t, p.ConfirmNotify)
}

func TestProvider_UnknownCharset(t *testing.T) {
	_, err := Provider(Options{Charset: "x-klingon"})
	assert.True(t, errors.Is(err, domain.ErrInvalidProvider))
}

func TestProvider_BuildsSignedCheckout(t *testing.T) {
	p, err := Provider(Options{})
	require.NoError(t, err)
	g, err := gateway.New(p, NewClient(0), zerolog.Nop())
	require.NoError(t, err)

	req, err := g.BuildPaymentRequest(domain.Merchant{
		PartnerID: "1900000109",
		Key:       "8934e7d15453e97507ef794cf7b0519d",
		NotifyURL: "https://shop.example/notify/tenpay",
	}, domain.Order{ID: "ORD1", Subject: "Widget", Amount: decimal.RequireFromString("0.01")}, "127.0.0.1")
	require.NoError(t, err)

	form := req.Form()
	assert.Equal(t, "1", form["total_fee"])
	assert.Equal(t, "1900000109", form["partner"])
	assert.Len(t, form["sign"], 32)
}
