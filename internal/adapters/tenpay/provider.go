// Package tenpay describes the Tenpay gateway to the protocol core and provides
// the HTTP transport used for its confirmation and query calls.
package tenpay

import (
	"fmt"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/fitstack/paygate/internal/core/domain"
	"github.com/fitstack/paygate/internal/core/gateway"
)

const (
	Name = "tenpay"

	DefaultPayURL    = "https://gw.tenpay.com/gateway/pay.htm"
	DefaultVerifyURL = "https://gw.tenpay.com/gateway/verifynotifyid.xml"
	DefaultQueryURL  = "https://gw.tenpay.com/gateway/normalorderquery.xml"

	// DefaultCharset is both the input_charset sent with payments and the
	// encoding signatures are computed in.
	DefaultCharset = "GBK"

	// AckToken is the body Tenpay waits for before it stops redelivering.
	AckToken = "success"

	feeTypeRMB = "1"
)

// Options overrides the Tenpay defaults; empty fields keep the default.
type Options struct {
	PayURL    string
	VerifyURL string
	QueryURL  string
	Charset   string

	// SkipConfirmation disables the notify-id confirmation call. Only for sandboxes.
	SkipConfirmation bool
}

// Provider returns the Tenpay provider table.
func Provider(opts Options) (gateway.Provider, error) {
	charset := orDefault(opts.Charset, DefaultCharset)
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return gateway.Provider{}, fmt.Errorf("%w: unknown charset %q", domain.ErrInvalidProvider, charset)
	}

	signing := gateway.Signing{Digest: gateway.DigestMD5, Encoding: enc, UpperHex: true}
	// trade_state 0 = paid, trade_mode 1 = instant payment, fee_type 1 = RMB.
	paid := []gateway.Expectation{
		{Field: "trade_state", Value: "0"},
		{Field: "trade_mode", Value: "1"},
		{Field: "fee_type", Value: feeTypeRMB},
	}

	return gateway.Provider{
		Name:      Name,
		PayURL:    orDefault(opts.PayURL, DefaultPayURL),
		VerifyURL: orDefault(opts.VerifyURL, DefaultVerifyURL),
		QueryURL:  orDefault(opts.QueryURL, DefaultQueryURL),
		Fields: gateway.FieldNames{
			Subject:   "body",
			FeeType:   "fee_type",
			NotifyURL: "notify_url",
			ReturnURL: "return_url",
			OrderID:   "out_trade_no",
			Partner:   "partner",
			ClientIP:  "spbill_create_ip",
			TotalFee:  "total_fee",
			Charset:   "input_charset",
			Sign:      "sign",
			NotifyID:  "notify_id",
		},
		FeeType:       feeTypeRMB,
		Charset:       charset,
		Notify:        gateway.Profile{Signing: signing, Expect: paid},
		Query:         gateway.Profile{Signing: signing, Expect: paid},
		ConfirmNotify: !opts.SkipConfirmation,
		AckToken:      AckToken,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
