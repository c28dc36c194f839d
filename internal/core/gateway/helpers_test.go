package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/fitstack/paygate/internal/core/domain"
)

var testMerchant = domain.Merchant{
	PartnerID: "M1",
	Key:       "K",
	NotifyURL: "https://shop.example/notify",
}

func testOrder() domain.Order {
	return domain.Order{ID: "ORD1", Subject: "Widget", Amount: decimal.RequireFromString("19.99")}
}

func testProvider() Provider {
	signing := Signing{Digest: DigestMD5, Encoding: simplifiedchinese.GBK, UpperHex: true}
	expect := []Expectation{
		{Field: "trade_state", Value: "0"},
		{Field: "trade_mode", Value: "1"},
		{Field: "fee_type", Value: "1"},
	}
	return Provider{
		Name:      "tenpay",
		PayURL:    "https://gw.example/gateway/pay.htm",
		VerifyURL: "https://gw.example/gateway/verifynotifyid.xml",
		QueryURL:  "https://gw.example/gateway/normalorderquery.xml",
		Fields: FieldNames{
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
		FeeType:       "1",
		Charset:       "GBK",
		Notify:        Profile{Signing: signing, Expect: expect},
		Query:         Profile{Signing: signing, Expect: expect},
		ConfirmNotify: true,
		AckToken:      "success",
	}
}

// fakeTransport answers Fetch with a canned body and records the urls it was asked for.
type fakeTransport struct {
	body  []byte
	err   error
	calls []string
	// onFetch runs before answering; used to inspect state mid-flight.
	onFetch func()
}

func (f *fakeTransport) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.body, f.err
}

func newTestGateway(t *testing.T, transport Transport) *Gateway {
	t.Helper()
	g, err := New(testProvider(), transport, zerolog.Nop())
	require.NoError(t, err)
	return g
}

// signedSet returns a set holding fields plus a valid signature for key.
func signedSet(t *testing.T, fields map[string]string, key string, ch Channel) *ParameterSet {
	t.Helper()
	set := NewParameterSet()
	for k, v := range fields {
		set.Set(k, v, ch)
	}
	signer, err := NewSigner(testProvider().Notify.Signing, "sign")
	require.NoError(t, err)
	sign, err := signer.Sign(set, key)
	require.NoError(t, err)
	set.Set("sign", sign, ch)
	return set
}

// toXML renders set the way the provider answers confirmation and query calls.
func toXML(set *ParameterSet) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><root>`)
	for _, p := range set.Sorted() {
		fmt.Fprintf(&b, "<%s>%s</%s>", p.Name, p.Value, p.Name)
	}
	b.WriteString("</root>")
	return []byte(b.String())
}

func notificationFields() map[string]string {
	return map[string]string{
		"trade_state":  "0",
		"trade_mode":   "1",
		"fee_type":     "1",
		"total_fee":    "2500",
		"out_trade_no": "ORD-NOTIFIED",
		"notify_id":    "N123",
		"partner":      "M1",
		"sign_type":    "MD5",
	}
}

func queryValues(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query()
}
