package gateway

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/fitstack/paygate/internal/core/domain"
)

// PaymentRequest is a signed request ready to be transmitted.
type PaymentRequest struct {
	Endpoint string
	Params   []Parameter // Ordered by name
	encoding encoding.Encoding
}

// Query returns the percent-encoded query string. Values are converted to the
// provider's text encoding before escaping so they match what was signed.
func (r *PaymentRequest) Query() string {
	var b strings.Builder
	for _, p := range r.Params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(r.encode(p.Value)))
	}
	return b.String()
}

// URL returns the endpoint with the signed query string appended.
func (r *PaymentRequest) URL() string {
	return r.Endpoint + "?" + r.Query()
}

// Form returns the fields for a POST form submitted to Endpoint.
func (r *PaymentRequest) Form() map[string]string {
	form := make(map[string]string, len(r.Params))
	for _, p := range r.Params {
		form[p.Name] = p.Value
	}
	return form
}

func (r *PaymentRequest) encode(v string) string {
	if r.encoding == nil {
		return v
	}
	out, err := r.encoding.NewEncoder().String(v)
	if err != nil {
		return v
	}
	return out
}

// BuildPaymentRequest assembles the signed "initiate payment" request.
func (g *Gateway) BuildPaymentRequest(m domain.Merchant, o domain.Order, clientAddr string) (*PaymentRequest, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	f := g.provider.Fields
	returnURL := m.ReturnURL
	if returnURL == "" {
		returnURL = m.NotifyURL
	}

	set := NewParameterSet()
	put := func(name, value string) {
		// Providers without a given field leave its name empty.
		if name != "" {
			set.Set(name, value, ChannelGet)
		}
	}
	put(f.Subject, o.Subject)
	put(f.FeeType, g.provider.FeeType)
	put(f.NotifyURL, m.NotifyURL)
	put(f.OrderID, o.ID)
	put(f.Partner, m.PartnerID)
	put(f.ReturnURL, returnURL)
	put(f.ClientIP, clientAddr)
	put(f.TotalFee, strconv.FormatInt(o.MinorUnits(), 10))
	put(f.Charset, g.provider.Charset)

	// The signature must be the last field set so it covers all of the above.
	return g.sign(set, m.Key, g.provider.PayURL, g.notifySigner, g.provider.Notify.Signing)
}

// BuildQueryRequest assembles the signed order-status request.
func (g *Gateway) BuildQueryRequest(m domain.Merchant, o domain.Order) (*PaymentRequest, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if o.ID == "" {
		return nil, domain.NewServiceError(domain.ErrInvalidOrder, "order_id is required", "VALIDATION_ERROR")
	}

	set := NewParameterSet()
	set.Set(g.provider.Fields.OrderID, o.ID, ChannelGet)
	set.Set(g.provider.Fields.Partner, m.PartnerID, ChannelGet)
	return g.sign(set, m.Key, g.provider.QueryURL, g.querySigner, g.provider.Query.Signing)
}

// BuildConfirmRequest assembles the signed notify-id confirmation request.
func (g *Gateway) BuildConfirmRequest(m domain.Merchant, notifyID string) (*PaymentRequest, error) {
	set := NewParameterSet()
	set.Set(g.provider.Fields.NotifyID, notifyID, ChannelGet)
	set.Set(g.provider.Fields.Partner, m.PartnerID, ChannelGet)
	return g.sign(set, m.Key, g.provider.VerifyURL, g.notifySigner, g.provider.Notify.Signing)
}

func (g *Gateway) sign(set *ParameterSet, key, endpoint string, signer *Signer, signing Signing) (*PaymentRequest, error) {
	signature, err := signer.Sign(set, key)
	if err != nil {
		return nil, domain.NewServiceError(domain.ErrInvalidOrder,
			fmt.Sprintf("cannot sign %s request", g.provider.Name), "SIGN_ERROR")
	}
	set.Set(g.provider.Fields.Sign, signature, ChannelGet)

	return &PaymentRequest{
		Endpoint: endpoint,
		Params:   set.Sorted(),
		encoding: signing.Encoding,
	}, nil
}
