package gateway

import (
	"fmt"
	"net/url"

	"github.com/fitstack/paygate/internal/core/domain"
)

// FieldNames maps protocol roles to the provider's wire field names.
type FieldNames struct {
	Subject   string
	FeeType   string
	NotifyURL string
	ReturnURL string
	OrderID   string
	Partner   string
	ClientIP  string
	TotalFee  string
	Charset   string
	Sign      string
	NotifyID  string
}

// Expectation is a literal a field must carry for a notification to count as paid.
type Expectation struct {
	Field string
	Value string
}

// Profile is the signing and field-check policy of one endpoint family.
type Profile struct {
	Signing Signing
	Expect  []Expectation
}

// Provider describes a query-string payment provider.
type Provider struct {
	Name string

	PayURL    string
	VerifyURL string
	QueryURL  string

	Fields  FieldNames
	FeeType string // Value sent in Fields.FeeType
	Charset string // Value sent in Fields.Charset

	// Notify covers payment requests, notifications and notify-id confirmations.
	Notify Profile
	// Query covers order-status requests and their responses.
	Query Profile

	// ConfirmNotify requires an authoritative notify-id confirmation call
	// before a notification is accepted.
	ConfirmNotify bool

	// AckToken is the literal body a server-pushed notification is answered with.
	AckToken string
}

// Validate checks the provider table once, at construction time.
func (p Provider) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProvider)
	}
	endpoints := map[string]string{"pay": p.PayURL, "query": p.QueryURL}
	if p.ConfirmNotify {
		endpoints["verify"] = p.VerifyURL
	}
	for name, raw := range endpoints {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%w: %s endpoint %q is not an absolute url", domain.ErrInvalidProvider, name, raw)
		}
	}

	f := p.Fields
	for role, name := range map[string]string{
		"order id":  f.OrderID,
		"partner":   f.Partner,
		"total fee": f.TotalFee,
		"sign":      f.Sign,
	} {
		if name == "" {
			return fmt.Errorf("%w: %s field name is required", domain.ErrInvalidProvider, role)
		}
	}
	if p.ConfirmNotify && f.NotifyID == "" {
		return fmt.Errorf("%w: notify id field name is required for confirmation", domain.ErrInvalidProvider)
	}
	if p.AckToken == "" {
		return fmt.Errorf("%w: acknowledgment token is required", domain.ErrInvalidProvider)
	}
	return nil
}
