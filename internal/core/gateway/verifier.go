package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fitstack/paygate/internal/core/domain"
)

// State is the position of a notification in the verification state machine:
// Received -> FieldsChecked -> Confirmed | Rejected.
type State int

const (
	StateReceived State = iota
	StateFieldsChecked
	StateConfirmed
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateFieldsChecked:
		return "fields_checked"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// Result is the outcome of a verification. A non-nil error returned alongside
// it means the outcome could not be determined.
type Result struct {
	State  State
	Reason string // Why the notification was rejected
}

// Accepted reports whether the notification reached Confirmed.
func (r Result) Accepted() bool {
	return r.State == StateConfirmed
}

// Notification is an inbound provider notification.
type Notification struct {
	Params   *ParameterSet
	Delivery DeliveryMethod
}

// VerifyNotification authenticates n. The literal fields and the signature are
// checked first; if the provider requires it, the notify id is then confirmed
// with the provider, and only that answer decides the outcome.
//
// On acceptance order receives the notification's amount and id, and for a
// server push ack is called with the provider's acknowledgment token.
// n.Params holds exactly the notification's fields when this returns.
func (g *Gateway) VerifyNotification(ctx context.Context, m domain.Merchant, n Notification, order *domain.Order, ack Acknowledger) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{State: StateReceived}, err
	}

	f := g.provider.Fields
	set := n.Params
	logger := g.logger.With().
		Str("order_id", set.Value(f.OrderID)).
		Str("notify_id", set.Value(f.NotifyID)).
		Str("delivery", n.Delivery.String()).
		Logger()

	if reason := g.checkFields(set, m.Key, g.provider.Notify, g.notifySigner); reason != "" {
		return reject(logger, reason), nil
	}
	fee, err := strconv.ParseInt(set.Value(f.TotalFee), 10, 64)
	if err != nil || fee < 0 {
		return reject(logger, "malformed total fee"), nil
	}
	logger.Debug().Str("state", StateFieldsChecked.String()).Msg("notification fields checked")

	if g.provider.ConfirmNotify {
		reason, err := g.confirm(ctx, m, set)
		if err != nil {
			logger.Warn().Err(err).Msg("notification confirmation undetermined")
			return Result{State: StateFieldsChecked}, err
		}
		if reason != "" {
			return reject(logger, reason), nil
		}
	}

	if order != nil {
		order.Amount = domain.FromMinorUnits(fee)
		order.ID = set.Value(f.OrderID)
	}
	logger.Info().Str("state", StateConfirmed.String()).Int64("total_fee", fee).Msg("notification confirmed")

	if n.Delivery == ServerPush && ack != nil {
		if err := ack.Acknowledge(g.provider.AckToken); err != nil {
			return Result{State: StateConfirmed}, fmt.Errorf("acknowledge notification: %w", err)
		}
	}
	return Result{State: StateConfirmed}, nil
}

// confirm asks the provider whether the notify id in set is genuine. The
// notification's fields are set aside while the provider's answer occupies set,
// and are put back before returning whatever the outcome.
func (g *Gateway) confirm(ctx context.Context, m domain.Merchant, set *ParameterSet) (string, error) {
	notifyID := set.Value(g.provider.Fields.NotifyID)
	if notifyID == "" {
		return "missing notify id", nil
	}
	req, err := g.BuildConfirmRequest(m, notifyID)
	if err != nil {
		return "", err
	}

	snap := set.Snapshot()
	set.Clear()
	defer set.Restore(snap)

	body, err := g.transport.Fetch(ctx, req.URL())
	if err != nil {
		return "", fmt.Errorf("confirm notify id %s: %w", notifyID, err)
	}
	if err := ParseResponse(body, set, ChannelGet); err != nil {
		g.logger.Warn().Err(err).Str("notify_id", notifyID).Msg("malformed confirmation response")
		return "malformed confirmation response", nil
	}
	if reason := g.checkFields(set, m.Key, g.provider.Notify, g.notifySigner); reason != "" {
		return "confirmation " + reason, nil
	}
	return "", nil
}

// QueryOrder asks the provider for the status of o. It reports true only when
// the signed answer shows a completed payment for the same order id and amount.
func (g *Gateway) QueryOrder(ctx context.Context, m domain.Merchant, o domain.Order) (bool, error) {
	req, err := g.BuildQueryRequest(m, o)
	if err != nil {
		return false, err
	}

	logger := g.logger.With().Str("order_id", o.ID).Logger()
	body, err := g.transport.Fetch(ctx, req.URL())
	if err != nil {
		return false, fmt.Errorf("query order %s: %w", o.ID, err)
	}

	set := NewParameterSet()
	if err := ParseResponse(body, set, ChannelGet); err != nil {
		logger.Warn().Err(err).Msg("malformed query response")
		return false, nil
	}
	if reason := g.checkFields(set, m.Key, g.provider.Query, g.querySigner); reason != "" {
		logger.Info().Str("reason", reason).Msg("order query not paid")
		return false, nil
	}

	f := g.provider.Fields
	if set.Value(f.TotalFee) != strconv.FormatInt(o.MinorUnits(), 10) || set.Value(f.OrderID) != o.ID {
		logger.Warn().
			Str("remote_order_id", set.Value(f.OrderID)).
			Str("remote_total_fee", set.Value(f.TotalFee)).
			Msg("order query does not match local order")
		return false, nil
	}
	return true, nil
}

// checkFields returns the reason set fails the profile, or "" when it passes.
func (g *Gateway) checkFields(set *ParameterSet, key string, profile Profile, signer *Signer) string {
	for _, e := range profile.Expect {
		if got := set.Value(e.Field); got != e.Value {
			return fmt.Sprintf("%s is %q, want %q", e.Field, got, e.Value)
		}
	}
	if !signer.Verify(set, key) {
		return "signature mismatch"
	}
	return ""
}

func reject(logger zerolog.Logger, reason string) Result {
	logger.Warn().Str("state", StateRejected.String()).Str("reason", reason).Msg("notification rejected")
	return Result{State: StateRejected, Reason: reason}
}
