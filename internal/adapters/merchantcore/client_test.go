package merchantcore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/paygate/internal/core/domain"
)

func testSettlement() domain.Settlement {
	return domain.Settlement{
		Provider: "tenpay",
		NotifyID: "N123",
		Order: domain.Order{
			ID:     "ORD1",
			Amount: decimal.RequireFromString("25"),
		},
		SettledAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifySettlement(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotBody map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Internal-API-Key")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", 5*time.Second)
	require.NoError(t, c.NotifySettlement(context.Background(), testSettlement()))

	assert.Equal(t, "/api/v1/payments/settlements/", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, map[string]string{
		"event":      "payment.settled",
		"order_id":   "ORD1",
		"amount":     "25.00",
		"provider":   "tenpay",
		"notify_id":  "N123",
		"settled_at": "2026-03-01T12:00:00Z",
	}, gotBody)
}

func TestNotifySettlement_Failures(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "order not found", http.StatusNotFound)
		}))
		defer srv.Close()

		err := NewClient(srv.URL, "secret", 5*time.Second).NotifySettlement(context.Background(), testSettlement())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrSettlementFailed))

		var se *domain.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "CORE_ERROR", se.Code)
		assert.Contains(t, se.Message, "order not found")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := srv.URL
		srv.Close()

		err := NewClient(addr, "secret", time.Second).NotifySettlement(context.Background(), testSettlement())
		assert.True(t, errors.Is(err, domain.ErrSettlementFailed))

		var se *domain.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "HTTP_ERROR", se.Code)
	})
}
