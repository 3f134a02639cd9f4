package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otakumart/checkout-api/internal/domain/payment"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		BaseURL:    srv.URL,
		KeyID:      "key_id",
		KeySecret:  "key_secret",
		HTTPClient: srv.Client(),
	})
}

func TestCreateOrder_Success(t *testing.T) {
	var got createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		id, secret, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", id)
		assert.Equal(t, "key_secret", secret)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "gw_order_1"})
	}))
	defer srv.Close()

	id, err := newTestClient(srv).CreateOrder(context.Background(), 24000, "INR", "ord1")
	require.NoError(t, err)
	assert.Equal(t, "gw_order_1", id)
	assert.Equal(t, int64(24000), got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "ord1", got.Receipt)
	assert.Equal(t, 1, got.PaymentCapture)
}

func TestCreateOrder_UpstreamErrorMessagePassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"description": "amount exceeds maximum"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), 1<<40, "INR", "ord1")

	var upErr *payment.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "amount exceeds maximum", upErr.Message)
}

func TestCreateOrder_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), 100, "INR", "ord1")

	var upErr *payment.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Contains(t, upErr.Message, "502")
}

func TestCreateOrder_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), 100, "INR", "ord1")
	var upErr *payment.UpstreamError
	require.ErrorAs(t, err, &upErr)
}

func TestConfigured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{KeyID: "k"}.Configured())
	assert.True(t, Config{KeyID: "k", KeySecret: "s"}.Configured())
}
