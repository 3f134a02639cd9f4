// Package gateway is the HTTP client for the external payment processor's
// order API. It implements payment.Gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/otakumart/checkout-api/internal/domain/payment"
)

var _ payment.Gateway = (*Client)(nil)

// Config holds the processor credentials and endpoint.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Configured reports whether credentials are present. Wiring checks this
// before constructing a Client so that a missing deployment surfaces as the
// distinct misconfiguration error, not a request-time failure.
func (c Config) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// Client talks to the processor's REST API with basic auth.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// New creates a Client from config.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      hc,
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type apiErrorResponse struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder mints a processor-side order for the given amount in minor
// units, with auto-capture enabled and the local order id as the receipt
// tag. Processor failures come back as *payment.UpstreamError carrying the
// processor's own message, never internal detail.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &payment.UpstreamError{Message: "gateway unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiErrorResponse
		msg := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Description != "" {
			msg = apiErr.Error.Description
		}
		return "", &payment.UpstreamError{Message: msg}
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if out.ID == "" {
		return "", &payment.UpstreamError{Message: "gateway returned no order id"}
	}
	return out.ID, nil
}
