// Package payment implements the two-party payment handshake: minting a
// processor-side order for a local order and verifying the processor's
// signed callback. The verification here is the single authority for
// flipping an order to paid; no other code path may do it.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// Sentinel errors for the payment flow.
var (
	// ErrNotConfigured means the gateway credentials were never deployed.
	// Kept distinct from upstream failures so operators can tell "not
	// configured" from "gateway is down".
	ErrNotConfigured = errors.New("payment gateway is not configured")

	// ErrNotOwner means the requester is not the order's owning user.
	ErrNotOwner = errors.New("order belongs to another user")

	// ErrBadSignature means the callback signature did not verify. Hard
	// rejection: nothing is written.
	ErrBadSignature = errors.New("payment signature verification failed")
)

// UpstreamError wraps a failure reported by the payment processor itself.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "payment gateway: " + e.Message
}

// Gateway is the processor's order-creation API. Amounts are in currency
// minor units.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (gatewayOrderID string, err error)
}

// Sign computes the callback signature the processor sends: hex-encoded
// HMAC-SHA256 over "gatewayOrderID|gatewayPaymentID" with the shared
// secret.
func Sign(secret []byte, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature recomputes the expected signature and compares in
// constant time to avoid timing side channels.
func verifySignature(secret []byte, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
