package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/otakumart/checkout-api/internal/domain/order"
)

func sampleOrder() *order.Order {
	return &order.Order{
		ID:     "o1",
		UserID: "u1",
		Items: []order.Item{
			{ProductID: "p1", Quantity: 2, PriceAtPurchase: decimal.RequireFromString("100.00")},
		},
		PaymentMethod:    order.MethodGateway,
		TotalAmount:      decimal.RequireFromString("200.00"),
		GatewayOrderID:   "gw_1",
		GatewayPaymentID: "pay_1",
	}
}

func TestOrderCreatedEnvelope(t *testing.T) {
	env, err := orderCreatedEnvelope(sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, TypeOrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "checkout-api", env.Producer)
	assert.Equal(t, "o1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)
	assert.WithinDuration(t, time.Now(), env.OccurredAt, time.Minute)

	var payload OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "o1", payload.OrderID)
	assert.Equal(t, "u1", payload.UserID)
	require.Len(t, payload.Lines, 1)
	assert.Equal(t, "p1", payload.Lines[0].ProductID)
	assert.True(t, payload.Lines[0].PriceAtPurchase.Equal(decimal.RequireFromString("100.00")))
}

func TestPaymentCapturedEnvelope(t *testing.T) {
	env, err := paymentCapturedEnvelope(sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, TypePaymentCaptured, env.EventType)

	var payload PaymentCapturedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "gw_1", payload.GatewayOrderID)
	assert.Equal(t, "pay_1", payload.GatewayPaymentID)
}

func TestProducerPublish_DropsWhenInboxFull(t *testing.T) {
	p := &Producer{
		lg:    zaptest.NewLogger(t),
		inbox: make(chan kafka.Message, 1),
		done:  make(chan struct{}),
	}

	o := sampleOrder()
	p.OrderCreated(context.Background(), o)
	p.OrderCreated(context.Background(), o) // inbox full, dropped

	assert.Len(t, p.inbox, 1)

	m := <-p.inbox
	assert.Equal(t, []byte("o1"), m.Key)

	var env Envelope
	require.NoError(t, json.Unmarshal(m.Value, &env))
	assert.Equal(t, TypeOrderCreated, env.EventType)
}
