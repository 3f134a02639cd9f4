package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/otakumart/checkout-api/internal/domain/order"
)

// Producer publishes envelopes to a Kafka topic through a buffered inbox so
// request handlers never block on the broker. Messages still queued at
// shutdown are flushed before the writer closes.
type Producer struct {
	w     *kafka.Writer
	lg    *zap.Logger
	inbox chan kafka.Message
	done  chan struct{}
}

// NewProducer creates a Producer for the given brokers and topic. Call
// Start before publishing and Close on shutdown.
func NewProducer(brokers []string, topic string, lg *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		lg:    lg,
		inbox: make(chan kafka.Message, 256),
		done:  make(chan struct{}),
	}
}

// Start runs the delivery loop until ctx is cancelled, then drains the
// inbox and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.lg.Warn("closing kafka writer", zap.Error(err))
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.lg.Warn("publishing event", zap.Error(err))
	}
}

// WaitClosed blocks until the delivery loop has drained and exited.
func (p *Producer) WaitClosed() {
	<-p.done
}

func (p *Producer) publish(env *Envelope, err error) {
	if err != nil {
		p.lg.Warn("encoding event", zap.Error(err))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.lg.Warn("encoding event envelope", zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
	}
	select {
	case p.inbox <- msg:
	default:
		p.lg.Warn("event inbox full, dropping",
			zap.String("event_type", env.EventType),
			zap.String("order_id", env.CorrelationID),
		)
	}
}

// OrderCreated publishes an order.created event.
func (p *Producer) OrderCreated(_ context.Context, o *order.Order) {
	p.publish(orderCreatedEnvelope(o))
}

// PaymentCaptured publishes a payment.captured event.
func (p *Producer) PaymentCaptured(_ context.Context, o *order.Order) {
	p.publish(paymentCapturedEnvelope(o))
}
