package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

// SequenceSource hands out per-partition sequence numbers for enveloped events.
type SequenceSource interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type PublisherOptions struct {
	PublishEnveloped bool
	Producer         string
	// Correlation extracts the request correlation id, if any, from ctx.
	Correlation func(ctx context.Context) string
}

// Publisher sends order events to the events exchange. It implements
// order.EventPublisher.
type Publisher struct {
	ch                 Channel
	seq                SequenceSource
	publishEnveloped   bool
	producerIdentifier string
	correlation        func(ctx context.Context) string
}

var _ order.EventPublisher = (*Publisher)(nil)

func NewPublisher(conn *amqp.Connection, seq SequenceSource, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, seq, opts), nil
}

func newPublisher(ch Channel, seq SequenceSource, opts PublisherOptions) *Publisher {
	producer := opts.Producer
	if producer == "" {
		producer = storefrontServiceName
	}
	correlation := opts.Correlation
	if correlation == nil {
		correlation = func(context.Context) string { return "" }
	}
	return &Publisher{
		ch:                 ch,
		seq:                seq,
		publishEnveloped:   opts.PublishEnveloped,
		producerIdentifier: producer,
		correlation:        correlation,
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o order.Order) error {
	if !p.publishEnveloped {
		body, err := json.Marshal(LegacyOrderCreated{
			EventType:           orderCreatedEventName,
			OrderCreatedPayload: newOrderCreatedPayload(o),
		})
		if err != nil {
			return fmt.Errorf("marshal OrderCreated: %w", err)
		}
		return p.publishJSON(ctx, OrderCreatedRoutingKey, body)
	}

	seq, err := p.seq.NextSequence(ctx, o.OrderNumber)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildOrderCreatedEnvelope(o, seq, p.producerIdentifier, EnvelopeMetadata{CorrelationID: p.correlation(ctx)})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated envelope: %w", err)
	}
	return p.publishJSON(ctx, OrderCreatedRoutingKey, body)
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, o order.Order, from order.Status) error {
	if !p.publishEnveloped {
		body, err := json.Marshal(LegacyOrderStatusChanged{
			EventType:                 orderStatusChangedEventName,
			OrderStatusChangedPayload: newOrderStatusChangedPayload(o, from),
		})
		if err != nil {
			return fmt.Errorf("marshal OrderStatusChanged: %w", err)
		}
		return p.publishJSON(ctx, OrderStatusChangedRoutingKey, body)
	}

	seq, err := p.seq.NextSequence(ctx, o.OrderNumber)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildOrderStatusChangedEnvelope(o, from, seq, p.producerIdentifier, EnvelopeMetadata{CorrelationID: p.correlation(ctx)})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderStatusChanged envelope: %w", err)
	}
	return p.publishJSON(ctx, OrderStatusChangedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, order.Order) error { return nil }

func (NoopPublisher) PublishOrderStatusChanged(context.Context, order.Order, order.Status) error {
	return nil
}
