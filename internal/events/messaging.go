package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange               = "ecommerce.events"
	OrderCreatedRoutingKey       = "order.created.v1"
	OrderStatusChangedRoutingKey = "order.status_changed.v1"
	storefrontServiceName        = "storefront-go"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to the broker at url.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// DeclareQueue declares a durable queue named after the consuming service and
// binds it to routingKey on the events exchange.
func DeclareQueue(ch *amqp.Channel, serviceName, routingKey string) (string, error) {
	if err := declareEventsExchange(ch); err != nil {
		return "", fmt.Errorf("declare events exchange: %w", err)
	}
	name := serviceQueue(serviceName, routingKey)
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare %s: %w", name, err)
	}
	if err := ch.QueueBind(q.Name, routingKey, EventsExchange, false, nil); err != nil {
		return "", fmt.Errorf("bind %s: %w", name, err)
	}
	return q.Name, nil
}
