package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

const (
	orderCreatedEventName    = "OrderCreated"
	orderCreatedEventVersion = 1
	orderCreatedSchema       = "schemas/OrderCreated.v1.payload.schema.json"

	orderStatusChangedEventName    = "OrderStatusChanged"
	orderStatusChangedEventVersion = 1
	orderStatusChangedSchema       = "schemas/OrderStatusChanged.v1.payload.schema.json"
)

type OrderLine struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreatedPayload represents the v1 payload schema.
type OrderCreatedPayload struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type OrderStatusChangedPayload struct {
	OrderID        int64        `json:"orderId"`
	OrderNumber    string       `json:"orderNumber"`
	UserID         string       `json:"userId"`
	PreviousStatus order.Status `json:"previousStatus"`
	Status         order.Status `json:"status"`
	Timestamp      time.Time    `json:"timestamp"`
}

type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

type OrderStatusChangedEnvelope = EventEnvelope[OrderStatusChangedPayload]

// LegacyOrderCreated is the flat form published when envelopes are disabled.
type LegacyOrderCreated struct {
	EventType string `json:"eventType"`
	OrderCreatedPayload
}

type LegacyOrderStatusChanged struct {
	EventType string `json:"eventType"`
	OrderStatusChangedPayload
}

func newOrderCreatedPayload(o order.Order) OrderCreatedPayload {
	items := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.Total,
		Timestamp:   o.CreatedAt,
	}
}

func newOrderStatusChangedPayload(o order.Order, from order.Status) OrderStatusChangedPayload {
	return OrderStatusChangedPayload{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		PreviousStatus: from,
		Status:         o.Status,
		Timestamp:      o.UpdatedAt,
	}
}

// BuildOrderCreatedEnvelope builds an enveloped OrderCreated event partitioned
// by order number.
func BuildOrderCreatedEnvelope(o order.Order, seq int64, producer string, meta EnvelopeMetadata) OrderCreatedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return OrderCreatedEnvelope{
		EventName:     orderCreatedEventName,
		EventVersion:  orderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  o.OrderNumber,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderCreatedSchema,
		Payload:       newOrderCreatedPayload(o),
	}
}

func BuildOrderStatusChangedEnvelope(o order.Order, from order.Status, seq int64, producer string, meta EnvelopeMetadata) OrderStatusChangedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return OrderStatusChangedEnvelope{
		EventName:     orderStatusChangedEventName,
		EventVersion:  orderStatusChangedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  o.OrderNumber,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderStatusChangedSchema,
		Payload:       newOrderStatusChangedPayload(o, from),
	}
}
