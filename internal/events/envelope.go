package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventEnvelope is the common envelope for all published events.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

// EnvelopeMetadata carries correlation/causation context for emitted events.
type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

// Validate ensures the envelope contains the expected event identity.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}

// ParseEnvelope decodes an enveloped message and checks its identity.
func ParseEnvelope[T any](body []byte, expectedName string, expectedVersion int) (EventEnvelope[T], error) {
	var env EventEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, env.Validate(expectedName, expectedVersion)
}
