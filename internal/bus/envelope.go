package bus

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"food-delivery-Orurh/internal/domain"
)

// Envelope is the wire format of every event.
type Envelope struct {
	ID         uuid.UUID        `json:"id"`
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    json.RawMessage  `json:"payload"`
}

// NewEnvelope wraps ev with a fresh id.
func NewEnvelope(ev domain.Event, at time.Time) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return Envelope{
		ID:         uuid.New(),
		Type:       ev.EventType(),
		OccurredAt: at.UTC(),
		Payload:    payload,
	}, nil
}

// Encode serializes the envelope.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses and validates an envelope. Malformed input is a permanent error.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, Permanent(fmt.Errorf("bad envelope json: %w", err))
	}
	if env.ID == uuid.Nil {
		return Envelope{}, Permanent(fmt.Errorf("envelope without id"))
	}
	if strings.TrimSpace(string(env.Type)) == "" {
		return Envelope{}, Permanent(fmt.Errorf("envelope %s without type", env.ID))
	}
	return env, nil
}

// Event decodes the payload into the typed event matching the envelope type.
func (e Envelope) Event() (domain.Event, error) {
	switch e.Type {
	case domain.EventOrderCreated:
		return payload[domain.OrderCreated](e)
	case domain.EventOrderReadyForDelivery:
		return payload[domain.OrderReadyForDelivery](e)
	case domain.EventPaymentConfirmed:
		return payload[domain.PaymentConfirmed](e)
	case domain.EventOrderCancelled:
		return payload[domain.OrderCancelled](e)
	case domain.EventDeliveryAssigned:
		return payload[domain.DeliveryAssigned](e)
	case domain.EventDeliveryStatusChanged:
		return payload[domain.DeliveryStatusChanged](e)
	case domain.EventDeliveryCompleted:
		return payload[domain.DeliveryCompleted](e)
	}
	return nil, Permanent(fmt.Errorf("unknown event type %q", e.Type))
}

func payload[T domain.Event](e Envelope) (domain.Event, error) {
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return nil, Permanent(fmt.Errorf("bad %s payload: %w", e.Type, err))
	}
	if strings.TrimSpace(v.AggregateID()) == "" {
		return nil, Permanent(fmt.Errorf("%s %s without order_id", e.Type, e.ID))
	}
	return v, nil
}
