// Package bus defines the event bus contract shared by the AMQP and Kafka transports:
// the JSON envelope, handler signature and error classification.
package bus

import (
	"context"
	"errors"

	"food-delivery-Orurh/internal/domain"
)

// Handler processes one delivered envelope. A nil error acknowledges it; errors wrapped
// with Permanent drop it; any other error asks for redelivery.
type Handler func(ctx context.Context, env Envelope) error

// Publisher sends events to the bus, routed by their event type.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Subscriber consumes one routing key into a named durable queue. Subscribe blocks until
// ctx is done or the transport fails.
type Subscriber interface {
	Subscribe(ctx context.Context, queue string, key domain.EventType, h Handler) error
}

// QueueName is the durable queue of a service for a routing key.
func QueueName(service string, key domain.EventType) string {
	return service + "." + string(key)
}

// Outcome is what a transport does with a handled message.
type Outcome int

// List of outcomes
const (
	Ack Outcome = iota
	Requeue
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Classify maps a handler error to an outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Ack
	case IsPermanent(err):
		return Drop
	default:
		return Requeue
	}
}

// PermanentError marks an error that redelivery cannot fix.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent returns a permanent error.
func Permanent(err error) error {
	return PermanentError{Err: err}
}

// IsPermanent reports whether err is marked permanent.
func IsPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe)
}
