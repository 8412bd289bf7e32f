// Package coordinator applies order and payment events to deliveries.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/service/delivery"
)

// Service is the queue prefix of the delivery side.
const Service = "delivery"

// Processor dispatches envelopes to the orchestrator by event type.
type Processor struct {
	orchestrator Orchestrator
	logger       logx.Logger
	factory      *actionFactory
}

// NewProcessor creates a new Processor.
func NewProcessor(o Orchestrator, logger logx.Logger) *Processor {
	p := &Processor{orchestrator: o, logger: logger}
	p.factory = newActionFactory(p)
	return p
}

// Keys lists the routing keys the processor consumes.
func (p *Processor) Keys() []domain.EventType {
	return p.factory.keys()
}

// Handle decodes env and applies it. Errors that redelivery cannot fix are marked permanent.
func (p *Processor) Handle(ctx context.Context, env bus.Envelope) error {
	fn, ok := p.factory.get(env.Type)
	if !ok {
		return bus.Permanent(fmt.Errorf("unexpected event type %q", env.Type))
	}
	ev, err := env.Event()
	if err != nil {
		return err
	}

	if err := fn(ctx, ev); err != nil {
		if isFinal(err) {
			p.logger.Warn("event rejected",
				logx.String("event_id", env.ID.String()),
				logx.String("event_type", string(env.Type)),
				logx.String("order_id", ev.AggregateID()),
				logx.Err(err),
			)
			return bus.Permanent(err)
		}
		return err
	}
	return nil
}

func isFinal(err error) bool {
	return errors.Is(err, apperr.ErrInvalid) ||
		errors.Is(err, apperr.ErrInvalidState) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrUnauthorized)
}

func (p *Processor) onCreated(ctx context.Context, ev domain.Event) error {
	e := ev.(domain.OrderCreated)
	d, created, err := p.orchestrator.CreateDelivery(ctx, delivery.CreateInput{
		OrderID:            e.OrderID,
		Address:            e.DeliveryAddress,
		OrderTotal:         e.TotalAmount,
		MaxPreparationTime: e.MaxPreparationTime,
	})
	if err != nil {
		return err
	}
	if !created {
		p.logger.Warn("duplicate order created event",
			logx.String("order_id", e.OrderID),
			logx.Int64("delivery_id", d.ID),
			logx.String("status", string(d.Status)),
		)
	}
	return nil
}

func (p *Processor) onReady(ctx context.Context, ev domain.Event) error {
	_, err := p.orchestrator.MarkReadyForDelivery(ctx, ev.AggregateID())
	return err
}

func (p *Processor) onPaid(ctx context.Context, ev domain.Event) error {
	_, err := p.orchestrator.ConfirmPayment(ctx, ev.AggregateID())
	return err
}

func (p *Processor) onCancelled(ctx context.Context, ev domain.Event) error {
	e := ev.(domain.OrderCancelled)
	_, err := p.orchestrator.CancelByOrderID(ctx, e.OrderID, e.Reason)
	return err
}
