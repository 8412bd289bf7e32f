// Package orders projects delivery status changes onto order records.
package orders

import (
	"context"
	"fmt"
	"time"

	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// Service is the queue prefix of the order side.
const Service = "orders"

// Processor handles DeliveryStatusChanged events.
type Processor struct {
	store  OrderStore
	logger logx.Logger
	now    func() time.Time
}

// NewProcessor creates a new orders.Processor
func NewProcessor(store OrderStore, logger logx.Logger) *Processor {
	return &Processor{store: store, logger: logger, now: time.Now}
}

// Keys lists the routing keys the processor consumes.
func (p *Processor) Keys() []domain.EventType {
	return []domain.EventType{domain.EventDeliveryStatusChanged}
}

// Handle moves the order forward to the status the delivery status maps to. Late or
// repeated events that would move it backwards are skipped.
func (p *Processor) Handle(ctx context.Context, env bus.Envelope) error {
	ev, err := env.Event()
	if err != nil {
		return err
	}
	e, ok := ev.(domain.DeliveryStatusChanged)
	if !ok {
		return bus.Permanent(fmt.Errorf("unexpected event type %q", env.Type))
	}

	target, ok := OrderStatusFor(e.Status)
	if !ok {
		p.logger.Warn("delivery status has no order status",
			logx.String("order_id", e.OrderID),
			logx.String("delivery_status", string(e.Status)),
		)
		return nil
	}

	order, err := p.store.GetOrder(ctx, e.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return bus.Permanent(fmt.Errorf("order %q not found", e.OrderID))
	}
	if order.Status == target {
		return nil
	}
	if !order.Status.CanMoveTo(target) {
		p.logStale(e, order.Status, target)
		return nil
	}

	applied, err := p.store.AdvanceOrderStatus(ctx, e.OrderID, target, p.now())
	if err != nil {
		return err
	}
	if !applied {
		// статус успел уйти вперёд между чтением и записью
		p.logStale(e, order.Status, target)
		return nil
	}
	p.logger.Info("order status updated",
		logx.String("order_id", e.OrderID),
		logx.String("from", string(order.Status)),
		logx.String("to", string(target)),
	)
	return nil
}

func (p *Processor) logStale(e domain.DeliveryStatusChanged, current, target domain.OrderStatus) {
	p.logger.Info("stale order status skipped",
		logx.String("order_id", e.OrderID),
		logx.String("current", string(current)),
		logx.String("target", string(target)),
		logx.Time("changed_at", e.ChangedAt),
	)
}
