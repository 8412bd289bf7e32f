package delivery

import (
	"context"
	"fmt"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/lifecycle"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/ports/deliverytx"
)

const publishTimeout = 5 * time.Second

// loader reads and locks the delivery inside a transaction.
type loader struct {
	describe string
	load     func(ctx context.Context, tx deliverytx.Repository) (*domain.Delivery, error)
}

func byID(id int64) loader {
	return loader{
		describe: fmt.Sprintf("delivery %d", id),
		load: func(ctx context.Context, tx deliverytx.Repository) (*domain.Delivery, error) {
			return tx.GetDelivery(ctx, id)
		},
	}
}

func byOrder(orderID string) loader {
	return loader{
		describe: fmt.Sprintf("delivery for order %q", orderID),
		load: func(ctx context.Context, tx deliverytx.Repository) (*domain.Delivery, error) {
			return tx.GetDeliveryByOrderID(ctx, orderID)
		},
	}
}

// evaluator picks the trigger and the view of the delivery the state machine sees.
type evaluator func(d domain.Delivery) (domain.Delivery, lifecycle.Trigger)

func fixed(t lifecycle.Trigger) evaluator {
	return func(d domain.Delivery) (domain.Delivery, lifecycle.Trigger) { return d, t }
}

type outcome struct {
	delivery domain.Delivery
	from     domain.DeliveryStatus
	courier  *domain.Courier
	events   []domain.Event
}

// apply is the single write path for every transition: load and lock, compute the plan,
// acquire or release a courier, persist, then publish after commit.
func (s *Service) apply(ctx context.Context, l loader, eval evaluator, mutate ...func(*domain.Delivery)) (outcome, error) {
	var out outcome

	err := s.store.WithTx(ctx, func(tx deliverytx.Repository) error {
		out = outcome{}

		cur, err := l.load(ctx, tx)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("%s: %w", l.describe, apperr.ErrNotFound)
		}

		view, trigger := eval(*cur)
		now := s.now()
		plan, err := lifecycle.Next(view, trigger, now)
		if err != nil {
			return err
		}

		out.delivery, out.from = *cur, cur.Status
		if plan.Noop() {
			return nil
		}

		next := *cur
		to := plan.To
		if plan.NeedCourier {
			c, err := s.acquire(ctx, tx)
			if err != nil {
				return err
			}
			if c == nil {
				if trigger.Explicit() {
					return fmt.Errorf("%s: %w", l.describe, apperr.ErrNoCapacity)
				}
				s.metrics.NoCapacity.Inc()
				to = plan.Fallback
			} else {
				next.CourierID = &c.ID
				out.courier = c
			}
		}

		reached := to == plan.To
		if plan.StartPreparation && reached && next.PreparationStartedAt == nil {
			next.PreparationStartedAt = &now
			next.EstimatedDeliveryTime = now.Add(time.Duration(next.PreparationTimeMinutes+next.DeliveryTimeMinutes) * time.Minute)
		}
		if plan.StartDelivery && reached && next.DeliveryStartedAt == nil {
			next.DeliveryStartedAt = &now
			next.EstimatedDeliveryTime = now.Add(time.Duration(next.DeliveryTimeMinutes) * time.Minute)
		}
		for _, fn := range mutate {
			fn(&next)
		}

		if to == cur.Status && sameStamps(*cur, next) && out.courier == nil && next.Notes == cur.Notes {
			return nil
		}

		if plan.Releases(to) && next.CourierID != nil {
			if err := tx.ReleaseCourier(ctx, *next.CourierID, to == domain.StatusDelivered); err != nil {
				return err
			}
		}

		next.Status = to
		next.UpdatedAt = now
		if err := tx.UpdateDelivery(ctx, &next); err != nil {
			return err
		}

		out.delivery = next
		out.events = s.eventsFor(next, plan, out.from, out.courier, now)
		return nil
	})
	if err != nil {
		return outcome{}, err
	}

	if out.from != out.delivery.Status {
		s.metrics.Transitions.WithLabelValues(string(out.from), string(out.delivery.Status)).Inc()
		s.logger.Info("delivery status changed",
			logx.String("event", "delivery_status_changed"),
			logx.Int64("delivery_id", out.delivery.ID),
			logx.String("order_id", out.delivery.OrderID),
			logx.String("from", string(out.from)),
			logx.String("to", string(out.delivery.Status)),
		)
	}
	s.publish(ctx, out.events)
	return out, nil
}

// acquire takes the first courier the picker prefers whose compare-and-swap succeeds.
// It returns nil when the pool is empty.
func (s *Service) acquire(ctx context.Context, tx deliverytx.Repository) (*domain.Courier, error) {
	candidates, err := tx.ListAvailableCouriers(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range s.picker.Rank(candidates) {
		ok, err := tx.AcquireCourier(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			c.IsAvailable = false
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Service) eventsFor(d domain.Delivery, plan lifecycle.Plan, from domain.DeliveryStatus, c *domain.Courier, now time.Time) []domain.Event {
	var events []domain.Event
	if c != nil {
		events = append(events, domain.DeliveryAssigned{
			OrderID:               d.OrderID,
			DeliveryID:            d.ID,
			CourierID:             c.ID,
			CourierName:           c.Name,
			EstimatedDeliveryTime: d.EstimatedDeliveryTime,
			AssignedAt:            now,
		})
	}
	if d.Status == from {
		return events
	}
	if plan.Via != "" && plan.Via != from && d.Status == plan.To {
		events = append(events, statusChanged(d, plan.Via, now))
	}
	events = append(events, statusChanged(d, d.Status, now))
	if d.Status == domain.StatusDelivered {
		events = append(events, domain.DeliveryCompleted{
			OrderID:     d.OrderID,
			DeliveryID:  d.ID,
			DeliveredAt: now,
		})
	}
	return events
}

func statusChanged(d domain.Delivery, st domain.DeliveryStatus, now time.Time) domain.DeliveryStatusChanged {
	return domain.DeliveryStatusChanged{
		OrderID:    d.OrderID,
		DeliveryID: d.ID,
		Status:     st,
		ChangedAt:  now,
	}
}

// publish sends events after commit. Failures are logged and counted; the state change stands.
func (s *Service) publish(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, ev := range events {
		if err := s.publisher.Publish(pubCtx, ev); err != nil {
			s.metrics.PublishFailures.WithLabelValues(string(ev.EventType())).Inc()
			s.logger.Error("publish event failed",
				logx.String("event_type", string(ev.EventType())),
				logx.String("order_id", ev.AggregateID()),
				logx.Err(err),
			)
		}
	}
}

func sameStamps(a, b domain.Delivery) bool {
	return sameTime(a.PreparationStartedAt, b.PreparationStartedAt) &&
		sameTime(a.DeliveryStartedAt, b.DeliveryStartedAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
