// Package lifecycle holds the delivery state machine. It performs no I/O: given the
// current delivery, a trigger and the current time it returns a Plan that the
// orchestrator applies inside a store transaction.
package lifecycle

import (
	"fmt"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
)

// TriggerKind identifies what asks the delivery to move.
type TriggerKind int

// List of triggers
const (
	TriggerPaymentConfirmed TriggerKind = iota + 1
	TriggerReadyForDelivery
	TriggerTimer
	TriggerCancel
	TriggerAssign
	TriggerStatusUpdate
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerPaymentConfirmed:
		return "payment_confirmed"
	case TriggerReadyForDelivery:
		return "ready_for_delivery"
	case TriggerTimer:
		return "timer"
	case TriggerCancel:
		return "cancel"
	case TriggerAssign:
		return "assign"
	case TriggerStatusUpdate:
		return "status_update"
	default:
		return fmt.Sprintf("trigger(%d)", int(k))
	}
}

// Trigger is an input to Next.
type Trigger struct {
	Kind TriggerKind
	// Target is the requested status, TriggerStatusUpdate only.
	Target domain.DeliveryStatus
	// CourierID is the requesting courier, TriggerStatusUpdate only. Nil means a system request.
	CourierID *int64
}

// Explicit reports whether the trigger comes from a direct request rather than
// an event or the timer. Explicit triggers fail loudly; the others are skipped.
func (t Trigger) Explicit() bool {
	return t.Kind == TriggerAssign || t.Kind == TriggerStatusUpdate
}

// Plan describes the outcome of a transition.
type Plan struct {
	From domain.DeliveryStatus
	To   domain.DeliveryStatus

	// NeedCourier means To is reached only after a courier is acquired from the pool.
	NeedCourier bool

	// Fallback is applied instead of To when NeedCourier is set and the pool is empty.
	Fallback domain.DeliveryStatus

	// Via is a status passed through on the way to To, reported but not persisted.
	Via domain.DeliveryStatus

	StartPreparation bool
	StartDelivery    bool
}

// Noop reports whether applying the plan changes nothing.
func (p Plan) Noop() bool {
	return p.From == p.To && !p.NeedCourier && !p.StartPreparation && !p.StartDelivery
}

// Releases reports whether reaching status to must return the courier to the pool.
func (p Plan) Releases(to domain.DeliveryStatus) bool {
	return to.IsTerminal() && !p.From.IsTerminal()
}

func stay(s domain.DeliveryStatus) Plan {
	return Plan{From: s, To: s}
}

// Next computes the transition for delivery d under trigger t at time now.
func Next(d domain.Delivery, t Trigger, now time.Time) (Plan, error) {
	cur := d.Status
	switch t.Kind {
	case TriggerPaymentConfirmed:
		if cur == domain.StatusPending {
			return Plan{From: cur, To: domain.StatusProcessing}, nil
		}
		return stay(cur), nil

	case TriggerReadyForDelivery:
		if cur == domain.StatusPending || cur == domain.StatusProcessing {
			if d.HasCourier() {
				return Plan{From: cur, To: domain.StatusPickingUp}, nil
			}
			return Plan{From: cur, To: domain.StatusPickingUp, NeedCourier: true, Fallback: cur}, nil
		}
		return stay(cur), nil

	case TriggerTimer:
		return onTimer(d, now), nil

	case TriggerCancel:
		if cur.IsTerminal() {
			return stay(cur), nil
		}
		return Plan{From: cur, To: domain.StatusCancelled}, nil

	case TriggerAssign:
		return onAssign(d)

	case TriggerStatusUpdate:
		return onStatusUpdate(d, t)
	}
	return Plan{}, fmt.Errorf("unknown trigger %s: %w", t.Kind, apperr.ErrInvalid)
}

func onTimer(d domain.Delivery, now time.Time) Plan {
	cur := d.Status
	switch cur {
	case domain.StatusProcessing:
		return Plan{From: cur, To: domain.StatusPreparing, StartPreparation: true}

	case domain.StatusPreparing:
		if d.PreparationStartedAt == nil {
			return Plan{From: cur, To: cur, StartPreparation: true}
		}
		if !elapsed(*d.PreparationStartedAt, d.PreparationTimeMinutes, now) {
			return stay(cur)
		}
		return Plan{
			From:          cur,
			To:            domain.StatusOnTheWay,
			NeedCourier:   true,
			Fallback:      domain.StatusPickingUp,
			Via:           domain.StatusPickingUp,
			StartDelivery: true,
		}

	case domain.StatusAssigned:
		if d.PreparationStartedAt == nil {
			return Plan{From: cur, To: cur, StartPreparation: true}
		}
		if !elapsed(*d.PreparationStartedAt, d.PreparationTimeMinutes, now) {
			return stay(cur)
		}
		return Plan{From: cur, To: domain.StatusPickingUp}

	case domain.StatusPickingUp:
		if d.HasCourier() {
			return Plan{From: cur, To: domain.StatusOnTheWay, StartDelivery: true}
		}
		return Plan{
			From:          cur,
			To:            domain.StatusOnTheWay,
			NeedCourier:   true,
			Fallback:      cur,
			StartDelivery: true,
		}

	case domain.StatusOnTheWay:
		if d.DeliveryStartedAt == nil {
			return Plan{From: cur, To: cur, StartDelivery: true}
		}
		if !elapsed(*d.DeliveryStartedAt, d.DeliveryTimeMinutes, now) {
			return stay(cur)
		}
		return Plan{From: cur, To: domain.StatusDelivered}
	}
	// Pending waits for payment; terminal states never move.
	return stay(cur)
}

func onAssign(d domain.Delivery) (Plan, error) {
	cur := d.Status
	if cur.IsTerminal() {
		return Plan{}, fmt.Errorf("assign courier in status %s: %w", cur, apperr.ErrInvalidState)
	}
	if d.HasCourier() {
		return Plan{}, fmt.Errorf("courier already assigned: %w", apperr.ErrInvalidState)
	}
	switch cur {
	case domain.StatusPending, domain.StatusProcessing, domain.StatusPreparing:
		return Plan{From: cur, To: domain.StatusAssigned, NeedCourier: true, Fallback: cur}, nil
	case domain.StatusPickingUp:
		return Plan{From: cur, To: domain.StatusOnTheWay, NeedCourier: true, Fallback: cur, StartDelivery: true}, nil
	}
	return Plan{}, fmt.Errorf("assign courier in status %s: %w", cur, apperr.ErrInvalidState)
}

func onStatusUpdate(d domain.Delivery, t Trigger) (Plan, error) {
	cur := d.Status
	if t.CourierID != nil && !d.AssignedTo(*t.CourierID) {
		return Plan{}, fmt.Errorf("courier %d is not assigned to delivery %d: %w", *t.CourierID, d.ID, apperr.ErrUnauthorized)
	}
	if !t.Target.Valid() {
		return Plan{}, fmt.Errorf("unknown status %q: %w", t.Target, apperr.ErrInvalid)
	}
	if cur.IsTerminal() {
		return Plan{}, fmt.Errorf("delivery is %s: %w", cur, apperr.ErrInvalidState)
	}
	if t.Target == domain.StatusCancelled {
		return Plan{From: cur, To: domain.StatusCancelled}, nil
	}
	if !cur.Before(t.Target) {
		return Plan{}, fmt.Errorf("cannot move from %s to %s: %w", cur, t.Target, apperr.ErrInvalidState)
	}

	switch t.Target {
	case domain.StatusAssigned:
		return Plan{}, fmt.Errorf("status %s is set by courier assignment: %w", t.Target, apperr.ErrInvalidState)
	case domain.StatusPickingUp, domain.StatusOnTheWay, domain.StatusDelivered:
		if !d.HasCourier() {
			return Plan{}, fmt.Errorf("status %s requires a courier: %w", t.Target, apperr.ErrInvalidState)
		}
	}

	return Plan{
		From:             cur,
		To:               t.Target,
		StartPreparation: t.Target == domain.StatusPreparing,
		StartDelivery:    t.Target == domain.StatusOnTheWay,
	}, nil
}

func elapsed(since time.Time, minutes int, now time.Time) bool {
	return now.Sub(since) >= time.Duration(minutes)*time.Minute
}

// PhaseDuration returns how long the current timed phase lasts and when it started,
// or ok=false when the status has no timed phase.
func PhaseDuration(d domain.Delivery) (start *time.Time, dur time.Duration, ok bool) {
	switch d.Status {
	case domain.StatusPreparing, domain.StatusAssigned:
		return d.PreparationStartedAt, time.Duration(d.PreparationTimeMinutes) * time.Minute, true
	case domain.StatusOnTheWay:
		return d.DeliveryStartedAt, time.Duration(d.DeliveryTimeMinutes) * time.Minute, true
	}
	return nil, 0, false
}
