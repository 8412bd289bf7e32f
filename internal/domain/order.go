package domain

import "time"

// OrderStatus is the order service's own status vocabulary.
type OrderStatus string

// List of order statuses
const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Order is the order service's record, reduced to what delivery updates touch.
type Order struct {
	ID        string
	Status    OrderStatus
	UpdatedAt time.Time
}

// orderRank orders the happy path; Cancelled shares the top rank with Delivered.
var orderRank = map[OrderStatus]int{
	OrderPending:        0,
	OrderConfirmed:      1,
	OrderPreparing:      2,
	OrderReadyForPickup: 3,
	OrderOutForDelivery: 4,
	OrderDelivered:      5,
	OrderCancelled:      5,
}

// IsTerminal reports whether the order can no longer change.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanMoveTo reports whether next is a forward step from s. Cancellation is forward from
// any open status.
func (s OrderStatus) CanMoveTo(next OrderStatus) bool {
	from, ok := orderRank[s]
	if !ok || s.IsTerminal() {
		return false
	}
	to, ok := orderRank[next]
	if !ok {
		return false
	}
	return next == OrderCancelled || to > from
}

// OrderPredecessors lists the statuses an order may hold right before moving to next.
func OrderPredecessors(next OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, s := range []OrderStatus{
		OrderPending, OrderConfirmed, OrderPreparing, OrderReadyForPickup, OrderOutForDelivery,
	} {
		if s.CanMoveTo(next) {
			out = append(out, s)
		}
	}
	return out
}
