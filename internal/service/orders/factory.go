package orders

import "food-delivery-Orurh/internal/domain"

// orderStatusFor maps delivery statuses onto the order vocabulary.
// Pending and Assigned have no order-side counterpart.
var orderStatusFor = map[domain.DeliveryStatus]domain.OrderStatus{
	domain.StatusProcessing: domain.OrderConfirmed,
	domain.StatusPreparing:  domain.OrderPreparing,
	domain.StatusPickingUp:  domain.OrderReadyForPickup,
	domain.StatusOnTheWay:   domain.OrderOutForDelivery,
	domain.StatusDelivered:  domain.OrderDelivered,
	domain.StatusCancelled:  domain.OrderCancelled,
}

// OrderStatusFor returns the order status a delivery status implies.
func OrderStatusFor(s domain.DeliveryStatus) (domain.OrderStatus, bool) {
	st, ok := orderStatusFor[s]
	return st, ok
}
