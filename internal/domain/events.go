package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the stable routing key of an event on the bus.
type EventType string

// List of event types exchanged between services
const (
	EventOrderCreated          EventType = "order.created"
	EventOrderReadyForDelivery EventType = "order.ready_for_delivery"
	EventPaymentConfirmed      EventType = "payment.confirmed"
	EventOrderCancelled        EventType = "order.cancelled"
	EventDeliveryAssigned      EventType = "delivery.assigned"
	EventDeliveryStatusChanged EventType = "delivery.status.changed"
	EventDeliveryCompleted     EventType = "delivery.completed"
)

// Event is implemented by every event payload.
type Event interface {
	EventType() EventType
	// AggregateID is the order id the event belongs to; transports use it as a partition key.
	AggregateID() string
}

// OrderItem is a single line of an order.
type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderCreated is published by the order service when an order is placed.
type OrderCreated struct {
	OrderID            string          `json:"order_id"`
	UserID             string          `json:"user_id"`
	RestaurantID       string          `json:"restaurant_id"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DeliveryAddress    string          `json:"delivery_address"`
	Items              []OrderItem     `json:"items"`
	MaxPreparationTime int             `json:"max_preparation_time"`
	CreatedAt          time.Time       `json:"created_at"`
}

// OrderReadyForDelivery is published when the kitchen hands an order over.
type OrderReadyForDelivery struct {
	OrderID   string    `json:"order_id"`
	ReadyAt   time.Time `json:"ready_at"`
	Kitchen   string    `json:"kitchen,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentConfirmed is published by the payment service.
type PaymentConfirmed struct {
	OrderID       string          `json:"order_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// OrderCancelled is published when an order is cancelled.
type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason"`
}

// DeliveryAssigned is published when a courier is linked to a delivery.
type DeliveryAssigned struct {
	OrderID               string    `json:"order_id"`
	DeliveryID            int64     `json:"delivery_id"`
	CourierID             int64     `json:"courier_id"`
	CourierName           string    `json:"courier_name"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
	AssignedAt            time.Time `json:"assigned_at"`
}

// DeliveryStatusChanged is published on every delivery status change.
type DeliveryStatusChanged struct {
	OrderID    string         `json:"order_id"`
	DeliveryID int64          `json:"delivery_id"`
	Status     DeliveryStatus `json:"status"`
	ChangedAt  time.Time      `json:"changed_at"`
}

// DeliveryCompleted is published once a delivery reaches Delivered.
type DeliveryCompleted struct {
	OrderID     string    `json:"order_id"`
	DeliveryID  int64     `json:"delivery_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

func (OrderCreated) EventType() EventType          { return EventOrderCreated }
func (OrderReadyForDelivery) EventType() EventType { return EventOrderReadyForDelivery }
func (PaymentConfirmed) EventType() EventType      { return EventPaymentConfirmed }
func (OrderCancelled) EventType() EventType        { return EventOrderCancelled }
func (DeliveryAssigned) EventType() EventType      { return EventDeliveryAssigned }
func (DeliveryStatusChanged) EventType() EventType { return EventDeliveryStatusChanged }
func (DeliveryCompleted) EventType() EventType     { return EventDeliveryCompleted }

func (e OrderCreated) AggregateID() string          { return e.OrderID }
func (e OrderReadyForDelivery) AggregateID() string { return e.OrderID }
func (e PaymentConfirmed) AggregateID() string      { return e.OrderID }
func (e OrderCancelled) AggregateID() string        { return e.OrderID }
func (e DeliveryAssigned) AggregateID() string      { return e.OrderID }
func (e DeliveryStatusChanged) AggregateID() string { return e.OrderID }
func (e DeliveryCompleted) AggregateID() string     { return e.OrderID }
