package delivery

import (
	"context"

	"github.com/shopspring/decimal"

	"food-delivery-Orurh/internal/domain"
)

// EventPublisher sends events to the bus after a transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// CourierPicker orders available couriers by preference. The orchestrator tries them in order
// until one acquisition succeeds.
type CourierPicker interface {
	Rank(candidates []domain.Courier) []domain.Courier
}

// EstimateFactory prices the preparation and delivery phases of a new delivery.
type EstimateFactory interface {
	Estimate(orderTotal decimal.Decimal, maxPreparationMinutes int) Estimate
}

// Estimate is the time budget of a delivery in minutes.
type Estimate struct {
	PreparationMinutes int
	DeliveryMinutes    int
	TotalMinutes       int
}

// CreateInput carries what OrderCreated knows about the order.
type CreateInput struct {
	OrderID            string
	Address            string
	OrderTotal         decimal.Decimal
	MaxPreparationTime int
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) error { return nil }
