//go:generate mockgen -source=contracts.go -destination=coordinator_mocks_test.go -package=coordinator_test

package coordinator

import (
	"context"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/service/delivery"
)

// Orchestrator is the subset of the delivery service driven by order and payment events.
type Orchestrator interface {
	CreateDelivery(ctx context.Context, in delivery.CreateInput) (domain.Delivery, bool, error)
	MarkReadyForDelivery(ctx context.Context, orderID string) ([]domain.Event, error)
	ConfirmPayment(ctx context.Context, orderID string) ([]domain.Event, error)
	CancelByOrderID(ctx context.Context, orderID, reason string) ([]domain.Event, error)
}
