package orders

import (
	"context"
	"time"

	"food-delivery-Orurh/internal/domain"
)

// OrderStore is the order service's storage of order records.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	// AdvanceOrderStatus applies status only as a forward step from the stored one
	// and reports whether it did.
	AdvanceOrderStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (bool, error)
}
