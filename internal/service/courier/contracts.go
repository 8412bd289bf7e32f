package courier

import (
	"context"

	"food-delivery-Orurh/internal/domain"
)

// courierRepository defines the admin storage operations on couriers.
type courierRepository interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	Create(ctx context.Context, c *domain.Courier) (int64, error)
}
