package deliverytx

import (
	"context"

	"food-delivery-Orurh/internal/domain"
)

// Repository is the transactional view of the delivery store.
// Get methods lock the returned row until the transaction ends and return nil, nil when nothing matches.
type Repository interface {
	GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	InsertDelivery(ctx context.Context, d *domain.Delivery) error
	UpdateDelivery(ctx context.Context, d *domain.Delivery) error

	CourierPool
}

// CourierPool is the set of couriers that can be handed to deliveries.
type CourierPool interface {
	// ListAvailableCouriers returns available couriers not locked by a concurrent transaction.
	ListAvailableCouriers(ctx context.Context) ([]domain.Courier, error)
	// AcquireCourier flips the courier to unavailable if it is still available.
	// A false result means another transaction won the race.
	AcquireCourier(ctx context.Context, id int64) (bool, error)
	// ReleaseCourier makes the courier available again, counting a completed delivery when asked.
	ReleaseCourier(ctx context.Context, id int64, completed bool) error
	GetCourier(ctx context.Context, id int64) (*domain.Courier, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
	// WithSerializableTx runs fn at SERIALIZABLE isolation.
	WithSerializableTx(ctx context.Context, fn func(tx Repository) error) error
}

// Reader serves lock-free reads outside of transactions.
type Reader interface {
	FindDelivery(ctx context.Context, id int64) (*domain.Delivery, error)
	FindDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// Store is everything the orchestrator needs from persistence.
type Store interface {
	Runner
	Reader
}
