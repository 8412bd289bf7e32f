package handlers

import (
	"context"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/service/courier"
	"food-delivery-Orurh/internal/service/delivery"
)

type courierUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	Create(ctx context.Context, c *domain.Courier) (int64, error)
}

// NewCourierUsecase wires a courier Service into a courierUsecase.
func NewCourierUsecase(service *courier.Service) courierUsecase {
	return service
}

type deliveryUsecase interface {
	Get(ctx context.Context, deliveryID int64) (domain.Delivery, error)
	AssignCourier(ctx context.Context, deliveryID int64) (domain.AssignResult, []domain.Event, error)
	UpdateStatus(ctx context.Context, deliveryID int64, status domain.DeliveryStatus, requestingCourierID *int64) ([]domain.Event, error)
	SimulateProgress(ctx context.Context, deliveryID int64) ([]domain.Event, error)
}

// NewDeliveryUsecase wires a delivery Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
