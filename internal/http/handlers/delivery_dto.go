package handlers

import (
	"time"

	"food-delivery-Orurh/internal/domain"
)

type deliveryDTO struct {
	ID                       int64                 `json:"id"`
	OrderID                  string                `json:"order_id"`
	Status                   domain.DeliveryStatus `json:"status"`
	CourierID                *int64                `json:"courier_id,omitempty"`
	Address                  string                `json:"address"`
	EstimatedDurationMinutes int                   `json:"estimated_duration_minutes"`
	PreparationTimeMinutes   int                   `json:"preparation_time_minutes"`
	DeliveryTimeMinutes      int                   `json:"delivery_time_minutes"`
	EstimatedDeliveryTime    time.Time             `json:"estimated_delivery_time"`
	PreparationStartedAt     *time.Time            `json:"preparation_started_at,omitempty"`
	DeliveryStartedAt        *time.Time            `json:"delivery_started_at,omitempty"`
	Notes                    string                `json:"notes,omitempty"`
	CreatedAt                time.Time             `json:"created_at"`
	UpdatedAt                time.Time             `json:"updated_at"`
}

type assignDeliveryResponse struct {
	DeliveryID            int64                 `json:"delivery_id"`
	OrderID               string                `json:"order_id"`
	CourierID             int64                 `json:"courier_id"`
	CourierName           string                `json:"courier_name"`
	VehicleType           domain.VehicleType    `json:"vehicle_type"`
	Status                domain.DeliveryStatus `json:"status"`
	EstimatedDeliveryTime time.Time             `json:"estimated_delivery_time"`
}

type updateStatusRequest struct {
	Status    domain.DeliveryStatus `json:"status"`
	CourierID *int64                `json:"courier_id,omitempty"`
}

type transitionResponse struct {
	Delivery deliveryDTO        `json:"delivery"`
	Events   []domain.EventType `json:"events"`
}
