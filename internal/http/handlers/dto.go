package handlers

import "food-delivery-Orurh/internal/domain"

type courierDTO struct {
	ID                  int64              `json:"id"`
	UserID              int64              `json:"user_id,omitempty"`
	Name                string             `json:"name"`
	Phone               string             `json:"phone"`
	VehicleType         domain.VehicleType `json:"vehicle_type"`
	IsAvailable         bool               `json:"is_available"`
	Rating              float64            `json:"rating"`
	CompletedDeliveries int64              `json:"completed_deliveries"`
}

type createCourierRequest struct {
	UserID      int64              `json:"user_id"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	VehicleType domain.VehicleType `json:"vehicle_type"`
	Rating      float64            `json:"rating"`
}
