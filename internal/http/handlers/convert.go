package handlers

import "food-delivery-Orurh/internal/domain"

func (req createCourierRequest) toModel() *domain.Courier {
	return &domain.Courier{
		UserID:      req.UserID,
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: req.VehicleType,
		Rating:      req.Rating,
	}
}

func courierToResponse(c domain.Courier) courierDTO {
	return courierDTO{
		ID:                  c.ID,
		UserID:              c.UserID,
		Name:                c.Name,
		Phone:               c.Phone,
		VehicleType:         c.VehicleType,
		IsAvailable:         c.IsAvailable,
		Rating:              c.Rating,
		CompletedDeliveries: c.CompletedDeliveries,
	}
}

func couriersToResponse(list []domain.Courier) []courierDTO {
	out := make([]courierDTO, 0, len(list))
	for _, c := range list {
		out = append(out, courierToResponse(c))
	}
	return out
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:                       d.ID,
		OrderID:                  d.OrderID,
		Status:                   d.Status,
		CourierID:                d.CourierID,
		Address:                  d.Address,
		EstimatedDurationMinutes: d.EstimatedDurationMinutes,
		PreparationTimeMinutes:   d.PreparationTimeMinutes,
		DeliveryTimeMinutes:      d.DeliveryTimeMinutes,
		EstimatedDeliveryTime:    d.EstimatedDeliveryTime,
		PreparationStartedAt:     d.PreparationStartedAt,
		DeliveryStartedAt:        d.DeliveryStartedAt,
		Notes:                    d.Notes,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}
}

func assignResultToResponse(res domain.AssignResult) assignDeliveryResponse {
	return assignDeliveryResponse{
		DeliveryID:            res.DeliveryID,
		OrderID:               res.OrderID,
		CourierID:             res.CourierID,
		CourierName:           res.CourierName,
		VehicleType:           res.VehicleType,
		Status:                res.Status,
		EstimatedDeliveryTime: res.EstimatedDeliveryTime,
	}
}

func eventTypes(events []domain.Event) []domain.EventType {
	out := make([]domain.EventType, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.EventType())
	}
	return out
}
