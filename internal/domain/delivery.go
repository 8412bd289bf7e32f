package domain

import "time"

// Delivery is the tracked fulfillment record for one order.
type Delivery struct {
	ID                       int64
	OrderID                  string
	Status                   DeliveryStatus
	CourierID                *int64
	Address                  string
	EstimatedDurationMinutes int
	PreparationTimeMinutes   int
	DeliveryTimeMinutes      int
	EstimatedDeliveryTime    time.Time
	PreparationStartedAt     *time.Time
	DeliveryStartedAt        *time.Time
	Notes                    string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// HasCourier reports whether a courier is linked to the delivery.
func (d *Delivery) HasCourier() bool {
	return d.CourierID != nil
}

// AssignedTo reports whether the delivery is linked to the given courier.
func (d *Delivery) AssignedTo(courierID int64) bool {
	return d.CourierID != nil && *d.CourierID == courierID
}

// AssignResult - struct representing the result of assigning a courier to a delivery.
type AssignResult struct {
	DeliveryID            int64
	OrderID               string
	CourierID             int64
	CourierName           string
	VehicleType           VehicleType
	Status                DeliveryStatus
	EstimatedDeliveryTime time.Time
}
