package domain

import "regexp"

// DeliveryStatus represents the lifecycle status of a delivery.
type DeliveryStatus string

// List of delivery statuses in forward order. Cancelled sits outside the ordering.
const (
	StatusPending    DeliveryStatus = "pending"
	StatusProcessing DeliveryStatus = "processing"
	StatusPreparing  DeliveryStatus = "preparing"
	StatusAssigned   DeliveryStatus = "assigned"
	StatusPickingUp  DeliveryStatus = "picking_up"
	StatusOnTheWay   DeliveryStatus = "on_the_way"
	StatusDelivered  DeliveryStatus = "delivered"
	StatusCancelled  DeliveryStatus = "cancelled"
)

var statusRank = map[DeliveryStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusPreparing:  2,
	StatusAssigned:   3,
	StatusPickingUp:  4,
	StatusOnTheWay:   5,
	StatusDelivered:  6,
}

// Valid checks if the DeliveryStatus is known.
func (s DeliveryStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are permitted.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Before reports whether s comes strictly before other in the forward ordering.
// Cancelled is never before or after anything.
func (s DeliveryStatus) Before(other DeliveryStatus) bool {
	a, okA := statusRank[s]
	b, okB := statusRank[other]
	return okA && okB && a < b
}

// VehicleType represents the vehicle a courier uses.
type VehicleType string

// List of possible courier vehicle types
const (
	VehicleFoot    VehicleType = "on_foot"
	VehicleBicycle VehicleType = "bicycle"
	VehicleScooter VehicleType = "scooter"
	VehicleCar     VehicleType = "car"
)

var allowedVehicleTypes = [...]VehicleType{
	VehicleFoot, VehicleBicycle, VehicleScooter, VehicleCar,
}

// Valid checks if the VehicleType is valid
func (t VehicleType) Valid() bool {
	for _, v := range allowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
