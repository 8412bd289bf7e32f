package domain

// Courier represents a delivery courier in the pool.
// UserID references an account owned by another service and is never dereferenced here.
type Courier struct {
	ID                  int64
	UserID              int64
	Name                string
	Phone               string
	VehicleType         VehicleType
	IsAvailable         bool
	Rating              float64
	CompletedDeliveries int64
}

// PoolAudit counts couriers whose availability disagrees with their active deliveries.
type PoolAudit struct {
	// Stranded couriers are unavailable without any active delivery.
	Stranded int64
	// Overbooked couriers are linked to more than one active delivery.
	Overbooked int64
	// Leaked couriers are available while linked to an active delivery.
	Leaked int64
}

// Clean reports whether the pool is consistent.
func (a PoolAudit) Clean() bool {
	return a.Stranded == 0 && a.Overbooked == 0 && a.Leaked == 0
}
