package board

// OrderStatusService applies an ungated status change to an order.
type OrderStatusService interface {
	UpdateStatus(orderID int64, newStatus string) error
}

// AssignmentService persists a vehicle assignment. A successful call means
// the order is IN_PROGRESS with the vehicle attached server-side.
type AssignmentService interface {
	Assign(orderID, vehicleID int64) error
}

// VehiclePool lists vehicles that may be offered in the assignment prompt.
// It is re-queried after every successful assignment so a vehicle already
// taken is not offered again.
type VehiclePool interface {
	ListAssignable() ([]VehicleOption, error)
}

// EventEmitter is the interface the board package uses to emit events.
type EventEmitter interface {
	EmitOrderStatusChanged(orderID int64, oldStatus, newStatus string)
	EmitOrderAssigned(orderID, vehicleID int64)
}
