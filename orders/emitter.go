package orders

// EventEmitter is the interface the orders package uses to emit events.
type EventEmitter interface {
	EmitOrderCreated(orderID int64, orderUUID string)
	EmitOrderStatusChanged(orderID int64, oldStatus, newStatus string)
	EmitOrderAssigned(orderID, vehicleID int64)
	EmitOrderCompleted(orderID int64, orderUUID string)
}
