package engine

import "fleetops/fleet"

// fleetEmitter adapts the engine's EventBus to the fleet.EventEmitter interface.
type fleetEmitter struct {
	bus *EventBus
}

func (e *fleetEmitter) EmitVehicleUpdated(v fleet.VehicleState) {
	e.bus.Emit(Event{Type: EventVehicleUpdated, Payload: VehicleUpdatedEvent{Vehicle: v}})
}

func (e *fleetEmitter) EmitFleetLoaded(count int) {
	e.bus.Emit(Event{Type: EventFleetLoaded, Payload: FleetLoadedEvent{Count: count}})
}

// orderEmitter adapts the engine's EventBus to both the orders.EventEmitter
// and board.EventEmitter interfaces.
type orderEmitter struct {
	bus *EventBus
}

func (e *orderEmitter) EmitOrderCreated(orderID int64, orderUUID string) {
	e.bus.Emit(Event{Type: EventOrderCreated, Payload: OrderCreatedEvent{
		OrderID: orderID, OrderUUID: orderUUID,
	}})
}

func (e *orderEmitter) EmitOrderStatusChanged(orderID int64, oldStatus, newStatus string) {
	e.bus.Emit(Event{Type: EventOrderStatusChanged, Payload: OrderStatusChangedEvent{
		OrderID: orderID, OldStatus: oldStatus, NewStatus: newStatus,
	}})
}

func (e *orderEmitter) EmitOrderAssigned(orderID, vehicleID int64) {
	e.bus.Emit(Event{Type: EventOrderAssigned, Payload: OrderAssignedEvent{
		OrderID: orderID, VehicleID: vehicleID,
	}})
}

func (e *orderEmitter) EmitOrderCompleted(orderID int64, orderUUID string) {
	e.bus.Emit(Event{Type: EventOrderCompleted, Payload: OrderCompletedEvent{
		OrderID: orderID, OrderUUID: orderUUID,
	}})
}

// BrokerEmitter lets the messaging client report connection state onto the bus.
type BrokerEmitter struct {
	bus *EventBus
}

func (e *BrokerEmitter) EmitBrokerConnected(backend string) {
	e.bus.Emit(Event{Type: EventBrokerConnected, Payload: BrokerEvent{Backend: backend}})
}

func (e *BrokerEmitter) EmitBrokerDisconnected(backend string, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	e.bus.Emit(Event{Type: EventBrokerDisconnected, Payload: BrokerEvent{Backend: backend, Error: errStr}})
}
