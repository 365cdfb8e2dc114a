package engine

import (
	"time"

	"fleetops/fleet"
)

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Fleet events
	EventVehicleUpdated EventType = iota + 1
	EventFleetLoaded

	// Order events
	EventOrderCreated
	EventOrderStatusChanged
	EventOrderAssigned
	EventOrderCompleted

	// Broker events
	EventBrokerConnected
	EventBrokerDisconnected
)

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// VehicleUpdatedEvent is emitted whenever a telemetry delta lands.
type VehicleUpdatedEvent struct {
	Vehicle fleet.VehicleState `json:"vehicle"`
}

// FleetLoadedEvent is emitted when the live fleet snapshot is (re)loaded.
type FleetLoadedEvent struct {
	Count int `json:"count"`
}

// OrderCreatedEvent is emitted when a new order is placed.
type OrderCreatedEvent struct {
	OrderID   int64  `json:"order_id"`
	OrderUUID string `json:"order_uuid"`
}

// OrderStatusChangedEvent is emitted on order state transitions.
type OrderStatusChangedEvent struct {
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// OrderAssignedEvent is emitted when a vehicle is attached to an order.
type OrderAssignedEvent struct {
	OrderID   int64 `json:"order_id"`
	VehicleID int64 `json:"vehicle_id"`
}

// OrderCompletedEvent is emitted when an order reaches terminal state.
type OrderCompletedEvent struct {
	OrderID   int64  `json:"order_id"`
	OrderUUID string `json:"order_uuid"`
}

// BrokerEvent is emitted for messaging connection state changes.
type BrokerEvent struct {
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}
