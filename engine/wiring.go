package engine

import (
	"log"

	"fleetops/board"
	"fleetops/fleet"
	"fleetops/store"
)

// wireEventHandlers sets up the event chain:
// OrderAssigned → vehicle shown busy on the live map
// OrderCompleted/Cancelled → assigned vehicle released back to IDLE
func (e *Engine) wireEventHandlers() {
	e.Events.SubscribeTypes(func(evt Event) {
		assigned := evt.Payload.(OrderAssignedEvent)
		e.handleOrderAssigned(assigned)
	}, EventOrderAssigned)

	e.Events.SubscribeTypes(func(evt Event) {
		completed := evt.Payload.(OrderCompletedEvent)
		e.handleOrderCompleted(completed)
	}, EventOrderCompleted)
}

func (e *Engine) handleOrderAssigned(assigned OrderAssignedEvent) {
	e.debugFn("order %d assigned vehicle %d", assigned.OrderID, assigned.VehicleID)

	// The database row already moved to IN_PROGRESS inside the assignment
	// transaction; mirror it into the live view.
	status := fleet.StatusInProgress
	e.fleetState.ApplyDelta(fleet.Delta{VehicleID: assigned.VehicleID, Status: &status})
}

func (e *Engine) handleOrderCompleted(completed OrderCompletedEvent) {
	order, err := e.db.GetOrder(completed.OrderID)
	if err != nil {
		log.Printf("get order %d for completion: %v", completed.OrderID, err)
		return
	}
	if order.VehicleID == nil {
		return
	}

	// Only release a vehicle that is still tied up by this delivery; a
	// vehicle flagged SOS or MAINTENANCE mid-route keeps that status.
	vehicle, err := e.db.GetVehicle(*order.VehicleID)
	if err != nil {
		log.Printf("get vehicle %d for release: %v", *order.VehicleID, err)
		return
	}
	if vehicle.Status != fleet.StatusInProgress {
		return
	}

	// Skip release if the vehicle is already on another active order.
	others, err := e.db.ListOrders(store.OrderFilter{VehicleID: *order.VehicleID, Status: board.StatusInProgress})
	if err == nil && len(others) > 0 {
		return
	}

	if err := e.db.UpdateVehicleStatus(*order.VehicleID, fleet.StatusIdle); err != nil {
		log.Printf("release vehicle %d: %v", *order.VehicleID, err)
		return
	}
	status := fleet.StatusIdle
	e.fleetState.ApplyDelta(fleet.Delta{VehicleID: *order.VehicleID, Status: &status})
	e.debugFn("vehicle %d released to IDLE after order %d", *order.VehicleID, completed.OrderID)
}
