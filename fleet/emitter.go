package fleet

// EventEmitter is the interface the fleet package uses to emit events.
type EventEmitter interface {
	EmitVehicleUpdated(v VehicleState)
	EmitFleetLoaded(count int)
}
