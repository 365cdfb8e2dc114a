package messaging

// VehicleUpdateMessage is the inbound telemetry wire format. Every field of
// Data except the id is optional; absent fields must not disturb the stored
// values.
type VehicleUpdateMessage struct {
	Type string            `json:"type"`
	Data VehicleUpdateData `json:"data"`
}

// VehicleUpdateData is the payload of a vehicle_update message.
type VehicleUpdateData struct {
	ID        *int64           `json:"id"`
	Position  *PositionMessage `json:"position,omitempty"`
	FuelLevel *float64         `json:"fuel_level,omitempty"`
	Speed     *float64         `json:"speed,omitempty"`
	Status    *string          `json:"status,omitempty"`
}

// PositionMessage is a lat/lng pair on the wire.
type PositionMessage struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MsgTypeVehicleUpdate is the only inbound telemetry message kind; anything
// else on the topic is ignored.
const MsgTypeVehicleUpdate = "vehicle_update"

// NodeStatusMessage is the periodic heartbeat JSON published on the status
// topic.
type NodeStatusMessage struct {
	NodeID    string `json:"node_id"`
	Hostname  string `json:"hostname"`
	Version   string `json:"version"`
	Uptime    int64  `json:"uptime"`
	Vehicles  int    `json:"vehicles"`
	Timestamp string `json:"timestamp"`
}
