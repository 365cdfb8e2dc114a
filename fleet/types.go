package fleet

// Vehicle statuses
const (
	StatusActive      = "ACTIVE"
	StatusInProgress  = "IN_PROGRESS"
	StatusMaintenance = "MAINTENANCE"
	StatusIdle        = "IDLE"
	StatusSOS         = "SOS"
)

// KnownStatus reports whether s is one of the recognised vehicle statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusActive, StatusInProgress, StatusMaintenance, StatusIdle, StatusSOS:
		return true
	}
	return false
}

// Position is a latitude/longitude pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleState is the live view of one vehicle. Position and Speed are nil
// until the vehicle first reports them.
type VehicleState struct {
	ID        int64     `json:"id"`
	Position  *Position `json:"position"`
	FuelLevel float64   `json:"fuel_level"`
	Speed     *float64  `json:"speed"`
	Status    string    `json:"status"`
}

// clone returns a deep copy so readers can never alias internal state.
func (v VehicleState) clone() VehicleState {
	out := v
	if v.Position != nil {
		p := *v.Position
		out.Position = &p
	}
	if v.Speed != nil {
		s := *v.Speed
		out.Speed = &s
	}
	return out
}

// Delta is a partial update for one vehicle. Nil fields were not present in
// the incoming message and must leave the current value untouched.
type Delta struct {
	VehicleID int64
	Position  *Position
	FuelLevel *float64
	Speed     *float64
	Status    *string
}
