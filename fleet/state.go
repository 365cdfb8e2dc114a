package fleet

import (
	"log"
	"sort"
	"sync"
)

// State holds the merged live view of the fleet: a baseline loaded once from
// the database plus an open-ended stream of partial telemetry deltas. Entries
// are created by LoadSnapshot only; a delta for an id that is not in the
// working set is dropped, since partial data cannot construct a full entry.
type State struct {
	mu       sync.RWMutex
	vehicles map[int64]VehicleState
	emitter  EventEmitter
}

// NewState creates an empty fleet state.
func NewState(emitter EventEmitter) *State {
	return &State{
		vehicles: make(map[int64]VehicleState),
		emitter:  emitter,
	}
}

// LoadSnapshot replaces the entire working set with the given baseline.
// An empty list is valid and clears the state.
func (s *State) LoadSnapshot(vehicles []VehicleState) {
	s.mu.Lock()
	s.vehicles = make(map[int64]VehicleState, len(vehicles))
	for _, v := range vehicles {
		s.vehicles[v.ID] = v.clone()
	}
	count := len(s.vehicles)
	s.mu.Unlock()

	if s.emitter != nil {
		s.emitter.EmitFleetLoaded(count)
	}
}

// ApplyDelta merges the non-nil fields of d into the matching vehicle entry.
// Fields absent from the delta keep their current value. Deltas for unknown
// ids are logged and dropped; late messages for vehicles removed from the
// fleet are expected in normal operation. Returns true if a vehicle was
// updated.
//
// There is deliberately no staleness guard and no range clamping here: the
// inbound stream is a single ordered channel, and an older delta overwriting
// a newer field value is accepted. Bounds-checking fuel readings would hide
// misbehaving senders instead of surfacing them.
func (s *State) ApplyDelta(d Delta) bool {
	s.mu.Lock()
	v, ok := s.vehicles[d.VehicleID]
	if !ok {
		s.mu.Unlock()
		log.Printf("fleet: delta for unknown vehicle %d dropped", d.VehicleID)
		return false
	}

	if d.Position != nil {
		p := *d.Position
		v.Position = &p
	}
	if d.FuelLevel != nil {
		v.FuelLevel = *d.FuelLevel
	}
	if d.Speed != nil {
		sp := *d.Speed
		v.Speed = &sp
	}
	if d.Status != nil {
		v.Status = *d.Status
	}
	s.vehicles[d.VehicleID] = v
	updated := v.clone()
	s.mu.Unlock()

	if s.emitter != nil {
		s.emitter.EmitVehicleUpdated(updated)
	}
	return true
}

// Get returns a copy of one vehicle's state.
func (s *State) Get(id int64) (VehicleState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return VehicleState{}, false
	}
	return v.clone(), true
}

// Snapshot returns a copy of the current merged view, ordered by vehicle id.
// Callers own the result and cannot corrupt internal state through it.
func (s *State) Snapshot() []VehicleState {
	s.mu.RLock()
	out := make([]VehicleState, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v.clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked vehicles.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}
