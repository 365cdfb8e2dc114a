package messaging

import (
	"testing"

	"fleetops/fleet"
)

func TestParseVehicleUpdateFull(t *testing.T) {
	payload := []byte(`{"type":"vehicle_update","data":{"id":3,"position":{"lat":55.75,"lng":37.61},"fuel_level":82.5,"speed":54,"status":"ACTIVE"}}`)

	d, err := ParseVehicleUpdate(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d == nil {
		t.Fatal("delta should not be nil")
	}
	if d.VehicleID != 3 {
		t.Errorf("id = %d, want 3", d.VehicleID)
	}
	if d.Position == nil || d.Position.Lat != 55.75 || d.Position.Lng != 37.61 {
		t.Errorf("position = %+v, want 55.75/37.61", d.Position)
	}
	if d.FuelLevel == nil || *d.FuelLevel != 82.5 {
		t.Errorf("fuel = %v, want 82.5", d.FuelLevel)
	}
	if d.Speed == nil || *d.Speed != 54 {
		t.Errorf("speed = %v, want 54", d.Speed)
	}
	if d.Status == nil || *d.Status != fleet.StatusActive {
		t.Errorf("status = %v, want ACTIVE", d.Status)
	}
}

func TestParseVehicleUpdatePartial(t *testing.T) {
	payload := []byte(`{"type":"vehicle_update","data":{"id":7,"fuel_level":40}}`)

	d, err := ParseVehicleUpdate(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Position != nil || d.Speed != nil || d.Status != nil {
		t.Errorf("omitted fields must stay nil: %+v", d)
	}
	if d.FuelLevel == nil || *d.FuelLevel != 40 {
		t.Errorf("fuel = %v, want 40", d.FuelLevel)
	}
}

func TestParseVehicleUpdateWrongKind(t *testing.T) {
	payload := []byte(`{"type":"driver_ping","data":{"id":7}}`)

	d, err := ParseVehicleUpdate(payload)
	if err != nil {
		t.Fatalf("wrong kind must not error: %v", err)
	}
	if d != nil {
		t.Errorf("delta = %+v, want nil for foreign message kind", d)
	}
}

func TestParseVehicleUpdateMissingID(t *testing.T) {
	payload := []byte(`{"type":"vehicle_update","data":{"fuel_level":40}}`)

	if _, err := ParseVehicleUpdate(payload); err == nil {
		t.Error("missing id must be rejected")
	}
}

func TestParseVehicleUpdateMalformedJSON(t *testing.T) {
	if _, err := ParseVehicleUpdate([]byte(`{"type":"vehicle_update",`)); err == nil {
		t.Error("malformed json must be rejected")
	}
}

func TestParseVehicleUpdateUnknownStatus(t *testing.T) {
	payload := []byte(`{"type":"vehicle_update","data":{"id":7,"status":"PARKED"}}`)

	if _, err := ParseVehicleUpdate(payload); err == nil {
		t.Error("unknown status must be rejected")
	}
}

type recordingApplier struct {
	deltas []fleet.Delta
}

func (r *recordingApplier) ApplyTelemetry(d fleet.Delta) { r.deltas = append(r.deltas, d) }

func TestSubscriberAbsorbsBadPayloads(t *testing.T) {
	applier := &recordingApplier{}
	s := &TelemetrySubscriber{applier: applier}

	s.handleMessage([]byte(`not json`))
	s.handleMessage([]byte(`{"type":"vehicle_update","data":{}}`))
	s.handleMessage([]byte(`{"type":"other","data":{"id":1}}`))
	if len(applier.deltas) != 0 {
		t.Errorf("bad payloads applied: %+v", applier.deltas)
	}

	s.handleMessage([]byte(`{"type":"vehicle_update","data":{"id":5,"speed":30}}`))
	if len(applier.deltas) != 1 || applier.deltas[0].VehicleID != 5 {
		t.Errorf("deltas = %+v, want one for vehicle 5", applier.deltas)
	}
}
