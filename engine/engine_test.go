package engine

import (
	"path/filepath"
	"testing"

	"fleetops/board"
	"fleetops/config"
	"fleetops/fleet"
	"fleetops/orders"
	"fleetops/store"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := New(Config{AppConfig: config.Defaults(), DB: db})
	if err := e.Start(); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(e.Stop)
	return e
}

func seedOrder(t *testing.T, e *Engine) *store.Order {
	t.Helper()
	cid, err := e.DB().CreateUser("c@example.com", "h", "Client", "", store.RoleClient)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	o, err := e.OrderManager().Create(orders.CreateInput{CustomerID: cid, CustomerName: "Client"})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func TestStartLoadsFleet(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.CreateVehicle("VIN1", "PL1", "", "", "IDLE", nil, 100, 30)
	db.CreateVehicle("VIN2", "PL2", "", "", "ACTIVE", nil, 60, 28)

	e := New(Config{AppConfig: config.Defaults(), DB: db})
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if e.Fleet().Len() != 2 {
		t.Errorf("fleet len = %d, want 2", e.Fleet().Len())
	}
}

func TestApplyTelemetryPersists(t *testing.T) {
	e := testEngine(t)
	vid, _ := e.DB().CreateVehicle("VIN1", "PL1", "", "", "ACTIVE", nil, 100, 30)
	e.ReloadFleet()

	fuel := 73.5
	e.ApplyTelemetry(fleet.Delta{
		VehicleID: vid,
		Position:  &fleet.Position{Lat: 55.75, Lng: 37.61},
		FuelLevel: &fuel,
	})

	// Live view updated.
	vs, ok := e.Fleet().Get(vid)
	if !ok || vs.Position == nil || vs.Position.Lat != 55.75 {
		t.Errorf("live position = %+v, want lat 55.75", vs.Position)
	}

	// Row updated.
	v, _ := e.DB().GetVehicle(vid)
	if v.Lat == nil || *v.Lat != 55.75 {
		t.Errorf("stored lat = %v, want 55.75", v.Lat)
	}
	if v.FuelLevel != 73.5 {
		t.Errorf("stored fuel = %f, want 73.5", v.FuelLevel)
	}

	// Route history written.
	points, _ := e.DB().ListTrackingPoints(vid, 10)
	if len(points) != 1 {
		t.Errorf("tracking points = %d, want 1", len(points))
	}
}

func TestApplyTelemetryUnknownVehicle(t *testing.T) {
	e := testEngine(t)

	fuel := 50.0
	e.ApplyTelemetry(fleet.Delta{VehicleID: 999, FuelLevel: &fuel})

	points, _ := e.DB().ListTrackingPoints(999, 10)
	if len(points) != 0 {
		t.Error("unknown vehicle must not gain tracking points")
	}
}

func TestAssignmentUpdatesLiveView(t *testing.T) {
	e := testEngine(t)
	vid, _ := e.DB().CreateVehicle("VIN1", "PL1", "", "", "IDLE", nil, 100, 30)
	e.ReloadFleet()
	o := seedOrder(t, e)

	if err := e.OrderManager().Assign(o.ID, vid); err != nil {
		t.Fatalf("assign: %v", err)
	}
	vs, _ := e.Fleet().Get(vid)
	if vs.Status != fleet.StatusInProgress {
		t.Errorf("live status = %q, want IN_PROGRESS", vs.Status)
	}
}

func TestCompletionReleasesVehicle(t *testing.T) {
	e := testEngine(t)
	vid, _ := e.DB().CreateVehicle("VIN1", "PL1", "", "", "IDLE", nil, 100, 30)
	e.ReloadFleet()
	o := seedOrder(t, e)

	e.OrderManager().Assign(o.ID, vid)
	if err := e.OrderManager().UpdateStatus(o.ID, board.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	v, _ := e.DB().GetVehicle(vid)
	if v.Status != fleet.StatusIdle {
		t.Errorf("stored status = %q, want IDLE", v.Status)
	}
	vs, _ := e.Fleet().Get(vid)
	if vs.Status != fleet.StatusIdle {
		t.Errorf("live status = %q, want IDLE", vs.Status)
	}
}

func TestCompletionKeepsSOSVehicle(t *testing.T) {
	e := testEngine(t)
	vid, _ := e.DB().CreateVehicle("VIN1", "PL1", "", "", "IDLE", nil, 100, 30)
	e.ReloadFleet()
	o := seedOrder(t, e)
	e.OrderManager().Assign(o.ID, vid)

	// Driver hit SOS mid-route; completing the order must not clear it.
	e.DB().UpdateVehicleStatus(vid, fleet.StatusSOS)
	e.OrderManager().UpdateStatus(o.ID, board.StatusCompleted)

	v, _ := e.DB().GetVehicle(vid)
	if v.Status != fleet.StatusSOS {
		t.Errorf("status = %q, want SOS preserved", v.Status)
	}
}

func TestBoardWiredToManager(t *testing.T) {
	e := testEngine(t)
	vid, _ := e.DB().CreateVehicle("VIN1", "PL1", "", "", "IDLE", nil, 100, 30)
	e.ReloadFleet()
	o := seedOrder(t, e)

	res, err := e.Board().HandleDrop(board.Drop{
		OrderID:      o.ID,
		SourceColumn: board.StatusNew,
		DestColumn:   board.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != board.ActionAwaitingAssignment {
		t.Fatalf("action = %q, want awaiting_assignment", res.Action)
	}
	if len(res.Vehicles) != 1 || res.Vehicles[0].ID != vid {
		t.Errorf("vehicles = %+v, want the idle vehicle", res.Vehicles)
	}

	if _, err := e.Board().ConfirmAssignment(o.ID, vid); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, _ := e.DB().GetOrder(o.ID)
	if got.Status != board.StatusInProgress {
		t.Errorf("order status = %q, want IN_PROGRESS", got.Status)
	}
}
