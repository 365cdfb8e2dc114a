package board

import (
	"errors"
	"testing"
)

type mockStatusService struct {
	calls []struct {
		orderID int64
		status  string
	}
	err error
}

func (m *mockStatusService) UpdateStatus(orderID int64, newStatus string) error {
	m.calls = append(m.calls, struct {
		orderID int64
		status  string
	}{orderID, newStatus})
	return m.err
}

type mockAssigner struct {
	calls []struct {
		orderID   int64
		vehicleID int64
	}
	err error
}

func (m *mockAssigner) Assign(orderID, vehicleID int64) error {
	m.calls = append(m.calls, struct {
		orderID   int64
		vehicleID int64
	}{orderID, vehicleID})
	return m.err
}

type mockPool struct {
	vehicles  []VehicleOption
	listCalls int
	err       error
}

func (m *mockPool) ListAssignable() ([]VehicleOption, error) {
	m.listCalls++
	return m.vehicles, m.err
}

type mockBoardEmitter struct {
	statusChanges []string
	assigned      []int64
}

func (m *mockBoardEmitter) EmitOrderStatusChanged(orderID int64, oldStatus, newStatus string) {
	m.statusChanges = append(m.statusChanges, oldStatus+">"+newStatus)
}

func (m *mockBoardEmitter) EmitOrderAssigned(orderID, vehicleID int64) {
	m.assigned = append(m.assigned, vehicleID)
}

func newTestController() (*Controller, *mockStatusService, *mockAssigner, *mockPool, *mockBoardEmitter) {
	statuses := &mockStatusService{}
	assigner := &mockAssigner{}
	pool := &mockPool{vehicles: []VehicleOption{{ID: 7, PlateNumber: "AB 123 CD"}}}
	emitter := &mockBoardEmitter{}
	return NewController(statuses, assigner, pool, emitter), statuses, assigner, pool, emitter
}

func TestSamePositionDropIsNoOp(t *testing.T) {
	c, statuses, assigner, pool, _ := newTestController()

	res, err := c.HandleDrop(Drop{OrderID: 42, SourceColumn: StatusNew, DestColumn: StatusNew, SourceIndex: 2, DestIndex: 2})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionNone {
		t.Errorf("action = %q, want none", res.Action)
	}
	if len(statuses.calls) != 0 || len(assigner.calls) != 0 || pool.listCalls != 0 {
		t.Error("same-position drop must issue zero service calls")
	}
}

func TestUnknownColumnRejected(t *testing.T) {
	c, statuses, _, _, _ := newTestController()

	_, err := c.HandleDrop(Drop{OrderID: 1, SourceColumn: StatusNew, DestColumn: "ARCHIVED"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
	if len(statuses.calls) != 0 {
		t.Error("invalid drop must not reach the status service")
	}
}

func TestUngatedTransition(t *testing.T) {
	c, statuses, _, pool, emitter := newTestController()

	res, err := c.HandleDrop(Drop{OrderID: 10, SourceColumn: StatusInProgress, DestColumn: StatusCompleted, SourceIndex: 0, DestIndex: 0})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionStatusUpdated {
		t.Errorf("action = %q, want status_updated", res.Action)
	}
	if len(statuses.calls) != 1 {
		t.Fatalf("status calls = %d, want exactly 1", len(statuses.calls))
	}
	if statuses.calls[0].orderID != 10 || statuses.calls[0].status != StatusCompleted {
		t.Errorf("call = %+v, want (10, COMPLETED)", statuses.calls[0])
	}
	if pool.listCalls != 0 {
		t.Error("ungated move must not open the assignment prompt")
	}
	if len(emitter.statusChanges) != 1 || emitter.statusChanges[0] != "IN_PROGRESS>COMPLETED" {
		t.Errorf("status change events = %v", emitter.statusChanges)
	}
}

func TestUngatedTransitionFailureSurfaces(t *testing.T) {
	c, statuses, _, _, emitter := newTestController()
	statuses.err = errors.New("server unavailable")

	_, err := c.HandleDrop(Drop{OrderID: 10, SourceColumn: StatusInProgress, DestColumn: StatusCompleted, SourceIndex: 0, DestIndex: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(emitter.statusChanges) != 0 {
		t.Error("failed update must not emit a status change")
	}
}

func TestGatedTransitionOpensPrompt(t *testing.T) {
	c, statuses, assigner, pool, _ := newTestController()

	res, err := c.HandleDrop(Drop{OrderID: 42, SourceColumn: StatusNew, DestColumn: StatusInProgress, SourceIndex: 0, DestIndex: 0})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionAwaitingAssignment {
		t.Errorf("action = %q, want awaiting_assignment", res.Action)
	}
	if len(res.Vehicles) != 1 || res.Vehicles[0].ID != 7 {
		t.Errorf("vehicles = %+v, want the pool's one option", res.Vehicles)
	}
	if !c.Awaiting(42) {
		t.Error("order 42 should be awaiting assignment")
	}
	if len(statuses.calls) != 0 || len(assigner.calls) != 0 {
		t.Error("gated drop must not issue a status or assignment call yet")
	}
	if pool.listCalls != 1 {
		t.Errorf("pool queried %d times, want 1", pool.listCalls)
	}
}

func TestCancelAssignmentRevertsCleanly(t *testing.T) {
	c, statuses, assigner, _, emitter := newTestController()

	c.HandleDrop(Drop{OrderID: 42, SourceColumn: StatusNew, DestColumn: StatusInProgress})
	if err := c.CancelAssignment(42); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if c.Awaiting(42) {
		t.Error("order 42 should no longer be awaiting")
	}
	if len(statuses.calls) != 0 || len(assigner.calls) != 0 {
		t.Error("cancelled assignment must issue zero network calls")
	}
	if len(emitter.statusChanges) != 0 || len(emitter.assigned) != 0 {
		t.Error("cancelled assignment must emit nothing")
	}
}

func TestCancelWithoutPendingAssignment(t *testing.T) {
	c, _, _, _, _ := newTestController()

	if err := c.CancelAssignment(42); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("err = %v, want ErrNotAwaiting", err)
	}
}

func TestConfirmAssignmentCommits(t *testing.T) {
	c, _, assigner, pool, emitter := newTestController()

	c.HandleDrop(Drop{OrderID: 42, SourceColumn: StatusNew, DestColumn: StatusInProgress})

	vehicles, err := c.ConfirmAssignment(42, 7)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(assigner.calls) != 1 || assigner.calls[0].orderID != 42 || assigner.calls[0].vehicleID != 7 {
		t.Errorf("assign calls = %+v, want (42, 7)", assigner.calls)
	}
	if c.Awaiting(42) {
		t.Error("order should leave the awaiting set on success")
	}
	if len(emitter.assigned) != 1 || emitter.assigned[0] != 7 {
		t.Errorf("assigned events = %v, want [7]", emitter.assigned)
	}
	if len(emitter.statusChanges) != 1 || emitter.statusChanges[0] != "NEW>IN_PROGRESS" {
		t.Errorf("status change events = %v", emitter.statusChanges)
	}
	// Pool queried once for the prompt and once after the commit.
	if pool.listCalls != 2 {
		t.Errorf("pool queried %d times, want 2", pool.listCalls)
	}
	if len(vehicles) != 1 {
		t.Errorf("refreshed vehicles = %d, want 1", len(vehicles))
	}
}

func TestConfirmAssignmentFailureKeepsAwaiting(t *testing.T) {
	c, _, assigner, _, emitter := newTestController()
	assigner.err = errors.New("vehicle already taken")

	c.HandleDrop(Drop{OrderID: 42, SourceColumn: StatusNew, DestColumn: StatusInProgress})

	if _, err := c.ConfirmAssignment(42, 7); err == nil {
		t.Fatal("expected error")
	}
	if !c.Awaiting(42) {
		t.Error("failed assignment must keep the prompt open")
	}
	if len(emitter.assigned) != 0 || len(emitter.statusChanges) != 0 {
		t.Error("failed assignment must emit nothing")
	}

	// Retry after the service recovers.
	assigner.err = nil
	if _, err := c.ConfirmAssignment(42, 7); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.Awaiting(42) {
		t.Error("retry success should clear the awaiting set")
	}
}

func TestConfirmWithoutPendingAssignment(t *testing.T) {
	c, _, assigner, _, _ := newTestController()

	if _, err := c.ConfirmAssignment(42, 7); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("err = %v, want ErrNotAwaiting", err)
	}
	if len(assigner.calls) != 0 {
		t.Error("no assign call should be made without a pending drop")
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusCancelled, true},
		{StatusNew, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusCompleted, StatusInProgress, false},
		{StatusCancelled, StatusNew, false},
	}
	for _, tt := range tests {
		if got := IsValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
