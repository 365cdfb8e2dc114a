package www

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fleetops/board"
	"fleetops/config"
	"fleetops/engine"
	"fleetops/fleet"
	"fleetops/store"
)

type testServer struct {
	srv    *httptest.Server
	client *http.Client
	db     *store.DB
	eng    *engine.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(engine.Config{AppConfig: config.Defaults(), DB: db})
	if err := eng.Start(); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(eng.Stop)

	router, stop := NewRouter(eng)
	t.Cleanup(stop)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &testServer{srv: srv, client: &http.Client{Jar: jar}, db: db, eng: eng}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (ts *testServer) loginAs(t *testing.T, role string) int64 {
	t.Helper()
	email := fmt.Sprintf("%s@test.local", role)
	hash, _ := hashPassword("password123")
	id, err := ts.db.CreateUser(email, hash, role+" user", "", role)
	if err != nil {
		t.Fatalf("create %s user: %v", role, err)
	}
	resp := ts.do(t, "POST", "/api/auth/login", map[string]string{
		"email": email, "password": "password123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s: status %d", role, resp.StatusCode)
	}
	return id
}

func decodeResp(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRegisterAndMe(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "POST", "/api/auth/register", map[string]string{
		"email": "client@test.local", "password": "password123", "full_name": "Test Client",
	})
	var created store.User
	decodeResp(t, resp, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	if created.Role != store.RoleClient {
		t.Errorf("self-registered role = %s, want CLIENT", created.Role)
	}

	resp = ts.do(t, "GET", "/api/auth/me", nil)
	var me store.User
	decodeResp(t, resp, &me)
	if me.ID != created.ID {
		t.Errorf("me returned user %d, want %d", me.ID, created.ID)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "GET", "/api/orders", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated list orders: status %d, want 401", resp.StatusCode)
	}
}

func TestClientCannotReachStaffSurfaces(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(t, store.RoleClient)

	for _, path := range []string{"/api/fleet", "/api/stats", "/api/vehicles"} {
		resp := ts.do(t, "GET", path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("GET %s as client: status %d, want 403", path, resp.StatusCode)
		}
	}
}

func TestClientSeesOnlyOwnOrders(t *testing.T) {
	ts := newTestServer(t)

	otherID, _ := ts.db.CreateUser("other@test.local", "x", "Other", "", store.RoleClient)
	other := &store.Order{UUID: "other-uuid", CustomerID: otherID, CustomerName: "Other", Status: board.StatusNew}
	if err := ts.db.CreateOrder(other); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	ts.loginAs(t, store.RoleClient)

	resp := ts.do(t, "POST", "/api/orders", map[string]interface{}{
		"pickup_address": "A", "delivery_address": "B", "weight": 10,
	})
	var mine store.Order
	decodeResp(t, resp, &mine)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status %d", resp.StatusCode)
	}

	resp = ts.do(t, "GET", "/api/orders", nil)
	var list []store.Order
	decodeResp(t, resp, &list)
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("client list = %d orders, want only own order %d", len(list), mine.ID)
	}

	resp = ts.do(t, "GET", fmt.Sprintf("/api/orders/%d", other.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign order: status %d, want 404", resp.StatusCode)
	}
}

func TestBoardDropGatedFlow(t *testing.T) {
	ts := newTestServer(t)
	adminID := ts.loginAs(t, store.RoleAdmin)

	vehID, err := ts.db.CreateVehicle("VIN1", "A001AA", "GAZ", "Gazelle", fleet.StatusIdle, nil, 90, 12)
	if err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	if err := ts.eng.ReloadFleet(); err != nil {
		t.Fatalf("reload fleet: %v", err)
	}
	order := &store.Order{UUID: "board-uuid", CustomerID: adminID, CustomerName: "C", Status: board.StatusNew}
	if err := ts.db.CreateOrder(order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	resp := ts.do(t, "POST", "/api/board/drop", board.Drop{
		OrderID: order.ID, SourceColumn: board.StatusNew, DestColumn: board.StatusInProgress,
	})
	var result board.DropResult
	decodeResp(t, resp, &result)
	if result.Action != board.ActionAwaitingAssignment {
		t.Fatalf("drop action = %s, want awaiting assignment", result.Action)
	}
	if len(result.Vehicles) != 1 || result.Vehicles[0].ID != vehID {
		t.Fatalf("offered vehicles = %+v, want the idle vehicle", result.Vehicles)
	}

	resp = ts.do(t, "POST", "/api/board/assign", map[string]int64{
		"order_id": order.ID, "vehicle_id": vehID,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm assignment: status %d", resp.StatusCode)
	}

	updated, err := ts.db.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if updated.Status != board.StatusInProgress || updated.VehicleID == nil || *updated.VehicleID != vehID {
		t.Errorf("order after assignment = %s vehicle %v", updated.Status, updated.VehicleID)
	}
}

func TestBoardAssignCancelLeavesOrderUntouched(t *testing.T) {
	ts := newTestServer(t)
	adminID := ts.loginAs(t, store.RoleAdmin)

	order := &store.Order{UUID: "cancel-uuid", CustomerID: adminID, CustomerName: "C", Status: board.StatusNew}
	if err := ts.db.CreateOrder(order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	resp := ts.do(t, "POST", "/api/board/drop", board.Drop{
		OrderID: order.ID, SourceColumn: board.StatusNew, DestColumn: board.StatusInProgress,
	})
	resp.Body.Close()

	resp = ts.do(t, "POST", "/api/board/assign/cancel", map[string]int64{"order_id": order.ID})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel assignment: status %d", resp.StatusCode)
	}

	updated, _ := ts.db.GetOrder(order.ID)
	if updated.Status != board.StatusNew || updated.VehicleID != nil {
		t.Errorf("order after cancel = %s vehicle %v, want untouched NEW", updated.Status, updated.VehicleID)
	}
}

func TestPublicTracking(t *testing.T) {
	ts := newTestServer(t)

	order := &store.Order{UUID: "track-uuid", CustomerID: 1, CustomerName: "C",
		PickupAddress: "A", DeliveryAddress: "B", Status: board.StatusNew}
	if err := ts.db.CreateOrder(order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	resp := ts.do(t, "GET", "/api/track/track-uuid", nil)
	var tr publicTrackingResponse
	decodeResp(t, resp, &tr)
	if tr.OrderUUID != "track-uuid" || tr.Status != board.StatusNew {
		t.Errorf("tracking = %+v", tr)
	}

	resp = ts.do(t, "GET", "/api/track/no-such-uuid", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown uuid: status %d, want 404", resp.StatusCode)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(t, store.RoleClient)

	resp := ts.do(t, "POST", "/api/quote", map[string]float64{
		"pickup_lat": 55.7558, "pickup_lng": 37.6173,
		"delivery_lat": 59.9311, "delivery_lng": 30.3609,
		"weight": 100,
	})
	var q struct {
		Price float64 `json:"price"`
	}
	decodeResp(t, resp, &q)
	if q.Price <= 0 {
		t.Errorf("quote price = %f, want positive", q.Price)
	}
}
