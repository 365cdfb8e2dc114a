package orders

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fleetops/board"
	"fleetops/fleet"
	"fleetops/pricing"
	"fleetops/store"

	"github.com/google/uuid"
)

// Manager handles the order lifecycle. It implements the board's
// OrderStatusService, AssignmentService and VehiclePool contracts, so the
// kanban controller talks to it without knowing about the database.
type Manager struct {
	db          *store.DB
	emitter     EventEmitter
	pricer      *pricing.Calculator
	frontendURL string
}

// NewManager creates an order manager.
func NewManager(db *store.DB, emitter EventEmitter, pricer *pricing.Calculator, frontendURL string) *Manager {
	return &Manager{
		db:          db,
		emitter:     emitter,
		pricer:      pricer,
		frontendURL: frontendURL,
	}
}

// CreateInput is the caller-supplied part of a new order.
type CreateInput struct {
	CustomerID      int64    `json:"customer_id"`
	CustomerName    string   `json:"customer_name"`
	PickupAddress   string   `json:"pickup_address"`
	DeliveryAddress string   `json:"delivery_address"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DeliveryLat     *float64 `json:"delivery_lat"`
	DeliveryLng     *float64 `json:"delivery_lng"`
	Weight          float64  `json:"weight"`
	Volume          float64  `json:"volume"`
	Dimensions      string   `json:"dimensions"`
	DeliveryDate    *string  `json:"delivery_date"`
}

// Create prices and persists a new order in status NEW. Distance and price
// are computed when both route endpoints carry coordinates; otherwise the
// order is stored unpriced and a dispatcher sets the price later.
func (m *Manager) Create(in CreateInput) (*store.Order, error) {
	o := &store.Order{
		UUID:            uuid.New().String(),
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		PickupAddress:   in.PickupAddress,
		DeliveryAddress: in.DeliveryAddress,
		PickupLat:       in.PickupLat,
		PickupLng:       in.PickupLng,
		DeliveryLat:     in.DeliveryLat,
		DeliveryLng:     in.DeliveryLng,
		Status:          board.StatusNew,
		Weight:          in.Weight,
		Volume:          in.Volume,
		Dimensions:      in.Dimensions,
		DeliveryDate:    in.DeliveryDate,
	}

	if in.PickupLat != nil && in.PickupLng != nil && in.DeliveryLat != nil && in.DeliveryLng != nil {
		q := m.pricer.QuoteRoute(*in.PickupLat, *in.PickupLng, *in.DeliveryLat, *in.DeliveryLng, in.Weight, in.Volume)
		o.DistanceKm = q.DistanceKm
		o.Price = q.Price
	}

	if err := m.db.CreateOrder(o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := m.db.InsertOrderHistory(o.ID, "", board.StatusNew, "order created"); err != nil {
		log.Printf("insert order history: %v", err)
	}

	m.emitter.EmitOrderCreated(o.ID, o.UUID)
	return m.db.GetOrder(o.ID)
}

// UpdateStatus applies an ungated status transition with validation.
func (m *Manager) UpdateStatus(orderID int64, newStatus string) error {
	order, err := m.db.GetOrder(orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	// Same-status updates come from same-column reorders on the board;
	// nothing to persist.
	if order.Status == newStatus {
		return nil
	}
	if !board.IsValidTransition(order.Status, newStatus) {
		return fmt.Errorf("invalid transition from %s to %s", order.Status, newStatus)
	}
	if order.Status == board.StatusNew && newStatus == board.StatusInProgress {
		return fmt.Errorf("order %d cannot start without a vehicle; use Assign", orderID)
	}

	oldStatus := order.Status
	if newStatus == board.StatusCompleted {
		err = m.db.MarkOrderCompleted(orderID)
	} else {
		err = m.db.UpdateOrderStatus(orderID, newStatus)
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if err := m.db.InsertOrderHistory(orderID, oldStatus, newStatus, ""); err != nil {
		log.Printf("insert order history: %v", err)
	}

	m.enqueueStatusMessage(order, newStatus)
	m.emitter.EmitOrderStatusChanged(orderID, oldStatus, newStatus)

	if board.IsTerminal(newStatus) {
		m.emitter.EmitOrderCompleted(orderID, order.UUID)
	}
	return nil
}

// Assign attaches a vehicle to a NEW order and starts it. Both rows change in
// one transaction; a tracking-link notification for the customer goes through
// the outbox.
func (m *Manager) Assign(orderID, vehicleID int64) error {
	order, err := m.db.GetOrder(orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order.Status != board.StatusNew {
		return fmt.Errorf("order %d is %s, only NEW orders can be assigned", orderID, order.Status)
	}

	vehicle, err := m.db.GetVehicle(vehicleID)
	if err != nil {
		return fmt.Errorf("get vehicle: %w", err)
	}
	switch vehicle.Status {
	case fleet.StatusMaintenance, fleet.StatusSOS:
		return fmt.Errorf("vehicle %s is unavailable (%s)", vehicle.PlateNumber, vehicle.Status)
	case fleet.StatusInProgress:
		return fmt.Errorf("vehicle %s is already on a delivery", vehicle.PlateNumber)
	}

	if err := m.db.AssignOrderVehicle(orderID, vehicleID); err != nil {
		return fmt.Errorf("assign vehicle: %w", err)
	}
	if err := m.db.InsertOrderHistory(orderID, board.StatusNew, board.StatusInProgress,
		fmt.Sprintf("assigned vehicle %s", vehicle.PlateNumber)); err != nil {
		log.Printf("insert order history: %v", err)
	}

	msg := AssignedMessage{
		OrderUUID:    order.UUID,
		CustomerName: order.CustomerName,
		PlateNumber:  vehicle.PlateNumber,
		DriverName:   vehicle.DriverName,
		TrackingURL:  fmt.Sprintf("%s/track/%s", m.frontendURL, order.UUID),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(msg)
	if _, err := m.db.EnqueueOutbox("orders", payload, "order_assigned"); err != nil {
		log.Printf("enqueue assignment notice %s: %v", order.UUID, err)
	}

	m.emitter.EmitOrderAssigned(orderID, vehicleID)
	m.emitter.EmitOrderStatusChanged(orderID, board.StatusNew, board.StatusInProgress)
	return nil
}

// ListAssignable returns vehicles that may be offered in the assignment
// prompt. Only idle vehicles qualify.
func (m *Manager) ListAssignable() ([]board.VehicleOption, error) {
	vehicles, err := m.db.ListVehiclesByStatus(fleet.StatusIdle)
	if err != nil {
		return nil, fmt.Errorf("list idle vehicles: %w", err)
	}
	out := make([]board.VehicleOption, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, board.VehicleOption{
			ID:          v.ID,
			PlateNumber: v.PlateNumber,
			DriverName:  v.DriverName,
		})
	}
	return out, nil
}

// Cancel aborts a non-terminal order.
func (m *Manager) Cancel(orderID int64, reason string) error {
	order, err := m.db.GetOrder(orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if board.IsTerminal(order.Status) {
		return fmt.Errorf("order is already in terminal state: %s", order.Status)
	}

	oldStatus := order.Status
	if err := m.db.UpdateOrderStatus(orderID, board.StatusCancelled); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if err := m.db.InsertOrderHistory(orderID, oldStatus, board.StatusCancelled, reason); err != nil {
		log.Printf("insert order history: %v", err)
	}

	m.enqueueStatusMessage(order, board.StatusCancelled)
	m.emitter.EmitOrderStatusChanged(orderID, oldStatus, board.StatusCancelled)
	m.emitter.EmitOrderCompleted(orderID, order.UUID)
	return nil
}

func (m *Manager) enqueueStatusMessage(order *store.Order, newStatus string) {
	msg := StatusMessage{
		OrderUUID: order.UUID,
		OldStatus: order.Status,
		NewStatus: newStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(msg)
	if _, err := m.db.EnqueueOutbox("orders", payload, "order_status"); err != nil {
		log.Printf("enqueue status message %s: %v", order.UUID, err)
	}
}

// StatusMessage is the outbound order status JSON.
type StatusMessage struct {
	OrderUUID string `json:"order_uuid"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Timestamp string `json:"timestamp"`
}

// AssignedMessage is the outbound assignment notice JSON, carrying the
// customer-facing tracking link.
type AssignedMessage struct {
	OrderUUID    string `json:"order_uuid"`
	CustomerName string `json:"customer_name"`
	PlateNumber  string `json:"plate_number"`
	DriverName   string `json:"driver_name,omitempty"`
	TrackingURL  string `json:"tracking_url"`
	Timestamp    string `json:"timestamp"`
}
