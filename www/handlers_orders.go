package www

import (
	"database/sql"
	"net/http"

	"fleetops/board"
	"fleetops/orders"
	"fleetops/store"

	"github.com/go-chi/chi/v5"
)

// canSeeOrder applies the ownership rule: clients only ever see their own
// orders, staff see everything.
func canSeeOrder(u *store.User, o *store.Order) bool {
	if u.Role != store.RoleClient {
		return true
	}
	return o.CustomerID == u.ID
}

func (h *Handlers) handleListOrders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	filter := store.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  atoiDefault(r.URL.Query().Get("limit"), 0),
	}
	if user.Role == store.RoleClient {
		filter.CustomerID = user.ID
	}

	list, err := h.engine.DB().ListOrders(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var in orders.CreateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.PickupAddress == "" || in.DeliveryAddress == "" {
		writeError(w, http.StatusBadRequest, "pickup and delivery addresses are required")
		return
	}

	// Clients always order for themselves.
	if user.Role == store.RoleClient {
		in.CustomerID = user.ID
		in.CustomerName = user.FullName
	}

	order, err := h.engine.OrderManager().Create(in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create order")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handlers) getOrderForUser(w http.ResponseWriter, r *http.Request) *store.Order {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return nil
	}
	order, err := h.engine.DB().GetOrder(id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "order not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, "get order")
		return nil
	}
	if !canSeeOrder(currentUser(r), order) {
		writeError(w, http.StatusNotFound, "order not found")
		return nil
	}
	return order
}

func (h *Handlers) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order := h.getOrderForUser(w, r)
	if order == nil {
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handlers) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	order := h.getOrderForUser(w, r)
	if order == nil {
		return
	}
	history, err := h.engine.DB().ListOrderHistory(order.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list order history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	order := h.getOrderForUser(w, r)
	if order == nil {
		return
	}
	var req cancelOrderRequest
	decodeBody(r, &req) // reason is optional

	if err := h.engine.OrderManager().Cancel(order.ID, req.Reason); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	updated, _ := h.engine.DB().GetOrder(order.ID)
	writeJSON(w, http.StatusOK, updated)
}

// handleBoardDrop receives a drag gesture from the kanban board. Gated moves
// answer with the assignable vehicle list instead of a committed change.
func (h *Handlers) handleBoardDrop(w http.ResponseWriter, r *http.Request) {
	var d board.Drop
	if err := decodeBody(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Board().HandleDrop(d)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type assignRequest struct {
	OrderID   int64 `json:"order_id"`
	VehicleID int64 `json:"vehicle_id"`
}

func (h *Handlers) handleAssignConfirm(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vehicles, err := h.engine.Board().ConfirmAssignment(req.OrderID, req.VehicleID)
	if err != nil {
		if err == board.ErrNotAwaiting {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		// Keep the prompt open client-side; the order is still awaiting.
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicles": vehicles})
}

func (h *Handlers) handleAssignCancel(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.Board().CancelAssignment(req.OrderID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type quoteRequest struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DeliveryLat float64 `json:"delivery_lat"`
	DeliveryLng float64 `json:"delivery_lng"`
	Weight      float64 `json:"weight"`
	Volume      float64 `json:"volume"`
}

// handleQuote prices a prospective route without creating anything.
func (h *Handlers) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := h.engine.Pricer().QuoteRoute(req.PickupLat, req.PickupLng,
		req.DeliveryLat, req.DeliveryLng, req.Weight, req.Volume)
	writeJSON(w, http.StatusOK, q)
}

// publicTrackingResponse is the unauthenticated customer view of an order:
// status, route endpoints and the assigned vehicle's live position. The UUID
// in the emailed link is the only credential.
type publicTrackingResponse struct {
	OrderUUID       string       `json:"order_uuid"`
	Status          string       `json:"status"`
	PickupAddress   string       `json:"pickup_address"`
	DeliveryAddress string       `json:"delivery_address"`
	VehiclePlate    string       `json:"vehicle_plate,omitempty"`
	DriverName      string       `json:"driver_name,omitempty"`
	Position        *trackingPos `json:"position,omitempty"`
	CompletedAt     *string      `json:"completed_at,omitempty"`
}

type trackingPos struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *Handlers) handlePublicTracking(w http.ResponseWriter, r *http.Request) {
	order, err := h.engine.DB().GetOrderByUUID(chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	resp := publicTrackingResponse{
		OrderUUID:       order.UUID,
		Status:          order.Status,
		PickupAddress:   order.PickupAddress,
		DeliveryAddress: order.DeliveryAddress,
		VehiclePlate:    order.VehiclePlate,
		DriverName:      order.DriverName,
		CompletedAt:     order.CompletedAt,
	}
	if order.VehicleID != nil && order.Status == board.StatusInProgress {
		if live, ok := h.engine.Fleet().Get(*order.VehicleID); ok && live.Position != nil {
			resp.Position = &trackingPos{Lat: live.Position.Lat, Lng: live.Position.Lng}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
