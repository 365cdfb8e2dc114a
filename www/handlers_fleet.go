package www

import (
	"database/sql"
	"io"
	"net/http"

	"fleetops/board"
	"fleetops/fleet"
	"fleetops/messaging"
	"fleetops/store"
)

// handleFleetSnapshot serves the live in-memory fleet view for the map.
func (h *Handlers) handleFleetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Fleet().Snapshot())
}

func (h *Handlers) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	var (
		vehicles []store.Vehicle
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		vehicles, err = h.engine.DB().ListVehiclesByStatus(status)
	} else {
		vehicles, err = h.engine.DB().ListVehicles()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list vehicles")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handlers) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	v, err := h.engine.DB().GetVehicle(id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "get vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createVehicleRequest struct {
	VIN             string  `json:"vin"`
	PlateNumber     string  `json:"plate_number"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	DriverID        *int64  `json:"driver_id"`
	FuelLevel       float64 `json:"fuel_level"`
	NormConsumption float64 `json:"norm_consumption"`
}

func (h *Handlers) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlateNumber == "" {
		writeError(w, http.StatusBadRequest, "plate_number is required")
		return
	}

	id, err := h.engine.DB().CreateVehicle(req.VIN, req.PlateNumber, req.Make, req.Model,
		fleet.StatusIdle, req.DriverID, req.FuelLevel, req.NormConsumption)
	if err != nil {
		writeError(w, http.StatusConflict, "create vehicle")
		return
	}
	if err := h.engine.ReloadFleet(); err != nil {
		writeError(w, http.StatusInternalServerError, "reload fleet")
		return
	}

	v, _ := h.engine.DB().GetVehicle(id)
	writeJSON(w, http.StatusCreated, v)
}

type vehicleStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	var req vehicleStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !fleet.KnownStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown vehicle status")
		return
	}

	// Route the manual change through the delta path so the live map and the
	// database stay in step.
	h.engine.ApplyTelemetry(fleet.Delta{VehicleID: id, Status: &req.Status})

	v, _ := h.engine.DB().GetVehicle(id)
	writeJSON(w, http.StatusOK, v)
}

type vehicleDriverRequest struct {
	DriverID *int64 `json:"driver_id"`
}

func (h *Handlers) handleVehicleDriver(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	var req vehicleDriverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.DB().UpdateVehicleDriver(id, req.DriverID); err != nil {
		writeError(w, http.StatusInternalServerError, "update vehicle driver")
		return
	}
	v, _ := h.engine.DB().GetVehicle(id)
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	// A vehicle on a delivery cannot be removed out from under its order.
	active, err := h.engine.DB().ListOrders(store.OrderFilter{VehicleID: id, Status: board.StatusInProgress})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "check active orders")
		return
	}
	if len(active) > 0 {
		writeError(w, http.StatusConflict, "vehicle has an active order")
		return
	}

	if err := h.engine.DB().DeleteVehicle(id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete vehicle")
		return
	}
	if err := h.engine.ReloadFleet(); err != nil {
		writeError(w, http.StatusInternalServerError, "reload fleet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleVehicleTrack returns recent tracking points, oldest first, for a
// route polyline.
func (h *Handlers) handleVehicleTrack(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		limit = atoiDefault(q, 0)
	}
	points, err := h.engine.DB().ListTrackingPoints(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list tracking points")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// handleTelemetryIngest accepts a vehicle_update payload over HTTP, for
// drivers reporting from the mobile view instead of the broker.
func (h *Handlers) handleTelemetryIngest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}

	d, err := messaging.ParseVehicleUpdate(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if d == nil {
		writeError(w, http.StatusBadRequest, "expected a vehicle_update message")
		return
	}

	h.engine.ApplyTelemetry(*d)
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handlers) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.engine.DB().ListDrivers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list drivers")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

type createDriverRequest struct {
	UserID        *int64  `json:"user_id"`
	LicenseNumber string  `json:"license_number"`
	Rating        float64 `json:"rating"`
}

func (h *Handlers) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LicenseNumber == "" {
		writeError(w, http.StatusBadRequest, "license_number is required")
		return
	}
	if req.Rating == 0 {
		req.Rating = 5.0
	}

	id, err := h.engine.DB().CreateDriver(req.UserID, req.LicenseNumber, req.Rating)
	if err != nil {
		writeError(w, http.StatusConflict, "create driver")
		return
	}
	d, _ := h.engine.DB().GetDriver(id)
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	if err := h.engine.DB().DeleteDriver(id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete driver")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
