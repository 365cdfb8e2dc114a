package www

import (
	"database/sql"
	"net/http"

	"fleetops/fleet"
	"fleetops/store"
)

func (h *Handlers) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.DB().GetDashboardStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type createFuelLogRequest struct {
	Liters   float64 `json:"liters"`
	Cost     float64 `json:"cost"`
	Mileage  float64 `json:"mileage"`
	Location string  `json:"location"`
}

func (h *Handlers) handleCreateFuelLog(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	var req createFuelLogRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Liters <= 0 {
		writeError(w, http.StatusBadRequest, "liters must be positive")
		return
	}

	vehicle, err := h.engine.DB().GetVehicle(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	l := &store.FuelLog{
		VehicleID: id,
		Liters:    req.Liters,
		Cost:      req.Cost,
		Mileage:   req.Mileage,
		Location:  req.Location,
	}
	if err := h.engine.DB().InsertFuelLog(l); err != nil {
		writeError(w, http.StatusInternalServerError, "insert fuel log")
		return
	}
	// The odometer reading on a refuelling is the freshest one we have.
	if req.Mileage > vehicle.Mileage {
		if err := h.engine.DB().UpdateVehicleMileage(id, req.Mileage); err != nil {
			writeError(w, http.StatusInternalServerError, "update mileage")
			return
		}
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handlers) handleListFuelLogs(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	logs, err := h.engine.DB().ListFuelLogs(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list fuel logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handlers) handleFuelAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.engine.DB().GetFuelAnalytics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fuel analytics")
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (h *Handlers) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	vehicleID := int64(atoiDefault(r.URL.Query().Get("vehicle_id"), 0))
	records, err := h.engine.DB().ListMaintenanceRecords(vehicleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list maintenance records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type createMaintenanceRequest struct {
	VehicleID     int64   `json:"vehicle_id"`
	ScheduledDate string  `json:"scheduled_date"`
	WorkType      string  `json:"work_type"`
	Cost          float64 `json:"cost"`
}

// handleCreateMaintenance schedules a service visit and pulls the vehicle out
// of the assignable pool.
func (h *Handlers) handleCreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req createMaintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VehicleID == 0 || req.ScheduledDate == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id and scheduled_date are required")
		return
	}

	vehicle, err := h.engine.DB().GetVehicle(req.VehicleID)
	if err != nil {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if vehicle.Status == fleet.StatusInProgress {
		writeError(w, http.StatusConflict, "vehicle is on a delivery")
		return
	}

	rec := &store.MaintenanceRecord{
		VehicleID:     req.VehicleID,
		ScheduledDate: req.ScheduledDate,
		WorkType:      req.WorkType,
		Cost:          req.Cost,
		Status:        store.MaintenanceScheduled,
	}
	if err := h.engine.DB().CreateMaintenanceRecord(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "create maintenance record")
		return
	}

	status := fleet.StatusMaintenance
	h.engine.ApplyTelemetry(fleet.Delta{VehicleID: req.VehicleID, Status: &status})

	writeJSON(w, http.StatusCreated, rec)
}

type completeMaintenanceRequest struct {
	Cost float64 `json:"cost"`
}

func (h *Handlers) handleCompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	rec, err := h.engine.DB().GetMaintenanceRecord(id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "get maintenance record")
		return
	}
	if rec.Status != store.MaintenanceScheduled {
		writeError(w, http.StatusConflict, "record is not scheduled")
		return
	}

	var req completeMaintenanceRequest
	decodeBody(r, &req) // cost is optional, defaults to the scheduled estimate
	cost := rec.Cost
	if req.Cost > 0 {
		cost = req.Cost
	}

	if err := h.engine.DB().CompleteMaintenanceRecord(id, cost); err != nil {
		writeError(w, http.StatusInternalServerError, "complete maintenance record")
		return
	}
	h.releaseFromMaintenance(rec.VehicleID)

	updated, _ := h.engine.DB().GetMaintenanceRecord(id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) handleCancelMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	rec, err := h.engine.DB().GetMaintenanceRecord(id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "get maintenance record")
		return
	}
	if rec.Status != store.MaintenanceScheduled {
		writeError(w, http.StatusConflict, "record is not scheduled")
		return
	}

	if err := h.engine.DB().CancelMaintenanceRecord(id); err != nil {
		writeError(w, http.StatusInternalServerError, "cancel maintenance record")
		return
	}
	h.releaseFromMaintenance(rec.VehicleID)

	updated, _ := h.engine.DB().GetMaintenanceRecord(id)
	writeJSON(w, http.StatusOK, updated)
}

// releaseFromMaintenance returns a vehicle to the idle pool, but only if it is
// still flagged for maintenance; a status set by hand in the meantime wins.
func (h *Handlers) releaseFromMaintenance(vehicleID int64) {
	vehicle, err := h.engine.DB().GetVehicle(vehicleID)
	if err != nil || vehicle.Status != fleet.StatusMaintenance {
		return
	}
	status := fleet.StatusIdle
	h.engine.ApplyTelemetry(fleet.Delta{VehicleID: vehicleID, Status: &status})
}
