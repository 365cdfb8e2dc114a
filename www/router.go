package www

import (
	"net/http"

	"fleetops/engine"
	"fleetops/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessionStore
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: NewEventHub(),
	}

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	staffOnly := h.requireRole(store.RoleAdmin, store.RoleDispatcher)
	staffOrDriver := h.requireRole(store.RoleAdmin, store.RoleDispatcher, store.RoleDriver)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{eng.AppConfig().Web.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// SSE push channel for the live map and board
	r.Get("/events", h.eventHub.HandleSSE)

	// Public: account entry points and the customer tracking portal
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
	r.Get("/api/track/{uuid}", h.handlePublicTracking)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/auth/me", h.handleMe)
		r.Post("/api/auth/logout", h.handleLogout)

		// Orders: clients see their own, staff see everything
		r.Get("/api/orders", h.handleListOrders)
		r.Post("/api/orders", h.handleCreateOrder)
		r.Get("/api/orders/{id}", h.handleGetOrder)
		r.Get("/api/orders/{id}/history", h.handleOrderHistory)
		r.Post("/api/orders/{id}/cancel", h.handleCancelOrder)
		r.Post("/api/quote", h.handleQuote)

		// Staff surfaces
		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Get("/api/stats", h.handleDashboardStats)
			r.Get("/api/fleet", h.handleFleetSnapshot)

			r.Post("/api/board/drop", h.handleBoardDrop)
			r.Post("/api/board/assign", h.handleAssignConfirm)
			r.Post("/api/board/assign/cancel", h.handleAssignCancel)

			r.Get("/api/vehicles", h.handleListVehicles)
			r.Post("/api/vehicles", h.handleCreateVehicle)
			r.Get("/api/vehicles/{id}", h.handleGetVehicle)
			r.Put("/api/vehicles/{id}/status", h.handleVehicleStatus)
			r.Put("/api/vehicles/{id}/driver", h.handleVehicleDriver)
			r.Delete("/api/vehicles/{id}", h.handleDeleteVehicle)
			r.Get("/api/vehicles/{id}/track", h.handleVehicleTrack)
			r.Get("/api/vehicles/{id}/fuel", h.handleListFuelLogs)

			r.Get("/api/drivers", h.handleListDrivers)
			r.Post("/api/drivers", h.handleCreateDriver)
			r.Delete("/api/drivers/{id}", h.handleDeleteDriver)

			r.Get("/api/fuel/analytics", h.handleFuelAnalytics)

			r.Get("/api/maintenance", h.handleListMaintenance)
			r.Post("/api/maintenance", h.handleCreateMaintenance)
			r.Post("/api/maintenance/{id}/complete", h.handleCompleteMaintenance)
			r.Post("/api/maintenance/{id}/cancel", h.handleCancelMaintenance)
		})

		// Drivers report telemetry and refuellings from the mobile view
		r.Group(func(r chi.Router) {
			r.Use(staffOrDriver)

			r.Post("/api/tracking", h.handleTelemetryIngest)
			r.Post("/api/vehicles/{id}/fuel", h.handleCreateFuelLog)
		})
	})

	return r, func() {
		h.eventHub.Stop()
	}
}
