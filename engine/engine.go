package engine

import (
	"log"
	"time"

	"fleetops/board"
	"fleetops/config"
	"fleetops/fleet"
	"fleetops/orders"
	"fleetops/pricing"
	"fleetops/store"
)

// LogFunc is the logging callback signature.
type LogFunc func(format string, args ...interface{})

// Engine centralizes all business logic and orchestrates subsystems.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	logFn      LogFunc
	debugFn    LogFunc

	fleetState *fleet.State
	orderMgr   *orders.Manager
	boardCtrl  *board.Controller
	pricer     *pricing.Calculator

	Events   *EventBus
	stopChan chan struct{}
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	LogFunc    LogFunc
	Debug      bool
}

// New creates a new Engine. Call Start() to initialize and wire subsystems.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = func(string, ...interface{}) {}
	}
	debugFn := LogFunc(func(string, ...interface{}) {})
	if c.Debug {
		debugFn = logFn
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		logFn:      logFn,
		debugFn:    debugFn,
		Events:     NewEventBus(),
		stopChan:   make(chan struct{}),
	}
}

// Start creates all managers, wires event handlers, and loads the live fleet
// view from the database.
func (e *Engine) Start() error {
	fleetEmit := &fleetEmitter{bus: e.Events}
	orderEmit := &orderEmitter{bus: e.Events}

	e.pricer = pricing.NewCalculator(e.cfg.Pricing)
	e.fleetState = fleet.NewState(fleetEmit)
	e.orderMgr = orders.NewManager(e.db, orderEmit, e.pricer, e.cfg.Web.FrontendURL)

	// The order manager already emits the authoritative board events, so the
	// controller itself carries no emitter.
	e.boardCtrl = board.NewController(e.orderMgr, e.orderMgr, e.orderMgr, nil)

	e.wireEventHandlers()

	if err := e.ReloadFleet(); err != nil {
		return err
	}

	if e.cfg.TrackingRetentionDays > 0 {
		go e.pruneLoop()
	}

	e.logFn("Engine started: node=%s vehicles=%d", e.cfg.NodeID, e.fleetState.Len())
	return nil
}

func (e *Engine) pruneLoop() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			n, err := e.db.PruneTrackingPoints(e.cfg.TrackingRetentionDays)
			if err != nil {
				log.Printf("prune tracking points: %v", err)
				continue
			}
			e.debugFn("pruned %d tracking points older than %d days", n, e.cfg.TrackingRetentionDays)
		}
	}
}

// Stop shuts down the engine.
func (e *Engine) Stop() {
	select {
	case <-e.stopChan:
	default:
		close(e.stopChan)
	}
	e.logFn("Engine stopped")
}

// ReloadFleet rebuilds the live fleet state from vehicle rows. Called at
// startup and after fleet CRUD so the map view matches the database.
func (e *Engine) ReloadFleet() error {
	vehicles, err := e.db.ListVehicles()
	if err != nil {
		return err
	}
	snapshot := make([]fleet.VehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		vs := fleet.VehicleState{
			ID:        v.ID,
			FuelLevel: v.FuelLevel,
			Speed:     v.CurrentSpeed,
			Status:    v.Status,
		}
		if v.Lat != nil && v.Lng != nil {
			vs.Position = &fleet.Position{Lat: *v.Lat, Lng: *v.Lng}
		}
		snapshot = append(snapshot, vs)
	}
	e.fleetState.LoadSnapshot(snapshot)
	return nil
}

// ApplyTelemetry merges a delta into the live view and, if the vehicle is
// known, persists the reported fields. A delta for an unknown vehicle changes
// nothing anywhere.
func (e *Engine) ApplyTelemetry(d fleet.Delta) {
	if !e.fleetState.ApplyDelta(d) {
		return
	}

	var lat, lng *float64
	if d.Position != nil {
		lat, lng = &d.Position.Lat, &d.Position.Lng
	}
	if err := e.db.UpdateVehicleTelemetry(d.VehicleID, lat, lng, d.FuelLevel, d.Speed, d.Status); err != nil {
		log.Printf("persist telemetry for vehicle %d: %v", d.VehicleID, err)
	}

	if d.Position != nil {
		p := &store.TrackingPoint{
			VehicleID: d.VehicleID,
			Lat:       d.Position.Lat,
			Lng:       d.Position.Lng,
			Speed:     d.Speed,
			FuelLevel: d.FuelLevel,
		}
		if err := e.db.InsertTrackingPoint(p); err != nil {
			log.Printf("insert tracking point for vehicle %d: %v", d.VehicleID, err)
		}
	}
}

// BrokerEmitter returns an emitter the messaging layer can use.
func (e *Engine) BrokerEmitter() *BrokerEmitter { return &BrokerEmitter{bus: e.Events} }

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.configPath }

// Fleet returns the live fleet state.
func (e *Engine) Fleet() *fleet.State { return e.fleetState }

// OrderManager returns the order manager.
func (e *Engine) OrderManager() *orders.Manager { return e.orderMgr }

// Board returns the kanban controller.
func (e *Engine) Board() *board.Controller { return e.boardCtrl }

// Pricer returns the tariff calculator.
func (e *Engine) Pricer() *pricing.Calculator { return e.pricer }
