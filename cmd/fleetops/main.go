package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetops/config"
	"fleetops/engine"
	"fleetops/messaging"
	"fleetops/simulator"
	"fleetops/store"
	"fleetops/www"
)

const version = "dev"

func main() {
	configPath := flag.String("config", "fleetops.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *port > 0 {
		cfg.Web.Port = *port
	}

	// Open database
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Create and start engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		LogFunc:    log.Printf,
		Debug:      *debug,
	})
	if err := eng.Start(); err != nil {
		log.Fatalf("start engine: %v", err)
	}
	defer eng.Stop()

	// Set up messaging
	msgClient := messaging.NewClient(cfg, eng.BrokerEmitter())
	defer msgClient.Close()
	if err := msgClient.Connect(); err != nil {
		log.Printf("messaging connect: %v (notifications will wait in the outbox)", err)
	} else {
		// Inbound telemetry from trackers
		sub := messaging.NewTelemetrySubscriber(msgClient, cfg, eng)
		if err := sub.Start(); err != nil {
			log.Printf("telemetry subscribe: %v", err)
		} else {
			log.Printf("telemetry listening on %s", cfg.Messaging.TelemetryTopic)
		}

		// Outbound order notifications
		drainer := messaging.NewOutboxDrainer(db, msgClient, &cfg.Messaging)
		drainer.Start()
		defer drainer.Stop()

		// Node liveness for the central monitor
		hb := messaging.NewHeartbeater(msgClient, cfg.NodeID, version, cfg.Messaging.StatusTopic, eng.Fleet())
		hb.Start()
		defer hb.Stop()

		// Built-in telemetry generator for demos and local development
		if cfg.Simulator.Enabled {
			sim := simulator.New(cfg, msgClient, eng.Fleet())
			sim.Start()
			defer sim.Stop()
		}
	}

	// Set up HTTP server
	router, stopWeb := www.NewRouter(eng)
	defer stopWeb()

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server := &http.Server{Addr: addr, Handler: router}

	// Start HTTP server
	go func() {
		log.Printf("FleetOps listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	// Stop SSE event hub first so long-lived connections close
	stopWeb()

	// Graceful HTTP shutdown with 10s deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}
}
