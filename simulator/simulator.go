package simulator

import (
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"fleetops/config"
	"fleetops/fleet"
	"fleetops/messaging"
)

// Publisher sends a payload to a broker topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// FleetSource provides the vehicles to simulate.
type FleetSource interface {
	Snapshot() []fleet.VehicleState
}

// Simulator fabricates telemetry for vehicles that are out on the road and
// publishes it on the telemetry topic, exercising the same inbound path real
// trackers use. Parked and workshop vehicles are left alone.
type Simulator struct {
	cfg      *config.Config
	pub      Publisher
	source   FleetSource
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a simulator.
func New(cfg *config.Config, pub Publisher, source FleetSource) *Simulator {
	return &Simulator{
		cfg:    cfg,
		pub:    pub,
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins the tick loop.
func (s *Simulator) Start() {
	s.wg.Add(1)
	go s.loop()
	log.Printf("simulator: started, interval %s", s.interval())
}

// Stop halts the tick loop.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Simulator) interval() time.Duration {
	if s.cfg.Simulator.Interval > 0 {
		return s.cfg.Simulator.Interval
	}
	return 3 * time.Second
}

func (s *Simulator) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	for _, v := range s.source.Snapshot() {
		if !Moves(v.Status) {
			continue
		}
		payload, err := json.Marshal(s.nextUpdate(v))
		if err != nil {
			continue
		}
		if err := s.pub.Publish(s.cfg.Messaging.TelemetryTopic, payload); err != nil {
			log.Printf("simulator: publish update for vehicle %d: %v", v.ID, err)
		}
	}
}

// Moves reports whether a vehicle in this status should produce movement.
func Moves(status string) bool {
	return status != fleet.StatusMaintenance && status != fleet.StatusIdle
}

// nextUpdate produces one telemetry sample: a small random walk around the
// current position, steady fuel burn, and a plausible speed.
func (s *Simulator) nextUpdate(v fleet.VehicleState) messaging.VehicleUpdateMessage {
	jitter := s.cfg.Simulator.JitterDeg
	burn := s.cfg.Simulator.FuelBurnRate

	lat, lng := 55.7558, 37.6173
	if v.Position != nil {
		lat, lng = v.Position.Lat, v.Position.Lng
	}
	lat += (rand.Float64() - 0.5) * jitter
	lng += (rand.Float64() - 0.5) * jitter

	fuel := v.FuelLevel - burn
	if fuel < 0 {
		fuel = 0
	}
	speed := 30 + rand.Float64()*40

	id := v.ID
	return messaging.VehicleUpdateMessage{
		Type: messaging.MsgTypeVehicleUpdate,
		Data: messaging.VehicleUpdateData{
			ID:        &id,
			Position:  &messaging.PositionMessage{Lat: lat, Lng: lng},
			FuelLevel: &fuel,
			Speed:     &speed,
		},
	}
}
