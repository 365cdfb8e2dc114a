package messaging

import (
	"encoding/json"
	"fmt"
	"log"

	"fleetops/config"
	"fleetops/fleet"
)

// TelemetryApplier merges a parsed delta into the live fleet view.
type TelemetryApplier interface {
	ApplyTelemetry(d fleet.Delta)
}

// TelemetrySubscriber listens on the telemetry topic and feeds vehicle
// deltas to the applier. Malformed and irrelevant messages are logged and
// absorbed here; nothing on this path ever reaches a caller as an error.
type TelemetrySubscriber struct {
	client  *Client
	cfg     *config.Config
	applier TelemetryApplier
}

// NewTelemetrySubscriber creates a telemetry subscriber.
func NewTelemetrySubscriber(client *Client, cfg *config.Config, applier TelemetryApplier) *TelemetrySubscriber {
	return &TelemetrySubscriber{
		client:  client,
		cfg:     cfg,
		applier: applier,
	}
}

// Start subscribes to the telemetry topic and begins processing updates.
func (s *TelemetrySubscriber) Start() error {
	return s.client.Subscribe(s.cfg.Messaging.TelemetryTopic, s.handleMessage)
}

func (s *TelemetrySubscriber) handleMessage(payload []byte) {
	d, err := ParseVehicleUpdate(payload)
	if err != nil {
		log.Printf("telemetry: %v", err)
		return
	}
	if d == nil {
		// Different message kind on a shared topic, not ours.
		return
	}
	s.applier.ApplyTelemetry(*d)
}

// ParseVehicleUpdate decodes a telemetry payload into a fleet delta. It
// returns (nil, nil) for messages of a different kind, and an error for
// payloads that claim to be vehicle updates but cannot be used.
func ParseVehicleUpdate(payload []byte) (*fleet.Delta, error) {
	var msg VehicleUpdateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal vehicle update: %w", err)
	}
	if msg.Type != MsgTypeVehicleUpdate {
		return nil, nil
	}
	if msg.Data.ID == nil {
		return nil, fmt.Errorf("vehicle update without id dropped")
	}
	if msg.Data.Status != nil && !fleet.KnownStatus(*msg.Data.Status) {
		return nil, fmt.Errorf("vehicle %d update with unknown status %q dropped", *msg.Data.ID, *msg.Data.Status)
	}

	d := &fleet.Delta{
		VehicleID: *msg.Data.ID,
		FuelLevel: msg.Data.FuelLevel,
		Speed:     msg.Data.Speed,
		Status:    msg.Data.Status,
	}
	if msg.Data.Position != nil {
		d.Position = &fleet.Position{Lat: msg.Data.Position.Lat, Lng: msg.Data.Position.Lng}
	}
	return d, nil
}
