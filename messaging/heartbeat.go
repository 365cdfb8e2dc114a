package messaging

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// FleetCounter reports how many vehicles the node currently tracks.
type FleetCounter interface {
	Len() int
}

// Heartbeater publishes a node status message periodically so a central
// monitor can tell which tracking nodes are alive.
type Heartbeater struct {
	client    *Client
	nodeID    string
	version   string
	topic     string
	fleet     FleetCounter
	interval  time.Duration
	startTime time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHeartbeater creates a heartbeater for the given node identity.
func NewHeartbeater(client *Client, nodeID, version, statusTopic string, fleet FleetCounter) *Heartbeater {
	return &Heartbeater{
		client:   client,
		nodeID:   nodeID,
		version:  version,
		topic:    statusTopic,
		fleet:    fleet,
		interval: 60 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start sends an initial status and begins the heartbeat loop.
func (h *Heartbeater) Start() {
	h.startTime = time.Now()
	h.send()
	go h.loop()
}

// Stop halts the heartbeat loop.
func (h *Heartbeater) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *Heartbeater) send() {
	hostname, _ := os.Hostname()
	msg := NodeStatusMessage{
		NodeID:    h.nodeID,
		Hostname:  hostname,
		Version:   h.version,
		Uptime:    int64(time.Since(h.startTime).Seconds()),
		Vehicles:  h.fleet.Len(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("heartbeater: marshal status: %v", err)
		return
	}
	if err := h.client.Publish(h.topic, payload); err != nil {
		log.Printf("heartbeater: send status: %v", err)
	}
}

func (h *Heartbeater) loop() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.send()
		}
	}
}
