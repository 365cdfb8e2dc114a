package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	NodeID       string `yaml:"node_id"`
	DatabasePath string `yaml:"database_path"`

	// TrackingRetentionDays bounds the tracking_points table; older samples
	// are pruned daily.
	TrackingRetentionDays int `yaml:"tracking_retention_days"`

	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	FrontendURL   string `yaml:"frontend_url"`
}

// MessagingConfig defines the messaging backend.
type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "mqtt" or "kafka"
	MQTT                MQTTConfig    `yaml:"mqtt"`
	Kafka               KafkaConfig   `yaml:"kafka"`
	TelemetryTopic      string        `yaml:"telemetry_topic"`
	OrdersTopic         string        `yaml:"orders_topic"`
	StatusTopic         string        `yaml:"status_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

// PricingConfig defines the delivery tariff.
type PricingConfig struct {
	BasePrice         float64 `yaml:"base_price"`
	RatePerKm         float64 `yaml:"rate_per_km"`
	RatePerKg         float64 `yaml:"rate_per_kg"`
	VolumetricDivisor float64 `yaml:"volumetric_divisor"`
}

// SimulatorConfig defines the built-in telemetry generator.
type SimulatorConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	FuelBurnRate float64       `yaml:"fuel_burn_rate"`
	JitterDeg    float64       `yaml:"jitter_deg"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		NodeID:                "fleetops-1",
		DatabasePath:          "fleetops.db",
		TrackingRetentionDays: 30,
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			FrontendURL: "http://localhost:5173",
		},
		Messaging: MessagingConfig{
			Backend:             "mqtt",
			TelemetryTopic:      "fleetops/telemetry",
			OrdersTopic:         "fleetops/orders",
			StatusTopic:         "fleetops/status",
			OutboxDrainInterval: 5 * time.Second,
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
		},
		Pricing: PricingConfig{
			BasePrice:         500,
			RatePerKm:         40,
			RatePerKg:         10,
			VolumetricDivisor: 5000,
		},
		Simulator: SimulatorConfig{
			Interval:     3 * time.Second,
			FuelBurnRate: 0.05,
			JitterDeg:    0.001,
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ClientID returns the configured MQTT client ID, or derives one from the node ID.
func (c *Config) ClientID() string {
	if c.Messaging.MQTT.ClientID != "" {
		return c.Messaging.MQTT.ClientID
	}
	return c.NodeID
}

// KafkaGroupID returns the consumer group ID, or derives one from the node ID.
func (c *Config) KafkaGroupID() string {
	if c.Messaging.Kafka.GroupID != "" {
		return c.Messaging.Kafka.GroupID
	}
	return c.NodeID
}
