package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AnyInterface is the pseudo-interface selector that monitors every active interface.
const AnyInterface = "any"

// CaptureConfig holds the settings for the live capture handle.
type CaptureConfig struct {
	Interface   string `yaml:"interface"`
	Filter      string `yaml:"filter"`
	SnapshotLen int32  `yaml:"snapshot_len"`
	Promiscuous bool   `yaml:"promiscuous"`
	// QueueSize bounds the frame channel between the capture loop and the
	// aggregation loop. When the queue is full, new frames are dropped.
	QueueSize int `yaml:"queue_size"`
}

// MonitorConfig holds the aggregation and smoothing settings.
type MonitorConfig struct {
	Interval         string `yaml:"interval"`
	SmoothingWindow  int    `yaml:"smoothing_window"`
	HistoryRetention string `yaml:"history_retention"`
	PayloadOnly      bool   `yaml:"payload_only"`
	// Duration bounds the whole monitoring session; empty or "0s" means unbounded.
	Duration string `yaml:"duration"`
}

// NATSConfig holds the settings for the optional NATS sample exporter.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// HTTPConfig holds the settings for the optional read-only HTTP API.
type HTTPConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// ExportConfig groups the optional sample export surfaces.
type ExportConfig struct {
	NATS NATSConfig `yaml:"nats"`
	HTTP HTTPConfig `yaml:"http"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Monitor MonitorConfig `yaml:"monitor"`
	Export  ExportConfig  `yaml:"export"`
}

// Default returns a configuration with working defaults for every field a
// user may omit.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Interface:   AnyInterface,
			Filter:      "tcp or udp",
			SnapshotLen: 65535,
			Promiscuous: true,
			QueueSize:   1024,
		},
		Monitor: MonitorConfig{
			Interval:         "1s",
			SmoothingWindow:  3,
			HistoryRetention: "5m",
		},
		Export: ExportConfig{
			NATS: NATSConfig{
				URL:     "nats://127.0.0.1:4222",
				Subject: "tcpgraph.bandwidth",
			},
			HTTP: HTTPConfig{
				ListenAddr: ":8080",
			},
		},
	}
}

// LoadConfig reads the configuration from a YAML file, applies defaults for
// omitted fields, and validates the result.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Capture.Interface == "" {
		return fmt.Errorf("capture interface must not be empty")
	}
	if c.Capture.SnapshotLen <= 0 {
		return fmt.Errorf("capture snapshot_len must be positive")
	}
	if c.Capture.QueueSize <= 0 {
		return fmt.Errorf("capture queue_size must be positive")
	}
	if c.Monitor.SmoothingWindow <= 0 {
		return fmt.Errorf("monitor smoothing_window must be positive")
	}
	if interval, err := c.Interval(); err != nil {
		return fmt.Errorf("invalid monitor interval: %w", err)
	} else if interval <= 0 {
		return fmt.Errorf("monitor interval must be a positive duration")
	}
	if retention, err := c.HistoryRetention(); err != nil {
		return fmt.Errorf("invalid monitor history_retention: %w", err)
	} else if retention <= 0 {
		return fmt.Errorf("monitor history_retention must be a positive duration")
	}
	if _, err := c.Duration(); err != nil {
		return fmt.Errorf("invalid monitor duration: %w", err)
	}
	return nil
}

// Interval returns the parsed aggregation tick interval.
func (c *Config) Interval() (time.Duration, error) {
	return time.ParseDuration(c.Monitor.Interval)
}

// HistoryRetention returns the parsed history retention span.
func (c *Config) HistoryRetention() (time.Duration, error) {
	return time.ParseDuration(c.Monitor.HistoryRetention)
}

// Duration returns the parsed session duration bound; zero means unbounded.
func (c *Config) Duration() (time.Duration, error) {
	if c.Monitor.Duration == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Monitor.Duration)
}
