// Package config loads and validates the terminal's YAML configuration.
// Values of the form ${VAR} are expanded from the environment before
// parsing, so secrets stay out of config files.
package config

import "time"

// Config is the top-level configuration for the terminal.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Stream StreamConfig `yaml:"stream"`
	Watch  WatchConfig  `yaml:"watch"`
	Status StatusConfig `yaml:"status"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig configures the WebSocket transport.
type StreamConfig struct {
	URL               string        `yaml:"url"`
	DialTimeout       time.Duration `yaml:"dial_timeout"`
	ReconnectBaseWait time.Duration `yaml:"reconnect_base_wait"`
	ReconnectMaxWait  time.Duration `yaml:"reconnect_max_wait"`
	BufferSize        int           `yaml:"buffer_size"`
}

// WatchConfig lists the feeds the terminal opens at startup.
type WatchConfig struct {
	Symbols      []string   `yaml:"symbols"` // tick feeds
	Bars         []BarWatch `yaml:"bars"`    // bar feeds
	Agents       []string   `yaml:"agents"`  // agent event feeds
	HistoryLimit int        `yaml:"history_limit"`
}

// BarWatch identifies one bar feed.
type BarWatch struct {
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
}

// StatusConfig configures the local status endpoint.
type StatusConfig struct {
	Port int `yaml:"port"`
}
