package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL           = "https://api.tradeterm.io"
	DefaultStreamURL         = "wss://api.tradeterm.io/ws"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultDialTimeout       = 10 * time.Second
	DefaultReconnectBaseWait = 1 * time.Second
	DefaultReconnectMaxWait  = 30 * time.Second
	DefaultBufferSize        = 1000
	DefaultHistoryLimit      = 500
	DefaultStatusPort        = 8080
)

func (c *Config) applyDefaults() {
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Stream.URL == "" {
		c.Stream.URL = DefaultStreamURL
	}
	if c.Stream.DialTimeout == 0 {
		c.Stream.DialTimeout = DefaultDialTimeout
	}
	if c.Stream.ReconnectBaseWait == 0 {
		c.Stream.ReconnectBaseWait = DefaultReconnectBaseWait
	}
	if c.Stream.ReconnectMaxWait == 0 {
		c.Stream.ReconnectMaxWait = DefaultReconnectMaxWait
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}

	if c.Watch.HistoryLimit == 0 {
		c.Watch.HistoryLimit = DefaultHistoryLimit
	}

	if c.Status.Port == 0 {
		c.Status.Port = DefaultStatusPort
	}
}
