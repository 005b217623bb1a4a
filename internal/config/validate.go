package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.RestURL, "http://") && !strings.HasPrefix(c.API.RestURL, "https://") {
		return fmt.Errorf("api.rest_url must be an http(s) URL, got %q", c.API.RestURL)
	}
	if !strings.HasPrefix(c.Stream.URL, "ws://") && !strings.HasPrefix(c.Stream.URL, "wss://") {
		return fmt.Errorf("stream.url must be a ws(s) URL, got %q", c.Stream.URL)
	}

	if c.Stream.ReconnectBaseWait <= 0 {
		return errors.New("stream.reconnect_base_wait must be > 0")
	}
	if c.Stream.ReconnectMaxWait < c.Stream.ReconnectBaseWait {
		return fmt.Errorf("stream.reconnect_max_wait (%s) cannot be less than reconnect_base_wait (%s)",
			c.Stream.ReconnectMaxWait, c.Stream.ReconnectBaseWait)
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	for i, bw := range c.Watch.Bars {
		if bw.Symbol == "" {
			return fmt.Errorf("watch.bars[%d].symbol is required", i)
		}
		if bw.Timeframe == "" {
			return fmt.Errorf("watch.bars[%d].timeframe is required", i)
		}
	}
	if c.Watch.HistoryLimit < 0 {
		return errors.New("watch.history_limit must be >= 0")
	}

	if c.Status.Port < 1 || c.Status.Port > 65535 {
		return fmt.Errorf("status.port must be between 1 and 65535, got %d", c.Status.Port)
	}

	return nil
}
