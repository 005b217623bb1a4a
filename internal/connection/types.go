package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// Status is the transport lifecycle state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
)

// TimestampedMessage wraps raw frame bytes with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a single WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., wss://stream.tradeterm.io/v1/ws)
	Token        string        // Bearer token; sent on the dial request
	DialTimeout  time.Duration // Handshake deadline; a half-open dial is aborted when it fires
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Inbound message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

// ManagerConfig configures the connection manager.
type ManagerConfig struct {
	URL               string        // WebSocket URL
	DialTimeout       time.Duration // Per-attempt connection timeout
	WriteTimeout      time.Duration // Write deadline for sends
	ReconnectBaseWait time.Duration // Backoff floor after an unexpected close
	ReconnectMaxWait  time.Duration // Backoff ceiling; delay doubles up to this
	BufferSize        int           // Inbound message channel buffer size
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		DialTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Second,
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  30 * time.Second,
		BufferSize:        1000,
	}
}
