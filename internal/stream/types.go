package stream

import (
	"encoding/json"
	"strings"
)

// Frame control types.
const (
	FrameSubscribe    = "subscribe"
	FrameUnsubscribe  = "unsubscribe"
	FramePing         = "ping"
	FramePong         = "pong"
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FrameError        = "error"
)

// Frame data types carried on bar channels.
const (
	FrameBar       = "bar"
	FrameBarUpdate = "bar_update"
)

// Frame is the wire envelope shared by all messages on the stream.
//
// Control frames use Type only (plus Channel for acks and Message for
// errors). Data frames carry a Channel and a payload: market data in Data,
// agent events in Event plus event-specific fields that stay in Raw.
type Frame struct {
	Type    string          `json:"type,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Event   string          `json:"event,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Raw is the complete frame as received, for consumers that need
	// event-specific fields beyond the envelope. Never set on outbound frames.
	Raw []byte `json:"-"`
}

// Handler consumes data frames delivered for a channel.
type Handler func(Frame)

// Sender is the outbound side of the transport. Implementations drop the
// frame silently when the socket is down; the registry re-sends desired
// subscriptions on the next successful connect.
type Sender interface {
	Send(v any) error
}

// Channel name construction. Channels have no lifecycle object; their
// existence is implicit in the registry maps.

// TickChannel returns the channel name for per-symbol tick updates.
func TickChannel(symbol string) string {
	return "ticks:" + symbol
}

// BarChannel returns the channel name for per-symbol, per-timeframe bars.
func BarChannel(symbol, timeframe string) string {
	return "bars:" + symbol + ":" + timeframe
}

// AgentChannel returns the channel name for an agent's trading events.
func AgentChannel(agentID string) string {
	return "agent:" + agentID
}

// AgentID extracts the agent ID from an agent channel name.
// Returns "" if the channel is not an agent channel.
func AgentID(channel string) string {
	id, ok := strings.CutPrefix(channel, "agent:")
	if !ok {
		return ""
	}
	return id
}
