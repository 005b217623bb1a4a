package stream

import (
	"log/slog"
	"sync"
)

// Registry maps channel names to handler sets and tracks the desired-channel
// set: the channels the client intends to be subscribed to regardless of the
// current connection state. Wire traffic is minimal by construction - a
// subscribe frame goes out only when a channel gains its first handler, an
// unsubscribe frame only when it loses its last one.
//
// One mutex guards both maps. The desired set and the handler sets must move
// together; locking them separately would let a reconnect observe a channel
// with handlers but no desired entry.
type Registry struct {
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string]map[*subscription]struct{}
	desired  map[string]struct{}
	sender   Sender
}

// subscription identifies one registered handler. Identity is the pointer;
// two subscriptions to the same channel with the same function are distinct.
type subscription struct {
	channel string
	fn      Handler
}

// NewRegistry creates an empty registry. Bind must be called before any
// subscribe traffic can reach the wire.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:   logger,
		handlers: make(map[string]map[*subscription]struct{}),
		desired:  make(map[string]struct{}),
	}
}

// Bind attaches the outbound transport. Called once during wiring; the
// registry and the connection manager are constructed mutually.
func (r *Registry) Bind(s Sender) {
	r.mu.Lock()
	r.sender = s
	r.mu.Unlock()
}

// Subscribe registers a handler for a channel and returns an idempotent
// unsubscribe function. The subscribe frame is sent only if this is the
// channel's first handler; if the socket is down the frame is dropped and
// the channel is picked up by Resubscribe on the next connect.
func (r *Registry) Subscribe(channel string, fn Handler) func() {
	sub := &subscription{channel: channel, fn: fn}

	r.mu.Lock()
	set, ok := r.handlers[channel]
	if !ok {
		set = make(map[*subscription]struct{})
		r.handlers[channel] = set
	}
	first := len(set) == 0
	set[sub] = struct{}{}
	if first {
		r.desired[channel] = struct{}{}
	}
	r.mu.Unlock()

	if first {
		r.send(Frame{Type: FrameSubscribe, Channel: channel})
	}

	return func() { r.remove(sub) }
}

// remove deletes one subscription. Safe to call more than once and safe to
// call from inside the handler's own invocation.
func (r *Registry) remove(sub *subscription) {
	r.mu.Lock()
	set, ok := r.handlers[sub.channel]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, ok := set[sub]; !ok {
		r.mu.Unlock()
		return
	}
	delete(set, sub)
	last := len(set) == 0
	if last {
		delete(r.handlers, sub.channel)
		delete(r.desired, sub.channel)
	}
	r.mu.Unlock()

	if last {
		r.send(Frame{Type: FrameUnsubscribe, Channel: sub.channel})
	}
}

// UnsubscribeChannel force-clears all handlers and desired state for a
// channel, regardless of remaining listeners. Used for en-masse teardown of
// a detail view's consumer set.
func (r *Registry) UnsubscribeChannel(channel string) {
	r.mu.Lock()
	_, had := r.handlers[channel]
	delete(r.handlers, channel)
	delete(r.desired, channel)
	r.mu.Unlock()

	if had {
		r.send(Frame{Type: FrameUnsubscribe, Channel: channel})
	}
}

// Desired returns a snapshot of the desired-channel set.
func (r *Registry) Desired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := make([]string, 0, len(r.desired))
	for ch := range r.desired {
		channels = append(channels, ch)
	}
	return channels
}

// Resubscribe sends one subscribe frame per desired channel. The connection
// manager calls this on every successful connect; the server treats each
// frame as idempotent, and order across channels is unspecified.
func (r *Registry) Resubscribe() {
	for _, ch := range r.Desired() {
		r.send(Frame{Type: FrameSubscribe, Channel: ch})
	}
}

// Reset discards all handlers and desired state without sending unsubscribe
// frames. Called on intentional disconnect, when the socket is going away.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.handlers = make(map[string]map[*subscription]struct{})
	r.desired = make(map[string]struct{})
	r.mu.Unlock()
}

// HandlerCount returns the number of handlers registered for a channel.
func (r *Registry) HandlerCount(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers[channel])
}

// send writes a frame through the bound sender. Frames sent while unbound or
// disconnected are dropped; desired-state resend covers them.
func (r *Registry) send(f Frame) {
	r.mu.Lock()
	s := r.sender
	r.mu.Unlock()

	if s == nil {
		return
	}
	if err := s.Send(f); err != nil {
		r.logger.Warn("failed to send control frame",
			"type", f.Type,
			"channel", f.Channel,
			"error", err,
		)
	}
}
