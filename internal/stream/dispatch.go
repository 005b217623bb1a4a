package stream

import "encoding/json"

// Dispatch demultiplexes one inbound frame. Control frames are consumed here
// and never reach domain handlers; data frames are delivered to every handler
// registered for their channel.
func (r *Registry) Dispatch(data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		r.logger.Warn("discarding malformed frame", "error", err)
		return
	}
	f.Raw = data

	switch f.Type {
	case FramePing:
		// Liveness echo. The server closes the connection if the pong does
		// not arrive in time, which is handled by the normal close path.
		r.send(Frame{Type: FramePong})
		return

	case FrameSubscribed, FrameUnsubscribed:
		r.logger.Debug("subscription ack", "type", f.Type, "channel", f.Channel)
		return

	case FrameError:
		// The server is authoritative; it corrects any inconsistency on the
		// next successful resubscribe. Log and move on.
		r.logger.Warn("server error frame", "message", f.Message)
		return
	}

	if f.Channel == "" {
		r.logger.Debug("skipping frame without channel", "type", f.Type)
		return
	}

	// Snapshot the handler set under the lock, invoke outside it. A handler
	// may unsubscribe itself (or anything else) during its own invocation.
	r.mu.Lock()
	set := r.handlers[f.Channel]
	subs := make([]*subscription, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	r.mu.Unlock()

	for _, sub := range subs {
		r.invoke(sub, f)
	}
}

// invoke runs one handler, isolating panics so a faulty consumer cannot
// break delivery to the remaining handlers for the same frame.
func (r *Registry) invoke(sub *subscription, f Frame) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panicked",
				"channel", f.Channel,
				"panic", rec,
			)
		}
	}()

	sub.fn(f)
}
