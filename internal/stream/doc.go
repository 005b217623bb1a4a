// Package stream implements the subscription registry and frame dispatcher.
//
// Many independent data feeds (per-symbol ticks, per-symbol/timeframe bars,
// per-agent trading events) share one physical connection. The registry:
//   - Maps channel names to handler sets
//   - Tracks the desired-channel set independently of socket state, so
//     resubscription after a reconnect is driven by intent
//   - Issues subscribe/unsubscribe frames exactly on the first-handler-joins
//     and last-handler-leaves transitions
//   - Routes inbound data frames to handlers and consumes protocol control
//     frames (ping/pong, acks, errors) internally
package stream
