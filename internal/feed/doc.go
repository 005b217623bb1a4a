// Package feed implements the streaming consumers built on the stream
// registry: the per-symbol tick cache (latest value wins), the incremental
// bar builder (finalized sequence plus optional current bar), and the agent
// event reducer (status, trades, logs, performance).
//
// Consumers never touch the physical socket; they interact only through
// registry subscriptions. Across a reconnect no continuity holds between
// old- and new-connection frames; callers patch gaps with REST hydration
// (SetInitial, SetAgents, SetTrades), not live-frame continuity.
package feed
