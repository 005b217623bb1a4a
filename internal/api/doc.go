// Package api provides the REST client used for initial state hydration:
// historical bars, the agent list, and per-agent trade history. The live
// stream picks up from there; after a reconnect, callers re-hydrate over
// REST rather than relying on live-frame continuity.
package api
