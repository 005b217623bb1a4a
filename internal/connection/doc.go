// Package connection implements the transport socket.
//
// The Manager:
//   - Owns exactly one physical WebSocket connection, authenticated by a
//     bearer token
//   - Reconnects on unexpected closure with ceiling-capped exponential
//     backoff, indefinitely
//   - Re-sends the desired-channel set on every successful (re)connect
//   - Feeds inbound frames to the stream dispatcher
//
// Disconnect is the only way to stop the retry loop; network failures are
// surfaced through connection status alone.
package connection
