// Package model defines shared data types used across the terminal client.
//
// Conventions:
//   - Prices and volumes: float64, as quoted by the platform
//   - Timestamps: int64 seconds since Unix epoch
//   - IDs: strings assigned by the server
package model
