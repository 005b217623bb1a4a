// Package auth supplies the bearer token used for REST and WebSocket access.
//
// Token lifecycle (login, refresh, storage) is owned by an external
// collaborator; this package only hands the current token to whoever needs
// one. An empty token means "cannot connect", never an error.
package auth

import "os"

// TokenProvider returns the current bearer token, or "" if none is available.
type TokenProvider interface {
	Token() string
}

// Static is a TokenProvider with a fixed token. Useful for tests and
// one-shot tools.
type Static string

// Token returns the fixed token.
func (s Static) Token() string { return string(s) }

// Env reads the token from an environment variable on every call, so an
// external process may rotate it without a restart.
type Env string

// Token returns the current value of the environment variable.
func (e Env) Token() string { return os.Getenv(string(e)) }

// DefaultTokenEnv is the environment variable the terminal reads by default.
const DefaultTokenEnv = "TRADETERM_TOKEN"
