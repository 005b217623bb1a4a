package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tradeterm/internal/auth"
	"tradeterm/internal/stream"
)

// Manager owns at most one live connection to the stream endpoint and
// recovers from failures without caller intervention.
//
// Lifecycle: disconnected -> connecting -> connected ->
// (reconnecting -> connecting -> connected)* -> disconnected.
//
// Transport failures are never returned to callers; they are observable only
// through Status and the status listener. The one explicit way to stop
// retrying is Disconnect.
type Manager struct {
	cfg      ManagerConfig
	tokens   auth.TokenProvider
	registry *stream.Registry
	logger   *slog.Logger

	mu          sync.Mutex
	status      Status
	client      Client
	gen         uint64 // bumped per attempt and per disconnect; guards stale callbacks
	backoff     time.Duration
	intentional bool // caller-requested close; suppresses reconnection
	retryTimer  *time.Timer
	onStatus    func(Status)
}

// NewManager creates a connection manager and binds it to the registry as
// its outbound transport.
func NewManager(cfg ManagerConfig, registry *stream.Registry, tokens auth.TokenProvider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultManagerConfig()
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ReconnectBaseWait == 0 {
		cfg.ReconnectBaseWait = def.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait == 0 {
		cfg.ReconnectMaxWait = def.ReconnectMaxWait
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = def.BufferSize
	}

	m := &Manager{
		cfg:      cfg,
		tokens:   tokens,
		registry: registry,
		logger:   logger,
		status:   StatusDisconnected,
		backoff:  cfg.ReconnectBaseWait,
	}
	registry.Bind(m)
	return m
}

// OnStatusChange sets a listener invoked on every lifecycle transition.
// Set it before Connect; the listener must not block.
func (m *Manager) OnStatusChange(fn func(Status)) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connect opens the connection. No-op if already connected or if no auth
// token is available. A stale in-flight attempt is aborted and replaced.
// Dialing is asynchronous; failures feed the reconnect machinery.
func (m *Manager) Connect() {
	m.mu.Lock()

	if m.status == StatusConnected {
		m.mu.Unlock()
		return
	}

	token := m.tokens.Token()
	if token == "" {
		m.mu.Unlock()
		m.logger.Warn("no auth token available, not connecting")
		return
	}

	m.intentional = false
	m.stopRetryLocked()
	m.gen++
	gen := m.gen
	old := m.client
	cl := m.newClientLocked(token)
	m.client = cl
	m.status = StatusConnecting
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	m.notify(StatusConnecting)

	go m.dial(gen, cl)
}

// Disconnect closes the connection intentionally: all timers are cancelled,
// the registry's handlers and desired channels are cleared, and no
// reconnection follows.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.intentional = true
	m.gen++
	m.stopRetryLocked()
	cl := m.client
	m.client = nil
	m.status = StatusDisconnected
	m.mu.Unlock()

	if cl != nil {
		cl.Close()
	}
	m.registry.Reset()
	m.notify(StatusDisconnected)

	m.logger.Info("disconnected")
}

// Send marshals a frame and writes it if the socket is currently open.
// Sends while disconnected are silently dropped; subscribe frames are
// re-issued automatically via desired-state resend.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	cl := m.client
	connected := m.status == StatusConnected
	m.mu.Unlock()

	if !connected || cl == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := cl.Send(data); err != nil {
		if errors.Is(err, ErrNotConnected) {
			// Socket died under us; the read loop is already reconnecting.
			return nil
		}
		return err
	}
	return nil
}

// dial performs one connection attempt. The dial timeout forcibly aborts a
// half-open socket, which takes the same failure path as a network close.
func (m *Manager) dial(gen uint64, cl Client) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.DialTimeout)
	defer cancel()

	err := cl.Connect(ctx)

	m.mu.Lock()
	if gen != m.gen || m.intentional {
		m.mu.Unlock()
		cl.Close()
		return
	}

	if err != nil {
		m.logger.Warn("connect failed", "url", m.cfg.URL, "error", err)
		m.client = nil
		m.scheduleRetryLocked(gen)
		m.mu.Unlock()
		cl.Close()
		m.notify(StatusReconnecting)
		return
	}

	m.status = StatusConnected
	m.backoff = m.cfg.ReconnectBaseWait
	m.mu.Unlock()

	m.logger.Info("connected", "url", m.cfg.URL)
	m.notify(StatusConnected)

	// Desired-state resend: one subscribe frame per channel still wanted.
	m.registry.Resubscribe()

	go m.readLoop(gen, cl)
}

// readLoop feeds inbound frames to the dispatcher until the connection dies.
func (m *Manager) readLoop(gen uint64, cl Client) {
	for {
		select {
		case err := <-cl.Errors():
			m.logger.Warn("connection lost", "error", err)
			m.handleClose(gen, cl)
			return

		case msg, ok := <-cl.Messages():
			if !ok {
				m.handleClose(gen, cl)
				return
			}
			m.registry.Dispatch(msg.Data)
		}
	}
}

// handleClose reacts to an unexpected close by scheduling a reconnect.
// Intentional closes and stale generations are ignored.
func (m *Manager) handleClose(gen uint64, cl Client) {
	m.mu.Lock()
	if gen != m.gen || m.intentional {
		m.mu.Unlock()
		return
	}
	m.client = nil
	m.scheduleRetryLocked(gen)
	m.mu.Unlock()

	cl.Close()
	m.notify(StatusReconnecting)
}

// retry fires when the backoff timer elapses.
func (m *Manager) retry(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.intentional {
		m.mu.Unlock()
		return
	}

	token := m.tokens.Token()
	if token == "" {
		// Token revoked mid-outage; keep waiting for it to come back.
		m.logger.Warn("no auth token available, retry deferred")
		m.scheduleRetryLocked(gen)
		m.mu.Unlock()
		return
	}

	m.gen++
	next := m.gen
	old := m.client
	cl := m.newClientLocked(token)
	m.client = cl
	m.status = StatusConnecting
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	m.notify(StatusConnecting)

	go m.dial(next, cl)
}

// scheduleRetryLocked arms the reconnect timer with the current backoff
// delay and doubles the delay up to the ceiling. Caller holds m.mu.
func (m *Manager) scheduleRetryLocked(gen uint64) {
	delay := m.backoff
	m.backoff *= 2
	if m.backoff > m.cfg.ReconnectMaxWait {
		m.backoff = m.cfg.ReconnectMaxWait
	}

	m.status = StatusReconnecting
	m.retryTimer = time.AfterFunc(delay, func() { m.retry(gen) })

	m.logger.Info("reconnect scheduled", "delay", delay)
}

// stopRetryLocked cancels a pending reconnect timer. Caller holds m.mu.
func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// newClientLocked builds a client for one attempt. Caller holds m.mu.
func (m *Manager) newClientLocked(token string) Client {
	return NewClient(ClientConfig{
		URL:          m.cfg.URL,
		Token:        token,
		DialTimeout:  m.cfg.DialTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.BufferSize,
	}, m.logger)
}

// notify invokes the status listener outside the lock.
func (m *Manager) notify(s Status) {
	m.mu.Lock()
	fn := m.onStatus
	m.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
