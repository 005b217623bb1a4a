package feed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"tradeterm/internal/model"
	"tradeterm/internal/stream"
)

// maxLogEntries bounds the selected agent's log list. Logs are a ring, not a
// durable record; the oldest entries are evicted silently.
const maxLogEntries = 200

// Agents folds live trading events into a normalized in-memory view: the
// compact agent list, the selected agent's trades, logs, and performance
// snapshot, plus the global pending-trades list. The server holds the
// canonical copies; this layer only applies incremental updates on top of
// REST hydration.
type Agents struct {
	registry *stream.Registry
	logger   *slog.Logger

	mu          sync.RWMutex
	agents      map[string]*model.Agent
	order       []string // agent list order, as hydrated
	selected    string
	trades      []model.Trade // selected agent's trades, newest first
	pending     []model.Trade // pending trades across all agents, newest first
	logs        []model.LogEntry
	performance model.Performance
	hasPerf     bool
}

// NewAgents creates the agent event reducer.
func NewAgents(registry *stream.Registry, logger *slog.Logger) *Agents {
	if logger == nil {
		logger = slog.Default()
	}

	return &Agents{
		registry: registry,
		logger:   logger,
		agents:   make(map[string]*model.Agent),
	}
}

// Subscribe opens the event feed for one agent and returns an idempotent
// unsubscribe function.
func (a *Agents) Subscribe(agentID string) func() {
	return a.registry.Subscribe(stream.AgentChannel(agentID), func(f stream.Frame) {
		a.apply(agentID, f)
	})
}

// -----------------------------------------------------------------------------
// Hydration (REST collaborator seeds state; live events update it)
// -----------------------------------------------------------------------------

// SetAgents replaces the agent list.
func (a *Agents) SetAgents(agents []model.Agent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.agents = make(map[string]*model.Agent, len(agents))
	a.order = make([]string, 0, len(agents))
	for i := range agents {
		ag := agents[i]
		a.agents[ag.ID] = &ag
		a.order = append(a.order, ag.ID)
	}
}

// Select marks an agent as the one whose detail view (trades, logs,
// performance) is being maintained, clearing the previous agent's detail
// state.
func (a *Agents) Select(agentID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selected == agentID {
		return
	}
	a.selected = agentID
	a.trades = nil
	a.logs = nil
	a.performance = model.Performance{}
	a.hasPerf = false
}

// SetTrades seeds the selected agent's trade list from a historical load.
func (a *Agents) SetTrades(trades []model.Trade) {
	a.mu.Lock()
	a.trades = append([]model.Trade(nil), trades...)
	a.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// List returns the compact agent records in hydration order.
func (a *Agents) List() []model.Agent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.Agent, 0, len(a.order))
	for _, id := range a.order {
		if ag, ok := a.agents[id]; ok {
			out = append(out, *ag)
		}
	}
	return out
}

// Get returns one agent's compact record.
func (a *Agents) Get(agentID string) (model.Agent, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ag, ok := a.agents[agentID]
	if !ok {
		return model.Agent{}, false
	}
	return *ag, true
}

// Selected returns the selected agent's ID, or "".
func (a *Agents) Selected() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selected
}

// Trades returns a copy of the selected agent's trade list.
func (a *Agents) Trades() []model.Trade {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Trade(nil), a.trades...)
}

// Pending returns a copy of the global pending-trades list.
func (a *Agents) Pending() []model.Trade {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Trade(nil), a.pending...)
}

// Logs returns a copy of the selected agent's log list, newest first.
func (a *Agents) Logs() []model.LogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.LogEntry(nil), a.logs...)
}

// Performance returns the selected agent's performance snapshot, if one has
// arrived.
func (a *Agents) Performance() (model.Performance, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.performance, a.hasPerf
}

// -----------------------------------------------------------------------------
// Event reduction
// -----------------------------------------------------------------------------

// Event names carried on agent channels.
const (
	EventStatusChange      = "status_change"
	EventNewTrade          = "new_trade"
	EventTradeUpdate       = "trade_update"
	EventLog               = "log"
	EventPerformanceUpdate = "performance_update"
)

// agentEventWire is the wire shape of an agent event frame. Event-specific
// fields sit beside the envelope rather than inside a data object.
type agentEventWire struct {
	Event       string           `json:"event"`
	Status      string           `json:"status,omitempty"`
	Trade       *tradeWire       `json:"trade,omitempty"`
	Log         *logWire         `json:"log,omitempty"`
	Performance *performanceWire `json:"performance,omitempty"`
}

type tradeWire struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Volume     float64 `json:"volume"`
	OpenPrice  float64 `json:"open_price"`
	ClosePrice float64 `json:"close_price"`
	Profit     float64 `json:"profit"`
	Status     string  `json:"status"`
	OpenedAt   int64   `json:"opened_at"`
	ClosedAt   int64   `json:"closed_at"`
}

type logWire struct {
	Time    int64  `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type performanceWire struct {
	TotalPnl     float64 `json:"total_pnl"`
	WinRate      float64 `json:"win_rate"`
	TotalTrades  int     `json:"total_trades"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	Sharpe       float64 `json:"sharpe"`
}

func (w tradeWire) toModel(agentID string) model.Trade {
	return model.Trade{
		ID:         w.ID,
		AgentID:    agentID,
		Symbol:     w.Symbol,
		Side:       w.Side,
		Volume:     w.Volume,
		OpenPrice:  w.OpenPrice,
		ClosePrice: w.ClosePrice,
		Profit:     w.Profit,
		Status:     w.Status,
		OpenedAt:   w.OpenedAt,
		ClosedAt:   w.ClosedAt,
	}
}

// apply folds one event frame into the store.
func (a *Agents) apply(agentID string, f stream.Frame) {
	var wire agentEventWire
	if err := json.Unmarshal(f.Raw, &wire); err != nil {
		a.logger.Warn("discarding malformed agent event", "agent", agentID, "error", err)
		return
	}

	switch wire.Event {
	case EventStatusChange:
		a.applyStatus(agentID, wire.Status)
	case EventNewTrade:
		if wire.Trade != nil {
			a.applyNewTrade(agentID, wire.Trade.toModel(agentID))
		}
	case EventTradeUpdate:
		if wire.Trade != nil {
			a.applyTradeUpdate(agentID, wire.Trade.toModel(agentID))
		}
	case EventLog:
		if wire.Log != nil {
			a.applyLog(agentID, model.LogEntry(*wire.Log))
		}
	case EventPerformanceUpdate:
		if wire.Performance != nil {
			a.applyPerformance(agentID, *wire.Performance)
		}
	default:
		a.logger.Debug("skipping agent event", "agent", agentID, "event", wire.Event)
	}
}

// applyStatus updates only the matching agent's status field.
func (a *Agents) applyStatus(agentID, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ag, ok := a.agents[agentID]; ok {
		ag.Status = status
	}
}

// applyNewTrade prepends a pending trade to the global pending list
// (deduplicated by id) and, when the event's agent is the selected one,
// to that agent's trade list.
func (a *Agents) applyNewTrade(agentID string, trade model.Trade) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if trade.Status == model.TradeStatusPending {
		if !hasTrade(a.pending, trade.ID) {
			a.pending = append([]model.Trade{trade}, a.pending...)
		}
	}

	if agentID == a.selected && !hasTrade(a.trades, trade.ID) {
		a.trades = append([]model.Trade{trade}, a.trades...)
	}
}

// applyTradeUpdate replaces the matching trade by id in the trade list and
// removes that id from the pending list unconditionally: closing or updating
// a trade always clears any stale pending entry, even if the trade was never
// actually pending.
func (a *Agents) applyTradeUpdate(agentID string, trade model.Trade) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.trades {
		if a.trades[i].ID == trade.ID {
			a.trades[i] = trade
			break
		}
	}

	for i := range a.pending {
		if a.pending[i].ID == trade.ID {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			break
		}
	}
}

// applyLog prepends a log line to the selected agent's list only, bounded at
// maxLogEntries.
func (a *Agents) applyLog(agentID string, entry model.LogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if agentID != a.selected {
		return
	}

	a.logs = append([]model.LogEntry{entry}, a.logs...)
	if len(a.logs) > maxLogEntries {
		a.logs = a.logs[:maxLogEntries]
	}
}

// applyPerformance replaces the selected agent's performance snapshot
// wholesale and projects the summary fields onto the compact record, keeping
// list and detail views consistent without a REST reload.
func (a *Agents) applyPerformance(agentID string, wire performanceWire) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if agentID != a.selected {
		return
	}

	a.performance = model.Performance{
		TotalPnl:     wire.TotalPnl,
		WinRate:      wire.WinRate,
		TotalTrades:  wire.TotalTrades,
		ProfitFactor: wire.ProfitFactor,
		MaxDrawdown:  wire.MaxDrawdown,
		Sharpe:       wire.Sharpe,
	}
	a.hasPerf = true

	if ag, ok := a.agents[agentID]; ok {
		ag.TotalPnl = wire.TotalPnl
		ag.WinRate = wire.WinRate
		ag.TotalTrades = wire.TotalTrades
	}
}

func hasTrade(trades []model.Trade, id string) bool {
	for i := range trades {
		if trades[i].ID == id {
			return true
		}
	}
	return false
}
