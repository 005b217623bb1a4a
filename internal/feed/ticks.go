package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tradeterm/internal/model"
	"tradeterm/internal/stream"
)

// Ticks keeps the latest quote per symbol. One cache slot per symbol,
// latest wins; no history is retained by this layer.
type Ticks struct {
	registry *stream.Registry
	logger   *slog.Logger

	mu     sync.RWMutex
	latest map[string]model.Tick

	now func() time.Time
}

// NewTicks creates the tick cache.
func NewTicks(registry *stream.Registry, logger *slog.Logger) *Ticks {
	if logger == nil {
		logger = slog.Default()
	}

	return &Ticks{
		registry: registry,
		logger:   logger,
		latest:   make(map[string]model.Tick),
		now:      time.Now,
	}
}

// Subscribe keeps the cache entry for symbol current as long as at least one
// subscriber remains, and returns an idempotent unsubscribe function.
// Concurrent subscribers to the same symbol share one cache entry and one
// wire subscription.
func (t *Ticks) Subscribe(symbol string) func() {
	return t.registry.Subscribe(stream.TickChannel(symbol), func(f stream.Frame) {
		t.apply(symbol, f)
	})
}

// Latest returns the cached tick for symbol, if any.
func (t *Ticks) Latest(symbol string) (model.Tick, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tick, ok := t.latest[symbol]
	return tick, ok
}

// Symbols returns the symbols with a cached tick.
func (t *Ticks) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	symbols := make([]string, 0, len(t.latest))
	for s := range t.latest {
		symbols = append(symbols, s)
	}
	return symbols
}

// tickWire is the wire shape of a tick payload. Absent numeric fields decode
// to zero, which is exactly the replacement default the cache wants.
type tickWire struct {
	Symbol    string  `json:"symbol"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Spread    float64 `json:"spread"`
	Timestamp int64   `json:"timestamp"`
}

// apply replaces the cache entry wholesale. Partial frames are not merged
// into the previous tick: omitted fields become 0, an omitted timestamp
// becomes "now".
func (t *Ticks) apply(symbol string, f stream.Frame) {
	var wire tickWire
	if err := json.Unmarshal(f.Data, &wire); err != nil {
		t.logger.Warn("discarding malformed tick", "symbol", symbol, "error", err)
		return
	}

	tick := model.Tick{
		Symbol:    symbol,
		Bid:       wire.Bid,
		Ask:       wire.Ask,
		Spread:    wire.Spread,
		Timestamp: wire.Timestamp,
	}
	if tick.Timestamp <= 0 {
		tick.Timestamp = t.now().Unix()
	}

	t.mu.Lock()
	t.latest[symbol] = tick
	t.mu.Unlock()
}
