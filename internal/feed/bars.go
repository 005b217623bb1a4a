package feed

import (
	"encoding/json"
	"log/slog"
	"math"
	"sync"

	"tradeterm/internal/model"
	"tradeterm/internal/stream"
)

// Bars maintains, per (symbol, timeframe) key, an append-only sequence of
// finalized bars plus at most one current (still-forming) bar held
// separately. The current bar is cleared the instant a finalized bar closes
// its bucket.
type Bars struct {
	registry *stream.Registry
	logger   *slog.Logger

	mu     sync.RWMutex
	series map[string]*barSeries
}

// barSeries is the state for one symbol:timeframe key. hasCurrent makes the
// current-bar slot an explicit present/absent value; a zero Bar is never
// used as a sentinel.
type barSeries struct {
	finalized  []model.Bar
	current    model.Bar
	hasCurrent bool
}

// NewBars creates the bar builder.
func NewBars(registry *stream.Registry, logger *slog.Logger) *Bars {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bars{
		registry: registry,
		logger:   logger,
		series:   make(map[string]*barSeries),
	}
}

// Subscribe opens the live bar feed for a symbol and timeframe and returns
// an idempotent unsubscribe function.
func (b *Bars) Subscribe(symbol, timeframe string) func() {
	key := seriesKey(symbol, timeframe)
	return b.registry.Subscribe(stream.BarChannel(symbol, timeframe), func(f stream.Frame) {
		b.apply(key, f)
	})
}

// SetInitial seeds the finalized sequence from a historical REST load.
// Expected (but not required) to run before the live subscription opens,
// for a seamless hand-off.
func (b *Bars) SetInitial(symbol, timeframe string, bars []model.Bar) {
	key := seriesKey(symbol, timeframe)

	b.mu.Lock()
	b.series[key] = &barSeries{
		finalized: append([]model.Bar(nil), bars...),
	}
	b.mu.Unlock()
}

// Finalized returns a copy of the finalized sequence for a key.
func (b *Bars) Finalized(symbol, timeframe string) []model.Bar {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.series[seriesKey(symbol, timeframe)]
	if !ok {
		return nil
	}
	return append([]model.Bar(nil), s.finalized...)
}

// Current returns the still-forming bar for a key, if one is present.
func (b *Bars) Current(symbol, timeframe string) (model.Bar, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.series[seriesKey(symbol, timeframe)]
	if !ok || !s.hasCurrent {
		return model.Bar{}, false
	}
	return s.current, true
}

// barWire is the wire shape of a bar payload. Time decodes as float64 so
// malformed non-finite values can be rejected before truncation.
type barWire struct {
	Time   float64 `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (w barWire) toModel() model.Bar {
	return model.Bar{
		Time:   int64(w.Time),
		Open:   w.Open,
		High:   w.High,
		Low:    w.Low,
		Close:  w.Close,
		Volume: w.Volume,
	}
}

// apply folds one live frame into the series.
func (b *Bars) apply(key string, f stream.Frame) {
	var wire barWire
	if err := json.Unmarshal(f.Data, &wire); err != nil {
		b.logger.Warn("discarding malformed bar", "key", key, "error", err)
		return
	}

	switch f.Type {
	case stream.FrameBar:
		b.finalize(key, wire)
	case stream.FrameBarUpdate:
		b.update(key, wire)
	default:
		b.logger.Debug("skipping bar frame type", "key", key, "type", f.Type)
	}
}

// finalize appends a closed bar and clears the current slot for the key.
// Invalid timestamps are discarded; a timestamp equal to the last finalized
// bar's is a duplicate and is ignored, keeping the sequence strictly
// increasing.
func (b *Bars) finalize(key string, wire barWire) {
	if !validBarTime(wire.Time) {
		b.logger.Warn("discarding bar with invalid time", "key", key, "time", wire.Time)
		return
	}
	bar := wire.toModel()

	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.seriesLocked(key)
	if n := len(s.finalized); n > 0 && s.finalized[n-1].Time == bar.Time {
		return
	}
	s.finalized = append(s.finalized, bar)

	// The live bar for this bucket has closed; the finalized form is
	// authoritative.
	s.current = model.Bar{}
	s.hasCurrent = false
}

// update replaces the current-bar slot wholesale. It never mutates the
// finalized sequence.
func (b *Bars) update(key string, wire barWire) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.seriesLocked(key)
	s.current = wire.toModel()
	s.hasCurrent = true
}

// seriesLocked returns (creating if needed) the series for a key.
// Caller holds b.mu.
func (b *Bars) seriesLocked(key string) *barSeries {
	s, ok := b.series[key]
	if !ok {
		s = &barSeries{}
		b.series[key] = s
	}
	return s
}

func validBarTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t > 0
}

func seriesKey(symbol, timeframe string) string {
	return symbol + ":" + timeframe
}
