package feed

import (
	"testing"
	"time"

	"tradeterm/internal/stream"
)

// nopSender drops frames; feed tests exercise consumers, not the wire.
type nopSender struct{}

func (nopSender) Send(any) error { return nil }

func newTestRegistry() *stream.Registry {
	r := stream.NewRegistry(nil)
	r.Bind(nopSender{})
	return r
}

func TestTicks_CachesLatest(t *testing.T) {
	r := newTestRegistry()
	ticks := NewTicks(r, nil)

	unsub := ticks.Subscribe("EURUSD")
	defer unsub()

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{"symbol":"EURUSD","bid":1.1000,"ask":1.1002,"spread":0.0002,"timestamp":1700000000}}`))

	tick, ok := ticks.Latest("EURUSD")
	if !ok {
		t.Fatal("expected cached tick")
	}
	if tick.Bid != 1.1000 {
		t.Errorf("Bid = %v, want 1.1", tick.Bid)
	}
	if tick.Ask != 1.1002 {
		t.Errorf("Ask = %v, want 1.1002", tick.Ask)
	}
	if tick.Spread != 0.0002 {
		t.Errorf("Spread = %v, want 0.0002", tick.Spread)
	}
	if tick.Timestamp != 1700000000 {
		t.Errorf("Timestamp = %d, want 1700000000", tick.Timestamp)
	}
	if tick.Symbol != "EURUSD" {
		t.Errorf("Symbol = %q, want EURUSD", tick.Symbol)
	}
}

func TestTicks_ReplacementIsWholesale(t *testing.T) {
	r := newTestRegistry()
	ticks := NewTicks(r, nil)

	fixed := time.Unix(1700000500, 0)
	ticks.now = func() time.Time { return fixed }

	unsub := ticks.Subscribe("EURUSD")
	defer unsub()

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{"bid":1.1000,"ask":1.1002,"spread":0.0002,"timestamp":1700000000}}`))

	// Second tick has only bid: the entry is replaced, not merged.
	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{"bid":1.0999}}`))

	tick, ok := ticks.Latest("EURUSD")
	if !ok {
		t.Fatal("expected cached tick")
	}
	if tick.Bid != 1.0999 {
		t.Errorf("Bid = %v, want 1.0999", tick.Bid)
	}
	if tick.Ask != 0 {
		t.Errorf("Ask = %v, want 0 (no merge)", tick.Ask)
	}
	if tick.Spread != 0 {
		t.Errorf("Spread = %v, want 0 (no merge)", tick.Spread)
	}
	if tick.Timestamp != fixed.Unix() {
		t.Errorf("Timestamp = %d, want now (%d)", tick.Timestamp, fixed.Unix())
	}
}

func TestTicks_SubscribersShareOneEntry(t *testing.T) {
	r := newTestRegistry()
	ticks := NewTicks(r, nil)

	unsub1 := ticks.Subscribe("EURUSD")
	unsub2 := ticks.Subscribe("EURUSD")
	defer unsub1()
	defer unsub2()

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{"bid":1.5,"timestamp":1700000000}}`))

	if got := len(ticks.Symbols()); got != 1 {
		t.Errorf("cached symbols = %d, want 1", got)
	}
}

func TestTicks_MalformedPayloadDiscarded(t *testing.T) {
	r := newTestRegistry()
	ticks := NewTicks(r, nil)

	unsub := ticks.Subscribe("EURUSD")
	defer unsub()

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":"not an object"}`))

	if _, ok := ticks.Latest("EURUSD"); ok {
		t.Error("malformed tick was cached")
	}
}
