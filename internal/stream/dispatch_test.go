package stream

import (
	"testing"
)

func TestDispatch_RoutesDataFrameToAllHandlers(t *testing.T) {
	r, _ := newTestRegistry()

	var got1, got2 []string
	r.Subscribe("ticks:EURUSD", func(f Frame) {
		got1 = append(got1, f.Channel)
	})
	r.Subscribe("ticks:EURUSD", func(f Frame) {
		got2 = append(got2, f.Channel)
	})
	r.Subscribe("ticks:GBPUSD", func(f Frame) {
		t.Error("handler for other channel invoked")
	})

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{"bid":1.1}}`))

	if len(got1) != 1 || len(got2) != 1 {
		t.Errorf("invocations = %d/%d, want 1/1", len(got1), len(got2))
	}
}

func TestDispatch_PingAnswersWithPong(t *testing.T) {
	r, sender := newTestRegistry()

	invoked := false
	r.Subscribe("ticks:EURUSD", func(Frame) { invoked = true })

	r.Dispatch([]byte(`{"type":"ping"}`))

	if got := sender.count(FramePong, ""); got != 1 {
		t.Errorf("pong frames = %d, want 1", got)
	}
	if invoked {
		t.Error("control frame was forwarded to a domain handler")
	}
}

func TestDispatch_AcksAndErrorsAreConsumed(t *testing.T) {
	r, sender := newTestRegistry()

	invoked := 0
	r.Subscribe("ticks:EURUSD", func(Frame) { invoked++ })
	sender.reset()

	r.Dispatch([]byte(`{"type":"subscribed","channel":"ticks:EURUSD"}`))
	r.Dispatch([]byte(`{"type":"unsubscribed","channel":"ticks:EURUSD"}`))
	r.Dispatch([]byte(`{"type":"error","message":"unknown channel"}`))

	if invoked != 0 {
		t.Errorf("handler invocations = %d, want 0", invoked)
	}

	// Error frames do not alter registry state.
	if got := r.HandlerCount("ticks:EURUSD"); got != 1 {
		t.Errorf("HandlerCount = %d, want 1", got)
	}
	if got := len(r.Desired()); got != 1 {
		t.Errorf("desired set size = %d, want 1", got)
	}

	sender.mu.Lock()
	total := len(sender.frames)
	sender.mu.Unlock()
	if total != 0 {
		t.Errorf("frames sent = %d, want 0", total)
	}
}

func TestDispatch_MalformedFrameDiscarded(t *testing.T) {
	r, _ := newTestRegistry()

	invoked := false
	r.Subscribe("ticks:EURUSD", func(Frame) { invoked = true })

	r.Dispatch([]byte(`{not json`))
	r.Dispatch([]byte(``))

	if invoked {
		t.Error("handler invoked for malformed frame")
	}
}

func TestDispatch_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	r, _ := newTestRegistry()

	delivered := 0
	r.Subscribe("agent:7", func(Frame) { panic("boom") })
	r.Subscribe("agent:7", func(Frame) { delivered++ })
	r.Subscribe("agent:7", func(Frame) { delivered++ })

	r.Dispatch([]byte(`{"channel":"agent:7","event":"log","log":{"message":"x"}}`))

	if delivered != 2 {
		t.Errorf("deliveries to healthy handlers = %d, want 2", delivered)
	}
}

func TestDispatch_HandlerMayUnsubscribeItself(t *testing.T) {
	r, _ := newTestRegistry()

	invoked := 0
	var unsub func()
	unsub = r.Subscribe("ticks:EURUSD", func(Frame) {
		invoked++
		unsub()
	})

	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{}}`))
	r.Dispatch([]byte(`{"channel":"ticks:EURUSD","data":{}}`))

	if invoked != 1 {
		t.Errorf("invocations = %d, want 1", invoked)
	}
	if got := r.HandlerCount("ticks:EURUSD"); got != 0 {
		t.Errorf("HandlerCount = %d, want 0", got)
	}
}

func TestDispatch_BarFrameWithTypeReachesHandlers(t *testing.T) {
	r, _ := newTestRegistry()

	var types []string
	r.Subscribe("bars:XAUUSD:H1", func(f Frame) {
		types = append(types, f.Type)
	})

	// Bar frames carry both a type and a channel; they are data, not control.
	r.Dispatch([]byte(`{"type":"bar","channel":"bars:XAUUSD:H1","data":{"time":1000}}`))
	r.Dispatch([]byte(`{"type":"bar_update","channel":"bars:XAUUSD:H1","data":{"time":1000}}`))

	if len(types) != 2 || types[0] != FrameBar || types[1] != FrameBarUpdate {
		t.Errorf("delivered types = %v, want [bar bar_update]", types)
	}
}

func TestChannelNames(t *testing.T) {
	if got := TickChannel("EURUSD"); got != "ticks:EURUSD" {
		t.Errorf("TickChannel = %q", got)
	}
	if got := BarChannel("XAUUSD", "H1"); got != "bars:XAUUSD:H1" {
		t.Errorf("BarChannel = %q", got)
	}
	if got := AgentChannel("7"); got != "agent:7" {
		t.Errorf("AgentChannel = %q", got)
	}
	if got := AgentID("agent:7"); got != "7" {
		t.Errorf("AgentID = %q, want 7", got)
	}
	if got := AgentID("ticks:EURUSD"); got != "" {
		t.Errorf("AgentID for non-agent channel = %q, want empty", got)
	}
}
