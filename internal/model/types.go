package model

// -----------------------------------------------------------------------------
// Market Data Types
// -----------------------------------------------------------------------------

// Tick is the latest quote snapshot for a symbol.
type Tick struct {
	Symbol    string  // Instrument symbol (e.g., "EURUSD")
	Bid       float64 // Best bid price
	Ask       float64 // Best ask price
	Spread    float64 // Ask - bid, as quoted by the server
	Timestamp int64   // Unix timestamp (seconds)
}

// Bar is a single OHLCV candle for a fixed time bucket.
type Bar struct {
	Time   int64   // Bucket start (unix seconds)
	Open   float64 // First price in bucket
	High   float64 // Highest price in bucket
	Low    float64 // Lowest price in bucket
	Close  float64 // Last price in bucket
	Volume float64 // Traded volume in bucket
}

// -----------------------------------------------------------------------------
// Agent Types
// -----------------------------------------------------------------------------

// Agent is the compact record shown in the agent list.
type Agent struct {
	ID          string // Primary key
	Name        string // Display name
	Symbol      string // Instrument the agent trades
	Status      string // "running", "paused", "stopped", "error"
	TotalPnl    float64
	WinRate     float64 // 0..100
	TotalTrades int
}

// Trade is a single trade executed (or proposed) by an agent.
type Trade struct {
	ID         string  // Primary key, assigned by the server
	AgentID    string  // Owning agent
	Symbol     string  // Instrument symbol
	Side       string  // "buy" or "sell"
	Volume     float64 // Lot size
	OpenPrice  float64
	ClosePrice float64 // Zero while the trade is open
	Profit     float64 // Realized or floating P&L
	Status     string  // "pending", "open", "closed", "cancelled"
	OpenedAt   int64   // Unix seconds
	ClosedAt   int64   // Unix seconds, zero while open
}

// TradeStatusPending is the status a trade carries while it awaits broker
// confirmation.
const TradeStatusPending = "pending"

// LogEntry is a single log line emitted by an agent.
type LogEntry struct {
	Time    int64  // Unix seconds
	Level   string // "debug", "info", "warn", "error"
	Message string
}

// Performance is a full performance snapshot for an agent.
type Performance struct {
	TotalPnl     float64
	WinRate      float64 // 0..100
	TotalTrades  int
	ProfitFactor float64
	MaxDrawdown  float64
	Sharpe       float64
}
