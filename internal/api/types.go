package api

import "tradeterm/internal/model"

// Wire types for REST responses. Field shapes mirror the platform's JSON;
// conversions to internal models live beside them.

// APIBar is the wire form of a historical bar.
type APIBar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ToModel converts to the internal bar type.
func (b APIBar) ToModel() model.Bar {
	return model.Bar(b)
}

// APIAgent is the wire form of a compact agent record.
type APIAgent struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Status      string  `json:"status"`
	TotalPnl    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// ToModel converts to the internal agent type.
func (a APIAgent) ToModel() model.Agent {
	return model.Agent(a)
}

// APITrade is the wire form of a trade.
type APITrade struct {
	ID         string  `json:"id"`
	AgentID    string  `json:"agent_id"`
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

// ToModel converts to the internal trade type.
func (t APITrade) ToModel() model.Trade {
	return model.Trade(t)
}

// barsResponse is the envelope for GET /api/bars.
type barsResponse struct {
	Bars []APIBar `json:"bars"`
}

// agentsResponse is the envelope for GET /api/agents.
type agentsResponse struct {
	Agents []APIAgent `json:"agents"`
}

// tradesResponse is the envelope for GET /api/agents/{id}/trades.
type tradesResponse struct {
	Trades []APITrade `json:"trades"`
}
