package api

import (
	"context"
	"net/url"

	"tradeterm/internal/model"
)

// GetAgents fetches the compact agent list.
func (c *Client) GetAgents(ctx context.Context) ([]model.Agent, error) {
	var resp agentsResponse
	if err := c.get(ctx, "/api/agents", nil, &resp); err != nil {
		return nil, err
	}

	agents := make([]model.Agent, 0, len(resp.Agents))
	for _, a := range resp.Agents {
		agents = append(agents, a.ToModel())
	}
	return agents, nil
}

// GetAgentTrades fetches an agent's trade history, newest first.
func (c *Client) GetAgentTrades(ctx context.Context, agentID string) ([]model.Trade, error) {
	var resp tradesResponse
	if err := c.get(ctx, "/api/agents/"+url.PathEscape(agentID)+"/trades", nil, &resp); err != nil {
		return nil, err
	}

	trades := make([]model.Trade, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		trades = append(trades, t.ToModel())
	}
	return trades, nil
}
