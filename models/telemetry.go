package models

// AgentTelemetry captures one completion call made by an agent. Adapters
// always report zero cost; the orchestrator prices tokens when persisting.
type AgentTelemetry struct {
	Agent     string  `json:"agent" db:"agent"`
	Step      string  `json:"step" db:"step"`
	Prompt    string  `json:"prompt" db:"prompt"`
	Response  string  `json:"response" db:"response"`
	TokensIn  int     `json:"tokens_in" db:"tokens_in"`
	TokensOut int     `json:"tokens_out" db:"tokens_out"`
	LatencyMs int64   `json:"latency_ms" db:"latency_ms"`
	CostUSD   float64 `json:"cost_usd" db:"cost_usd"`
}

// TableName returns the table name agent telemetry is persisted to
func (AgentTelemetry) TableName() string {
	return "agent_logs"
}

// StatsOverview is the aggregate snapshot served by the stats endpoint
type StatsOverview struct {
	ActiveSKUs          int `json:"active_skus"`
	ApprovedPriceEvents int `json:"approved_price_events"`
	RejectedPrices      int `json:"rejected_prices"`
	CXEvents            int `json:"cx_events"`
}

// RunMetrics aggregates agent telemetry for one orchestration run
type RunMetrics struct {
	RunID        string  `json:"run_id"`
	CostUSD      float64 `json:"cost_usd"`
	TotalTokens  int     `json:"total_tokens"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	Calls        int     `json:"calls"`
}

// AgentMetrics is the cost/latency summary served by the metrics endpoint
type AgentMetrics struct {
	TotalCost   float64      `json:"total_cost"`
	TotalTokens int          `json:"total_tokens"`
	AvgLatency  float64      `json:"avg_latency"`
	Runs        []RunMetrics `json:"runs"`
}
