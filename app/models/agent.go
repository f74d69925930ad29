package models

// ToolCall is one structured tool request emitted by the reasoning model.
// ID is assigned locally so results can be paired back to their call.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult is always returned for a dispatched call, never thrown.
type ToolResult struct {
	CallID       string         `json:"call_id"`
	Name         string         `json:"name"`
	OK           bool           `json:"ok"`
	Payload      map[string]any `json:"payload,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
}

// AgentTurn is one round-trip with the model. The ordered sequence of turns
// is the loop's append-only history for the lifetime of one job.
type AgentTurn struct {
	Request  string       `json:"request,omitempty"`
	Calls    []ToolCall   `json:"calls,omitempty"`
	Results  []ToolResult `json:"results,omitempty"`
	Response string       `json:"response,omitempty"`
}
