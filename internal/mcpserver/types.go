// Package mcpserver exposes the reasoning kernel's command surface
// (spec.md §6: input, step, run, stop, reset, query, plus snapshot and
// get-metrics) as MCP tools over stdio. There is no load tool.
// Grounded on internal/server/server.go's mcp.AddTool + handler-signature
// convention; one handler method per tool, request/response structs tagged
// for JSON.
package mcpserver

// TermInput is the wire shape of a Narsese term: an atom (Name), a
// variable (Variable + Name), or a compound (Copula + Operands). Mirrors
// internal/narsese.TermAST — this package's request structs are the MCP
// transport encoding of that AST, not a new term representation.
type TermInput struct {
	Name     string      `json:"name,omitempty"`
	Variable string      `json:"variable,omitempty"` // "$" independent, "#" dependent, "?" query
	Copula   string      `json:"copula,omitempty"`
	Operands []TermInput `json:"operands,omitempty"`
}

// TruthInput is the optional `%frequency;confidence%` suffix.
type TruthInput struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}

// InputRequest is the input() tool's request: a term, its punctuation
// ('.', '?', '!', '@'), and an optional truth value.
type InputRequest struct {
	Term        TermInput   `json:"term"`
	Punctuation string      `json:"punctuation"`
	Truth       *TruthInput `json:"truth,omitempty"`
}

// InputResponse reports the task that was ingested.
type InputResponse struct {
	Term       string  `json:"term"`
	Punct      string  `json:"punctuation"`
	Frequency  float64 `json:"frequency,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// EmptyRequest is used by tools that take no parameters.
type EmptyRequest struct{}

// StepResponse reports the cycle count after one step() call.
type StepResponse struct {
	Cycle int64  `json:"cycle"`
	State string `json:"state"`
}

// RunRequest starts continuous cycling in the background; run() returns
// immediately per spec.md §6, the kernel keeps cycling until stop().
type RunRequest struct{}

// RunResponse acknowledges that background cycling has started.
type RunResponse struct {
	Started bool `json:"started"`
}

// StopResponse acknowledges that background cycling has been cancelled.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ResetResponse acknowledges memory has been cleared.
type ResetResponse struct {
	Reset bool `json:"reset"`
}

// QueryRequest asks for the best-supported current belief about a term.
type QueryRequest struct {
	Term TermInput `json:"term"`
}

// QueryResponse reports the matched belief, if any.
type QueryResponse struct {
	Found      bool    `json:"found"`
	Term       string  `json:"term,omitempty"`
	Frequency  float64 `json:"frequency,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SnapshotResponse summarizes a persisted snapshot rather than echoing its
// full contents back over the protocol.
type SnapshotResponse struct {
	Version      string `json:"version"`
	Cycle        int64  `json:"cycle"`
	TermCount    int    `json:"term_count"`
	ConceptCount int    `json:"concept_count"`
}

// MetricsResponse reports the event-bus-derived counters from
// internal/metrics.Collector.
type MetricsResponse struct {
	CyclesRun       int64   `json:"cycles_run"`
	TasksProcessed  int64   `json:"tasks_processed"`
	DerivationsMade int64   `json:"derivations_made"`
	ConceptsCreated int64   `json:"concepts_created"`
	ConceptsEvicted int64   `json:"concepts_evicted"`
	RuleFaults      int64   `json:"rule_faults"`
	BeliefsAdded    int64   `json:"beliefs_added"`
	GoalsAdded      int64   `json:"goals_added"`
	QuestionsAdded  int64   `json:"questions_added"`
	DerivationRate  float64 `json:"derivation_rate"`
}
