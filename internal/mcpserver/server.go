package mcpserver

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"nars-kernel/internal/cycle"
	"nars-kernel/internal/narsese"
	"nars-kernel/pkg/reasoner"
)

// KernelServer wraps a reasoner.Reasoner and registers it as MCP tools.
// Grounded on internal/server/server.go's UnifiedServer: one struct holding
// the domain object, a RegisterTools method adding each tool via
// mcp.AddTool, and one handler method per tool.
type KernelServer struct {
	r *reasoner.Reasoner

	mu      sync.Mutex
	running bool
}

// NewKernelServer wraps r for MCP exposure.
func NewKernelServer(r *reasoner.Reasoner) *KernelServer {
	return &KernelServer{r: r}
}

// RegisterTools adds every tool in spec.md §6's command surface, plus the
// SPEC_FULL.md-supplemented snapshot and get-metrics tools.
func (s *KernelServer) RegisterTools(mcpServer *mcp.Server) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "input",
		Description: "Ingest one Narsese sentence (term, punctuation, optional truth) into the kernel",
	}, s.handleInput)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "step",
		Description: "Run exactly one reasoning cycle: sample, match, derive, ingest, decay",
	}, s.handleStep)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "run",
		Description: "Start continuous background cycling; returns immediately",
	}, s.handleRun)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "stop",
		Description: "Cancel background cycling started by run",
	}, s.handleStop)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "reset",
		Description: "Clear all concepts and pending tasks, keeping the term store and rule set",
	}, s.handleReset)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "query",
		Description: "Synchronously sample the best-supported current belief about a term",
	}, s.handleQuery)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "snapshot",
		Description: "Persist the current kernel state and report its summary",
	}, s.handleSnapshot)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get-metrics",
		Description: "Get cumulative reasoning-cycle counters",
	}, s.handleGetMetrics)
}

func toJSONContent(data any) []mcp.Content {
	jsonData, err := json.Marshal(data)
	if err != nil {
		errData := map[string]string{"error": err.Error()}
		jsonData, _ = json.Marshal(errData)
	}
	return []mcp.Content{&mcp.TextContent{Text: string(jsonData)}}
}

func (s *KernelServer) handleInput(ctx context.Context, req *mcp.CallToolRequest, input InputRequest) (*mcp.CallToolResult, *InputResponse, error) {
	termAST, err := termInputToAST(input.Term)
	if err != nil {
		return nil, nil, err
	}
	punct, err := punctuationFromString(input.Punctuation)
	if err != nil {
		return nil, nil, err
	}

	sentence := &narsese.Sentence{Term: termAST, Punct: punct, Truth: truthInputToAST(input.Truth)}
	tsk, err := s.r.InputSentence(sentence)
	if err != nil {
		return nil, nil, err
	}

	resp := &InputResponse{Term: tsk.Term.String(), Punct: input.Punctuation}
	if tsk.Truth != nil {
		resp.Frequency = tsk.Truth.Freq
		resp.Confidence = tsk.Truth.Conf
	}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleStep(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *StepResponse, error) {
	s.r.Step()
	resp := &StepResponse{Cycle: s.r.Cyc.CycleCount(), State: stateName(s.r.Cyc.State())}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleRun(ctx context.Context, req *mcp.CallToolRequest, input RunRequest) (*mcp.CallToolResult, *RunResponse, error) {
	s.mu.Lock()
	alreadyRunning := s.running
	s.running = true
	s.mu.Unlock()

	if !alreadyRunning {
		go s.r.Run(context.Background())
	}

	resp := &RunResponse{Started: true}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleStop(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *StopResponse, error) {
	s.r.Stop()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	resp := &StopResponse{Stopped: true}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleReset(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *ResetResponse, error) {
	s.r.Reset()
	resp := &ResetResponse{Reset: true}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleQuery(ctx context.Context, req *mcp.CallToolRequest, input QueryRequest) (*mcp.CallToolResult, *QueryResponse, error) {
	ast, err := termInputToAST(input.Term)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.r.ResolveTerm(ast)
	if err != nil {
		return nil, nil, err
	}

	belief, ok := s.r.Query(t)
	resp := &QueryResponse{Found: ok}
	if ok {
		resp.Term = belief.Term.String()
		if belief.Truth != nil {
			resp.Frequency = belief.Truth.Freq
			resp.Confidence = belief.Truth.Conf
		}
	}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleSnapshot(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *SnapshotResponse, error) {
	snap, err := s.r.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	resp := &SnapshotResponse{
		Version:      snap.Version,
		Cycle:        snap.Cycle,
		TermCount:    len(snap.Terms),
		ConceptCount: len(snap.Concepts),
	}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func (s *KernelServer) handleGetMetrics(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *MetricsResponse, error) {
	snap := s.r.Metrics.Snapshot()
	resp := &MetricsResponse{
		CyclesRun:       snap["cycles_run"],
		TasksProcessed:  snap["tasks_processed"],
		DerivationsMade: snap["derivations_made"],
		ConceptsCreated: snap["concepts_created"],
		ConceptsEvicted: snap["concepts_evicted"],
		RuleFaults:      snap["rule_faults"],
		BeliefsAdded:    snap["beliefs_added"],
		GoalsAdded:      snap["goals_added"],
		QuestionsAdded:  snap["questions_added"],
		DerivationRate:  s.r.Metrics.DerivationRate(),
	}
	return &mcp.CallToolResult{Content: toJSONContent(resp)}, resp, nil
}

func stateName(st cycle.State) string {
	switch st {
	case cycle.Idle:
		return "idle"
	case cycle.Sampling:
		return "sampling"
	case cycle.Matching:
		return "matching"
	case cycle.Deriving:
		return "deriving"
	case cycle.Ingesting:
		return "ingesting"
	case cycle.Decaying:
		return "decaying"
	case cycle.Halted:
		return "halted"
	default:
		return "unknown"
	}
}
