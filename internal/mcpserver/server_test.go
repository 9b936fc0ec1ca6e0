package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nars-kernel/internal/config"
	"nars-kernel/internal/knowledge"
	"nars-kernel/internal/storage"
	"nars-kernel/pkg/reasoner"
)

func newTestServer(t *testing.T) *KernelServer {
	t.Helper()
	r := reasoner.New(config.Default(), storage.NewMemoryStore(), knowledge.NoopMirror{})
	return NewKernelServer(r)
}

func inheritanceInput() InputRequest {
	return InputRequest{
		Term: TermInput{
			Copula:   "-->",
			Operands: []TermInput{{Name: "robin"}, {Name: "bird"}},
		},
		Punctuation: ".",
		Truth:       &TruthInput{Frequency: 1.0, Confidence: 0.9},
	}
}

func TestHandleInput_IngestsBelief(t *testing.T) {
	s := newTestServer(t)
	_, resp, err := s.handleInput(context.Background(), nil, inheritanceInput())
	require.NoError(t, err)
	assert.Equal(t, "<robin --> bird>", resp.Term)
	assert.Equal(t, 1.0, resp.Frequency)
}

func TestHandleQuery_FindsIngestedBelief(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleInput(context.Background(), nil, inheritanceInput())
	require.NoError(t, err)

	query := QueryRequest{Term: TermInput{Copula: "-->", Operands: []TermInput{{Name: "robin"}, {Name: "bird"}}}}
	_, resp, err := s.handleQuery(context.Background(), nil, query)
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "<robin --> bird>", resp.Term)
}

func TestHandleQuery_MissingConceptNotFound(t *testing.T) {
	s := newTestServer(t)
	query := QueryRequest{Term: TermInput{Name: "nonexistent"}}
	_, resp, err := s.handleQuery(context.Background(), nil, query)
	require.NoError(t, err)
	assert.False(t, resp.Found)
}

func TestHandleStep_AdvancesCycle(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleInput(context.Background(), nil, inheritanceInput())
	require.NoError(t, err)

	_, resp, err := s.handleStep(context.Background(), nil, EmptyRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Cycle)
}

func TestHandleReset_ClearsConcepts(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleInput(context.Background(), nil, inheritanceInput())
	require.NoError(t, err)

	_, resp, err := s.handleReset(context.Background(), nil, EmptyRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Reset)

	query := QueryRequest{Term: TermInput{Copula: "-->", Operands: []TermInput{{Name: "robin"}, {Name: "bird"}}}}
	_, qresp, err := s.handleQuery(context.Background(), nil, query)
	require.NoError(t, err)
	assert.False(t, qresp.Found)
}

func TestHandleSnapshot_ReportsCounts(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleInput(context.Background(), nil, inheritanceInput())
	require.NoError(t, err)

	_, resp, err := s.handleSnapshot(context.Background(), nil, EmptyRequest{})
	require.NoError(t, err)
	assert.Greater(t, resp.ConceptCount, 0)
}
