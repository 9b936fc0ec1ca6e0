package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nars-kernel/internal/config"
	"nars-kernel/internal/knowledge"
	"nars-kernel/internal/narsese"
	"nars-kernel/internal/storage"
)

func newTestReasoner(t *testing.T) *Reasoner {
	t.Helper()
	cfg := config.Default()
	return New(cfg, storage.NewMemoryStore(), knowledge.NoopMirror{})
}

func birdSentence() *narsese.Sentence {
	return &narsese.Sentence{
		Term: &narsese.TermAST{
			Copula:   narsese.Inheritance,
			Operands: []*narsese.TermAST{{Name: "robin"}, {Name: "bird"}},
		},
		Punct: narsese.PunctBelief,
		Truth: &narsese.TruthAST{Frequency: 1.0, Confidence: 0.9},
	}
}

func TestInputSentence_IngestsBelief(t *testing.T) {
	r := newTestReasoner(t)

	tsk, err := r.InputSentence(birdSentence())
	require.NoError(t, err)
	require.NotNil(t, tsk)
	assert.Equal(t, "<robin --> bird>", tsk.Term.String())
	assert.True(t, tsk.IsBelief())

	belief, ok := r.Query(tsk.Term)
	require.True(t, ok)
	assert.Equal(t, 1.0, belief.Truth.Freq)
}

func TestInputSentence_BeliefWithoutTruthIsInputError(t *testing.T) {
	r := newTestReasoner(t)
	s := birdSentence()
	s.Truth = nil

	_, err := r.InputSentence(s)
	assert.Error(t, err)
}

func TestInputSentence_QuestionNeedsNoTruth(t *testing.T) {
	r := newTestReasoner(t)
	s := birdSentence()
	s.Punct = narsese.PunctQuestion
	s.Truth = nil

	tsk, err := r.InputSentence(s)
	require.NoError(t, err)
	assert.True(t, tsk.IsQuestion())
}

func TestStep_AdvancesCycleCount(t *testing.T) {
	r := newTestReasoner(t)
	_, err := r.InputSentence(birdSentence())
	require.NoError(t, err)

	before := r.Cyc.CycleCount()
	r.Step()
	assert.Equal(t, before+1, r.Cyc.CycleCount())
}

func TestReset_ClearsConcepts(t *testing.T) {
	r := newTestReasoner(t)
	_, err := r.InputSentence(birdSentence())
	require.NoError(t, err)
	assert.Greater(t, r.Mem.ConceptCount(), 0)

	r.Reset()
	assert.Equal(t, 0, r.Mem.ConceptCount())
}

func TestSnapshotAndLoad_RoundTrip(t *testing.T) {
	r := newTestReasoner(t)
	_, err := r.InputSentence(birdSentence())
	require.NoError(t, err)

	snap, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, storage.CurrentVersion, snap.Version)
	assert.NotEmpty(t, snap.Concepts)

	r2 := newTestReasoner(t)
	require.NoError(t, r2.Load(snap))
	assert.Greater(t, r2.Mem.ConceptCount(), 0)
}
