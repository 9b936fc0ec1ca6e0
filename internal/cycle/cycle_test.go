package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nars-kernel/internal/budget"
	"nars-kernel/internal/concept"
	"nars-kernel/internal/event"
	"nars-kernel/internal/memory"
	"nars-kernel/internal/premise"
	"nars-kernel/internal/rule"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
)

func newTestCycle(t *testing.T) (*ReasoningCycle, *memory.Memory, *term.Store) {
	t.Helper()
	store := term.NewStore()
	bus := event.New()
	mem := memory.New(store, bus, memory.DefaultConfig())
	src := premise.New(mem, nil)
	rules := rule.StandardRules(store)
	tree := rule.NewCompiler(rule.DefaultDiscriminators()).Compile(rules)
	exec := rule.NewExecutor(tree, rule.DefaultDiscriminators(), bus)
	return New(mem, src, exec, bus, DefaultConfig()), mem, store
}

func TestStep_IdleWhenNoPendingTask(t *testing.T) {
	rc, _, _ := newTestCycle(t)
	rc.Step()
	assert.Equal(t, int64(1), rc.CycleCount())
	assert.Equal(t, Idle, rc.State())
}

func TestStep_IncrementsCycleCount(t *testing.T) {
	rc, _, _ := newTestCycle(t)
	rc.Step()
	rc.Step()
	assert.Equal(t, int64(2), rc.CycleCount())
}

func TestStep_SkipsDerivationBeyondMaxDepth(t *testing.T) {
	rc, mem, store := newTestCycle(t)
	rc.Cfg.MaxDerivationDepth = 1

	tm := store.InternAtomic("robin")
	b := budget.New(0.9, 0.9, 0.5)
	deepStamp := stamp.Stamp{Evidence: []uuid.UUID{uuid.New(), uuid.New()}}
	question := task.New(tm, task.Question, nil, b, deepStamp)
	mem.Input(question)

	rc.Step()
	assert.Equal(t, Idle, rc.State())
}

func TestRun_StopsOnContextCancellation(t *testing.T) {
	rc, _, _ := newTestCycle(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		rc.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, Halted, rc.State())
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestStep_AnswersQuestionWithMatchingBelief(t *testing.T) {
	rc, mem, store := newTestCycle(t)

	tm := store.InternAtomic("robin")
	b := budget.New(0.9, 0.9, 0.5)
	belief := task.New(tm, task.Belief, &truth.Truth{Freq: 1.0, Conf: 0.9}, b, stamp.NewInput(0))
	mem.Input(belief)
	question := task.New(tm, task.Question, nil, b, stamp.NewInput(0))
	mem.Input(question)

	var answered event.Event
	rc.Bus.Subscribe(event.QuestionAnswered, "test", func(ev event.Event) { answered = ev })

	// The belief and the question share one task bag at equal priority, so
	// the question is the sampled primary only on some steps.
	for i := 0; i < 10 && answered.Kind == ""; i++ {
		rc.Step()
	}

	assert.Equal(t, event.QuestionAnswered, answered.Kind)
	assert.Equal(t, "robin", answered.Term)
}

func TestStep_DeductionFromTwoPlainBeliefsReachesDerivation(t *testing.T) {
	rc, mem, store := newTestCycle(t)

	robin := store.InternAtomic("robin")
	bird := store.InternAtomic("bird")
	animal := store.InternAtomic("animal")
	robinBird, err := store.InternCompound(term.Inheritance, []*term.Term{robin, bird})
	require.NoError(t, err)
	birdAnimal, err := store.InternCompound(term.Inheritance, []*term.Term{bird, animal})
	require.NoError(t, err)

	b := budget.New(0.9, 0.9, 0.5)
	mem.Input(task.New(robinBird, task.Belief, &truth.Truth{Freq: 1, Conf: 0.9}, b, stamp.NewInput(0)))
	mem.Input(task.New(birdAnimal, task.Belief, &truth.Truth{Freq: 1, Conf: 0.9}, b, stamp.NewInput(0)))

	var derived []string
	rc.Bus.Subscribe(event.Derivation, "test", func(ev event.Event) { derived = append(derived, ev.Term) })

	for i := 0; i < 20; i++ {
		rc.Step()
	}

	assert.Contains(t, derived, "<robin --> animal>")
}

func TestStep_AnswersVariableQuestionViaUnification(t *testing.T) {
	rc, mem, store := newTestCycle(t)

	robin := store.InternAtomic("robin")
	bird := store.InternAtomic("bird")
	robinBird, err := store.InternCompound(term.Inheritance, []*term.Term{robin, bird})
	require.NoError(t, err)
	wildcard := store.InternVariable("x", term.Query)
	pattern, err := store.InternCompound(term.Inheritance, []*term.Term{robin, wildcard})
	require.NoError(t, err)

	b := budget.New(0.9, 0.9, 0.5)
	mem.Input(task.New(robinBird, task.Belief, &truth.Truth{Freq: 1, Conf: 0.9}, b, stamp.NewInput(0)))
	mem.Input(task.New(pattern, task.Question, nil, b, stamp.NewInput(0)))

	var answered event.Event
	rc.Bus.Subscribe(event.QuestionAnswered, "test", func(ev event.Event) { answered = ev })

	for i := 0; i < 10 && answered.Kind == ""; i++ {
		rc.Step()
	}

	assert.Equal(t, event.QuestionAnswered, answered.Kind)
	assert.Equal(t, "<robin --> bird>", answered.Term)
}

func TestStep_QuestionAndBeliefWithExtraLinkDoesNotPanic(t *testing.T) {
	rc, mem, store := newTestCycle(t)

	robin := store.InternAtomic("robin")
	bird := store.InternAtomic("bird")
	b := budget.New(0.8, 0.9, 0.5)

	robinBird, err := store.InternCompound(term.Inheritance, []*term.Term{robin, bird})
	require.NoError(t, err)

	// A question on <robin --> bird> shares the concept with the belief on
	// the same term, and the concept gets an extra link. No standard rule
	// concludes from a question and no second belief exists, so the step
	// derives nothing; only a panic-free step is checked.
	belief := task.New(robinBird, task.Belief, &truth.Truth{Freq: 1, Conf: 0.9}, b, stamp.NewInput(0))
	mem.Input(belief)
	question := task.New(robinBird, task.Question, nil, b, stamp.NewInput(0))
	mem.Input(question)

	c, ok := mem.ConceptOf(robinBird)
	require.True(t, ok)
	c.AddLink(robin, concept.Outgoing, 0.5)

	assert.NotPanics(t, func() { rc.Step() })
}

func TestDefaultConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 10, cfg.MaxDerivationDepth)
	require.Equal(t, 10, cfg.DecayEveryNCycles)
	require.Equal(t, 10, cfg.MaxTasksPerCycle)
	require.InDelta(t, 0.05, cfg.DecayRate, 1e-9)
}
