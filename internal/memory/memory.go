// Package memory implements the concept index: a capacity-bounded mapping
// from interned term to Concept, a priority-weighted focus overlay, and the
// term-link graph used for attention propagation and co-premise discovery.
package memory

import (
	"github.com/dominikbraun/graph"

	"nars-kernel/internal/bag"
	"nars-kernel/internal/concept"
	"nars-kernel/internal/event"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/unify"
)

// Config bounds Memory's capacities, mirroring spec.md §6's recognized
// configuration options.
type Config struct {
	Capacity           int     // memory.capacity
	ConceptBagCapacity int     // memory.conceptBag.capacity (focus set size)
	BeliefBagCapacity  int     // per-concept belief bag capacity
	TaskBagCapacity    int     // memory.taskBag.capacity
	TruthK             float64 // truth.k, threaded into concept revision
	FocusPolicy        bag.Policy
}

// DefaultConfig matches the defaults enumerated in spec.md §6.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		ConceptBagCapacity: 1000,
		BeliefBagCapacity:  1000,
		TaskBagCapacity:    1000,
		TruthK:             1.0,
		FocusPolicy:        bag.PolicyPriority,
	}
}

// Memory is the concept index. Grounded on internal/modes/graph.go's use of
// github.com/dominikbraun/graph for a directed DAG, repurposed here as the
// subterm / enclosing-compound term-link graph (spec.md §3 "Term link").
type Memory struct {
	Terms *term.Store
	Bus   *event.Bus
	cfg   Config

	concepts map[string]*concept.Concept // keyed by term canonical string
	focus    *bag.Bag[*concept.Concept]
	links    graph.Graph[string, string]

	cycle int64
}

// New creates an empty Memory bound to the given term store and event bus.
func New(store *term.Store, bus *event.Bus, cfg Config) *Memory {
	return &Memory{
		Terms:    store,
		Bus:      bus,
		cfg:      cfg,
		concepts: make(map[string]*concept.Concept),
		focus:    bag.New[*concept.Concept](cfg.ConceptBagCapacity, cfg.FocusPolicy),
		links:    graph.New(graph.StringHash, graph.Directed()),
	}
}

// SetCycle records the current logical cycle counter, consulted when
// stamping freshly created concepts into events.
func (m *Memory) SetCycle(c int64) { m.cycle = c }

// ConceptOf returns the existing concept for t, if any.
func (m *Memory) ConceptOf(t *term.Term) (*concept.Concept, bool) {
	c, ok := m.concepts[t.String()]
	return c, ok
}

// ActivationOf returns the activation of the concept keyed by canonical
// term string, used by external observers (e.g. a graph mirror) that only
// have the string form from a published Event.
func (m *Memory) ActivationOf(key string) (float64, bool) {
	c, ok := m.concepts[key]
	if !ok {
		return 0, false
	}
	return c.Activation, true
}

// conceptOrCreate locates or creates the concept for t, recursively ensuring
// every subterm also has a concept and registering the term-link edges
// between them. Every subterm gets a concept — even one that never receives
// a direct task — so a term link can bridge two otherwise-unrelated
// compounds that merely share a component (spec.md §3 "Term link"; e.g.
// `<robin-->bird>` and `<bird-->animal>` meet at the shared "bird" concept).
func (m *Memory) conceptOrCreate(t *term.Term) *concept.Concept {
	key := t.String()
	if c, ok := m.concepts[key]; ok {
		return c
	}

	c := concept.New(t, m.cfg.BeliefBagCapacity, m.cfg.TaskBagCapacity, m.cfg.TruthK)
	m.concepts[key] = c
	_ = m.links.AddVertex(key)

	for _, sub := range t.Components() {
		subC := m.conceptOrCreate(sub)
		subKey := subC.Term.String()
		_ = m.links.AddEdge(key, subKey)
		_ = m.links.AddEdge(subKey, key)
		c.AddLink(sub, concept.Outgoing, 1.0)
		subC.AddLink(t, concept.Incoming, 1.0)
	}

	m.Bus.Publish(event.Event{Kind: event.ConceptCreated, Term: key, Cycle: m.cycle})
	m.ensureFocus(c)
	return c
}

// ensureFocus adds c to the focus set if it is not already present.
func (m *Memory) ensureFocus(c *concept.Concept) {
	if !m.focus.Contains(c.Key()) {
		m.focus.Add(c)
	}
}

// InFocus reports whether t's concept is currently in the focus set,
// satisfying the spec.md §8 "ingestion preserves focus invariant" property.
func (m *Memory) InFocus(t *term.Term) bool {
	return m.focus.Contains(t.String())
}

// Input interns task's term (already interned by construction) if needed,
// locates or creates its concept, forwards to Concept.AcceptTask, and
// ensures the concept is in the focus set. Once the concept's activation
// has been updated, the lowest-activation concepts are evicted until the
// concept count is back within capacity.
func (m *Memory) Input(tsk *task.Task) *task.Task {
	c := m.conceptOrCreate(tsk.Term)
	resolved, _ := c.AcceptTask(tsk)
	c.UpdateActivation(tsk.Budget.Priority)
	m.ensureFocus(c)
	for m.cfg.Capacity > 0 && len(m.concepts) > m.cfg.Capacity {
		m.evictIfFull()
	}

	kind := event.TaskAdded
	switch tsk.Punct {
	case task.Belief:
		kind = event.BeliefAdded
	case task.Goal:
		kind = event.GoalAdded
	case task.Question:
		kind = event.QuestionAdded
	}
	m.Bus.Publish(event.Event{Kind: kind, Term: tsk.Term.String(), Cycle: m.cycle})

	return resolved
}

// SampleConcept draws a concept from the focus set, weighted by activation.
func (m *Memory) SampleConcept() (*concept.Concept, bool) {
	return m.focus.Sample()
}

// FindUnifiableBelief scans every resident concept for a belief whose term
// unifies against pattern, used to answer a question/quest carrying a
// variable (spec.md §6 `<robin --> ?x>?`) whose own concept — keyed on the
// literal variable-bearing term — never holds a matching belief itself.
// Each concept's BeliefBag holds at most one entry (every belief accepted
// into a concept shares that concept's Term), so Peek is exhaustive per
// concept.
func (m *Memory) FindUnifiableBelief(pattern *term.Term) (*task.Task, bool) {
	for _, c := range m.concepts {
		belief, ok := c.BeliefBag.Peek()
		if !ok {
			continue
		}
		if _, err := unify.Unify(pattern, belief.Term, nil); err == nil {
			return belief, true
		}
	}
	return nil, false
}

// evictIfFull removes the lowest-priority concept when capacity is
// exceeded; every task inside it is discarded (AIKR, spec.md §4.7/§5: never
// surfaced as an error).
func (m *Memory) evictIfFull() {
	if m.cfg.Capacity <= 0 || len(m.concepts) <= m.cfg.Capacity {
		return
	}

	var victimKey string
	var victim *concept.Concept
	first := true
	for k, c := range m.concepts {
		if first || c.Activation < victim.Activation {
			victimKey, victim = k, c
			first = false
		}
	}
	if victim == nil {
		return
	}

	delete(m.concepts, victimKey)
	m.focus.Remove(victimKey)
	_ = m.links.RemoveVertex(victimKey)
	m.Bus.Publish(event.Event{Kind: event.ConceptEvicted, Term: victimKey, Cycle: m.cycle})
}

// DecayAll applies Bag-level priority decay to every concept's belief and
// task bag, and decays each concept's own activation. Invoked by
// ReasoningCycle's periodic "decaying" state.
func (m *Memory) DecayAll(rate float64) {
	for _, c := range m.concepts {
		c.BeliefBag.ApplyDecay(func(t *task.Task) *task.Task {
			return t.WithBudget(t.Budget.Decay(rate))
		})
		c.TaskBag.ApplyDecay(func(t *task.Task) *task.Task {
			return t.WithBudget(t.Budget.Decay(rate))
		})
		c.Activation *= 1 - rate
	}
}

// NeighborTerms returns the subterm/enclosing-compound neighbors of t's
// concept via the term-link graph, used by the term-link co-premise
// strategy.
func (m *Memory) NeighborTerms(t *term.Term) []string {
	key := t.String()
	adj, err := m.links.AdjacencyMap()
	if err != nil {
		return nil
	}
	edges, ok := adj[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(edges))
	for target := range edges {
		out = append(out, target)
	}
	return out
}

// ConceptCount returns the number of live concepts.
func (m *Memory) ConceptCount() int { return len(m.concepts) }

// LiveTerms returns every concept's term, used as GC roots for
// term.Store.Sweep.
func (m *Memory) LiveTerms() []*term.Term {
	out := make([]*term.Term, 0, len(m.concepts))
	for _, c := range m.concepts {
		out = append(out, c.Term)
	}
	return out
}

// Reset drops all concepts, the focus set and the term-link graph. Terms
// already interned in m.Terms are left alone — the TermStore outlives any
// single Memory per spec.md §5.
func (m *Memory) Reset() {
	m.concepts = make(map[string]*concept.Concept)
	m.focus = bag.New[*concept.Concept](m.cfg.ConceptBagCapacity, m.cfg.FocusPolicy)
	m.links = graph.New(graph.StringHash, graph.Directed())
}
