// Package premise implements the PremiseSource: a pull-based, cancellable
// stream of (primary task, secondary candidates) pairs sampled from Memory,
// per spec.md §4.11.
package premise

import (
	"math/rand"

	"nars-kernel/internal/concept"
	"nars-kernel/internal/memory"
	"nars-kernel/internal/task"
)

// Strategy proposes co-premise candidates for a primary task drawn from
// concept c.
type Strategy interface {
	Name() string
	Weight() float64
	Propose(mem *memory.Memory, c *concept.Concept, primary *task.Task) []*task.Task
}

// TaskMatchStrategy proposes another task resident in the same concept.
type TaskMatchStrategy struct{ W float64 }

func (s TaskMatchStrategy) Name() string   { return "task-match" }
func (s TaskMatchStrategy) Weight() float64 { return s.W }

func (s TaskMatchStrategy) Propose(mem *memory.Memory, c *concept.Concept, primary *task.Task) []*task.Task {
	if t, ok := c.SampleBelief(); ok && t.Key() != primary.Key() {
		return []*task.Task{t}
	}
	return nil
}

// DecompositionStrategy synthesizes a co-premise from one of the primary
// term's own subterms, looked up as a belief in memory if one exists.
type DecompositionStrategy struct{ W float64 }

func (s DecompositionStrategy) Name() string    { return "decomposition" }
func (s DecompositionStrategy) Weight() float64 { return s.W }

func (s DecompositionStrategy) Propose(mem *memory.Memory, c *concept.Concept, primary *task.Task) []*task.Task {
	for _, sub := range primary.Term.Components() {
		if subC, ok := mem.ConceptOf(sub); ok {
			if t, ok := subC.SampleBelief(); ok {
				return []*task.Task{t}
			}
		}
	}
	return nil
}

// TermLinkStrategy proposes a belief reached by following a term link out of
// c, one hop to a shared subterm's concept, or two hops through that
// subterm to a sibling concept reached via one of its own term links —
// mirroring classical NARS term-link transmission, where two compounds that
// merely share a component (e.g. `<robin-->bird>` and `<bird-->animal>`
// meeting at "bird") become co-premise candidates for each other.
type TermLinkStrategy struct{ W float64 }

func (s TermLinkStrategy) Name() string    { return "term-link" }
func (s TermLinkStrategy) Weight() float64 { return s.W }

func (s TermLinkStrategy) Propose(mem *memory.Memory, c *concept.Concept, primary *task.Task) []*task.Task {
	for _, link := range c.Links {
		nc, ok := mem.ConceptOf(link.Target)
		if !ok {
			continue
		}
		if bel, ok := nc.SampleBelief(); ok && bel.Key() != primary.Key() {
			return []*task.Task{bel}
		}
		for _, hop := range nc.Links {
			if hop.Target == c.Term {
				continue
			}
			hc, ok := mem.ConceptOf(hop.Target)
			if !ok {
				continue
			}
			if bel, ok := hc.SampleBelief(); ok && bel.Key() != primary.Key() {
				return []*task.Task{bel}
			}
		}
	}
	return nil
}

// DefaultStrategies returns the three co-premise strategies from spec.md
// §4.11 with the relative weights used to pick one probabilistically per
// cycle.
func DefaultStrategies() []Strategy {
	return []Strategy{
		TaskMatchStrategy{W: 0.5},
		DecompositionStrategy{W: 0.3},
		TermLinkStrategy{W: 0.2},
	}
}

// Source is the default PremiseSource: it samples a concept by priority
// from the focus set, samples the primary from that concept's task bag with
// probability proportional to priority (so the primary is not always the
// highest-priority task), and delegates co-premise selection to a
// probabilistically chosen Strategy.
type Source struct {
	Mem        *memory.Memory
	Strategies []Strategy
	rng        *rand.Rand
}

// New creates a Source over mem using strategies (DefaultStrategies if nil).
func New(mem *memory.Memory, strategies []Strategy) *Source {
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	return &Source{Mem: mem, Strategies: strategies, rng: rand.New(rand.NewSource(1))}
}

// Next pulls one primary task and its secondary candidates. Returns false
// when the focus set is empty or when the one concept it sampled has no
// pending task (other focus concepts are not tried); the caller
// (ReasoningCycle) ends that cycle idle and pulls again on a later cycle,
// per spec.md §5 "Suspension points".
func (s *Source) Next() (*task.Task, *concept.Concept, []*task.Task, bool) {
	c, ok := s.Mem.SampleConcept()
	if !ok {
		return nil, nil, nil, false
	}
	primary, ok := c.SampleTask()
	if !ok {
		return nil, nil, nil, false
	}

	strategy := s.pickStrategy()
	secondaries := strategy.Propose(s.Mem, c, primary)
	return primary, c, secondaries, true
}

func (s *Source) pickStrategy() Strategy {
	total := 0.0
	for _, st := range s.Strategies {
		total += st.Weight()
	}
	target := s.rng.Float64() * total
	acc := 0.0
	for _, st := range s.Strategies {
		acc += st.Weight()
		if acc >= target {
			return st
		}
	}
	return s.Strategies[len(s.Strategies)-1]
}
