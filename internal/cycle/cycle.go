// Package cycle implements the ReasoningCycle state machine: sample, match,
// derive, ingest, decay, per spec.md §4.12.
package cycle

import (
	"context"
	"log"
	"runtime"

	"nars-kernel/internal/budget"
	"nars-kernel/internal/concept"
	"nars-kernel/internal/event"
	"nars-kernel/internal/memory"
	"nars-kernel/internal/premise"
	"nars-kernel/internal/rule"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
)

// linkBudgetFraction is the share of a source concept's activation
// transferred onto a derived task ingested into a linked concept, mirroring
// classic NARS term-link budget propagation (SPEC_FULL.md §4).
const linkBudgetFraction = 0.3

// State names the ReasoningCycle's current phase.
type State int

const (
	Idle State = iota
	Sampling
	Matching
	Deriving
	Ingesting
	Decaying
	Halted
)

// Config holds the knobs enumerated in spec.md §4.12/§6.
type Config struct {
	MaxDerivationDepth  int
	CPUThrottleInterval int // cooperative yield every K cycles, 0 = never
	DecayEveryNCycles   int
	MaxTasksPerCycle    int
	DecayRate           float64
}

// DefaultConfig matches spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		MaxDerivationDepth:  10,
		CPUThrottleInterval: 0,
		DecayEveryNCycles:   10,
		MaxTasksPerCycle:    10,
		DecayRate:           0.05,
	}
}

// ReasoningCycle orchestrates sample -> match -> derive -> ingest -> decay.
type ReasoningCycle struct {
	Mem      *memory.Memory
	Source   *premise.Source
	Executor *rule.Executor
	Bus      *event.Bus
	Cfg      Config

	state State
	count int64
}

// New wires a ReasoningCycle over the given Memory, PremiseSource and
// RuleExecutor.
func New(mem *memory.Memory, src *premise.Source, exec *rule.Executor, bus *event.Bus, cfg Config) *ReasoningCycle {
	return &ReasoningCycle{Mem: mem, Source: src, Executor: exec, Bus: bus, Cfg: cfg, state: Idle}
}

// State returns the current phase.
func (rc *ReasoningCycle) State() State { return rc.state }

// CycleCount returns the number of cycles completed so far.
func (rc *ReasoningCycle) CycleCount() int64 { return rc.count }

// Step runs exactly one cycle. Exceptions inside are caught, reported and
// the cycle restarts with the next primary (spec.md §4.12 Failure); Step
// itself never returns an error to the caller, matching that fault-isolating
// design.
func (rc *ReasoningCycle) Step() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("cycle: recovered panic: %v", r)
			rc.state = Idle
		}
	}()

	rc.count++
	rc.Mem.SetCycle(rc.count)
	rc.Bus.Publish(event.Event{Kind: event.CycleStart, Cycle: rc.count})

	rc.state = Sampling
	primary, c, secondaries, ok := rc.Source.Next()
	if !ok {
		rc.state = Idle
		rc.Bus.Publish(event.Event{Kind: event.CycleComplete, Cycle: rc.count})
		return
	}
	rc.Bus.Publish(event.Event{Kind: event.TaskProcessed, Term: primary.Term.String(), Cycle: rc.count})

	if primary.Stamp.Depth() >= rc.Cfg.MaxDerivationDepth {
		rc.state = Idle
		rc.Bus.Publish(event.Event{Kind: event.CycleComplete, Cycle: rc.count})
		return
	}

	rc.state = Matching
	ruleCtx := &rule.Context{Store: rc.Mem.Terms, StampMaxLen: stamp.DefaultMaxLength, Cycle: rc.count}
	var derived []*task.Task
	for _, secondary := range secondaries {
		derived = append(derived, rc.Executor.Execute(primary, secondary, ruleCtx)...)
	}

	rc.state = Deriving
	if rc.Cfg.MaxTasksPerCycle > 0 && len(derived) > rc.Cfg.MaxTasksPerCycle {
		derived = derived[:rc.Cfg.MaxTasksPerCycle]
	}

	rc.state = Ingesting
	for _, d := range derived {
		if c != nil {
			if w, ok := c.LinkWeight(d.Term); ok {
				boost := budget.New(c.Activation*w*linkBudgetFraction, d.Budget.Durability, d.Budget.Quality)
				d = d.WithBudget(d.Budget.Merge(boost))
			}
		}
		rc.Mem.Input(d)
	}

	if c != nil && (primary.IsQuestion() || primary.IsQuest()) {
		rc.answerIfMatched(c, primary)
	}

	if rc.Cfg.DecayEveryNCycles > 0 && rc.count%int64(rc.Cfg.DecayEveryNCycles) == 0 {
		rc.state = Decaying
		rc.Mem.DecayAll(rc.Cfg.DecayRate)
	}

	rc.state = Idle
	rc.Bus.Publish(event.Event{Kind: event.CycleComplete, Cycle: rc.count})
}

// answerIfMatched checks whether c now holds a belief for a question, or a
// goal-satisfying belief for a quest, publishing the matching satisfaction
// event (SPEC_FULL.md §4: quests are answered the same way as questions but
// announce goal-style satisfaction rather than question.answered). When
// primary's term carries a variable (e.g. `<robin --> ?x>?`), its own
// concept is keyed on that literal variable-bearing term and never holds a
// matching belief itself, so the search falls back to a unification-based
// scan of the rest of memory for a belief whose ground term answers the
// pattern.
func (rc *ReasoningCycle) answerIfMatched(c *concept.Concept, primary *task.Task) {
	belief, ok := c.SampleBelief()
	if !ok && hasVariable(primary.Term) {
		belief, ok = rc.Mem.FindUnifiableBelief(primary.Term)
	}
	if !ok {
		return
	}
	kind := event.QuestionAnswered
	if primary.IsQuest() {
		kind = event.GoalAdded
	}
	rc.Bus.Publish(event.Event{Kind: kind, Term: belief.Term.String(), Cycle: rc.count})
}

// hasVariable reports whether t or any of its subterms is a variable.
func hasVariable(t *term.Term) bool {
	found := false
	term.Walk(t, func(st *term.Term) {
		if st.IsVariable() {
			found = true
		}
	})
	return found
}

// Run advances cycles until ctx is cancelled. A cycle in which the
// PremiseSource yields no primary completes idle and Run goes on to the
// next one. Yields cooperatively (runtime.Gosched) every CPUThrottleInterval
// cycles so the embedding environment can process I/O (spec.md §5).
func (rc *ReasoningCycle) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			rc.state = Halted
			return
		default:
		}

		rc.Step()

		if rc.Cfg.CPUThrottleInterval > 0 && rc.count%int64(rc.Cfg.CPUThrottleInterval) == 0 {
			runtime.Gosched()
			select {
			case <-ctx.Done():
				rc.state = Halted
				return
			default:
			}
		}
	}
}
