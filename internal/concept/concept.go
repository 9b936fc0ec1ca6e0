// Package concept implements the per-term memory node: a belief bag, a
// pending-task bag, term links to neighboring concepts, and a rolling
// activation score.
package concept

import (
	"time"

	"nars-kernel/internal/bag"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
)

// LinkKind distinguishes the two term-link directions from spec.md §3.
type LinkKind int

const (
	// Outgoing: this concept's term contains the linked term as a subterm.
	Outgoing LinkKind = iota
	// Incoming: the linked term contains this concept's term as a subterm.
	Incoming
)

// Link is a navigable relation to a neighboring concept's term.
type Link struct {
	Target *term.Term
	Kind   LinkKind
	Weight float64
}

// Concept is the memory-graph node keyed by Term. concept.Term is always
// fully interned (spec.md §3 invariant); every task in BeliefBag has Term
// equal to Term.
type Concept struct {
	Term *term.Term

	BeliefBag *bag.Bag[*task.Task]
	TaskBag   *bag.Bag[*task.Task]

	Links []Link

	Activation     float64
	LastAccessedAt time.Time

	// RevisionK is the personality parameter passed through to truth.Revision
	// on belief-insert deduplication.
	RevisionK float64
}

// New creates an empty Concept for term t with the given belief/task bag
// capacities.
func New(t *term.Term, beliefCap, taskCap int, k float64) *Concept {
	return &Concept{
		Term:           t,
		BeliefBag:      bag.New[*task.Task](beliefCap, bag.PolicyPriority),
		TaskBag:        bag.New[*task.Task](taskCap, bag.PolicyPriority),
		LastAccessedAt: time.Now(),
		RevisionK:      k,
	}
}

// AcceptTask always enters tsk into TaskBag — the "new task" queue of
// spec.md §4.11 pending processing as a cycle primary — and, when tsk is a
// belief, additionally maintains the belief table in BeliefBag. Belief
// insertion eagerly deduplicates on identical term: a disjoint-stamp
// duplicate triggers revision, an overlapping-stamp duplicate triggers
// choice (spec.md §4.6). AcceptTask returns the task that actually ended up
// resident (which may differ from tsk after revision/choice) and whether
// the bag accepted it at all.
func (c *Concept) AcceptTask(tsk *task.Task) (*task.Task, bool) {
	c.LastAccessedAt = time.Now()

	if !tsk.IsBelief() {
		return tsk, c.TaskBag.Add(tsk)
	}

	existing, ok := c.BeliefBag.Remove(tsk.Key())
	var resolved *task.Task
	if !ok {
		resolved = tsk
	} else {
		resolved = c.resolveDuplicateBeliefs(existing, tsk)
	}
	c.BeliefBag.Add(resolved)

	// Refresh the belief's task-queue entry so a resampled primary always
	// carries the latest revision, not a stale truth/budget snapshot.
	c.TaskBag.Remove(resolved.Key())
	c.TaskBag.Add(resolved)
	return resolved, true
}

// resolveDuplicateBeliefs implements the revision/choice dedup rule for two
// beliefs about the same term.
func (c *Concept) resolveDuplicateBeliefs(a, b *task.Task) *task.Task {
	if a.Truth == nil || b.Truth == nil {
		return choice(a, b)
	}

	if a.Stamp.Disjoint(b.Stamp) {
		revised, ok := truth.Revision(*a.Truth, *b.Truth, c.RevisionK)
		if !ok {
			return choice(a, b)
		}
		mergedStamp := a.Stamp.Merge(b.Stamp, stamp.DefaultMaxLength)
		mergedBudget := a.Budget.Merge(b.Budget)
		out := task.New(a.Term, task.Belief, &revised, mergedBudget, mergedStamp)
		return out
	}
	return choice(a, b)
}

// choice keeps the higher-confidence belief and discards the other.
func choice(a, b *task.Task) *task.Task {
	if a.Truth == nil {
		return b
	}
	if b.Truth == nil {
		return a
	}
	if b.Truth.Conf > a.Truth.Conf {
		return b
	}
	return a
}

// SampleBelief draws a belief proportional to priority.
func (c *Concept) SampleBelief() (*task.Task, bool) { return c.BeliefBag.Sample() }

// SampleTask draws a pending task proportional to priority.
func (c *Concept) SampleTask() (*task.Task, bool) { return c.TaskBag.Sample() }

// AddLink records a navigable relation to another concept's term,
// deduplicating on (target, kind).
func (c *Concept) AddLink(target *term.Term, kind LinkKind, weight float64) {
	for i, l := range c.Links {
		if l.Target == target && l.Kind == kind {
			c.Links[i].Weight = weight
			return
		}
	}
	c.Links = append(c.Links, Link{Target: target, Kind: kind, Weight: weight})
}

// LinkWeight returns the weight of any link (outgoing or incoming) from c to
// target, used to scale term-link budget propagation.
func (c *Concept) LinkWeight(target *term.Term) (float64, bool) {
	for _, l := range c.Links {
		if l.Target == target {
			return l.Weight, true
		}
	}
	return 0, false
}

// activationCap bounds the exponential moving average so a single spike
// cannot saturate a concept's attention permanently.
const activationCap = 1.0

// UpdateActivation folds an observed attention sample into the rolling
// score using a fixed smoothing factor.
func (c *Concept) UpdateActivation(observed float64) {
	const alpha = 0.3
	c.Activation = alpha*observed + (1-alpha)*c.Activation
	if c.Activation > activationCap {
		c.Activation = activationCap
	}
}

// Empty reports whether the concept carries no beliefs, tasks or links —
// the condition under which Memory may evict it (spec.md §4.7 invariant).
func (c *Concept) Empty() bool {
	return c.BeliefBag.Len() == 0 && c.TaskBag.Len() == 0 && len(c.Links) == 0
}

// Priority implements bag.Item so a Concept can itself live in a
// priority-sampled container (Memory's focus set).
func (c *Concept) Priority() float64 { return c.Activation }

// Key implements bag.Item.
func (c *Concept) Key() string { return c.Term.String() }
