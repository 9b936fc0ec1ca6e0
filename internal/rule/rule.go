// Package rule implements the Rete-like discrimination network: rules are
// compiled into a tree keyed by term shape (RuleCompiler) and then
// traversed to gather unification candidates for a premise pair
// (RuleExecutor), per spec.md §4.9–§4.10.
package rule

import (
	"fmt"

	"nars-kernel/internal/event"
	"nars-kernel/internal/kernelerr"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/unify"
)

// Pattern is the two-slot premise-pair pattern a Rule matches against.
type Pattern struct {
	P *term.Term
	S *term.Term
}

// Context is threaded into every rule's Conclude function: the shared,
// read-mostly resources a conclusion needs to build a Task.
type Context struct {
	Store       *term.Store
	TruthK      float64
	StampMaxLen int
	Cycle       int64
}

// Conclude computes zero or more derived tasks from a matched premise pair.
// Decomposition-style rules may legitimately return more than one task;
// most rules return at most one.
type Conclude func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error)

// Rule pairs a Pattern with a conclusion procedure and a base priority used
// by budget.Derive.
type Rule struct {
	ID           string
	Pattern      Pattern
	BasePriority float64
	Conclude     Conclude
}

// Value is the opaque key a Discriminator returns; Wildcard means "this
// rule does not care about this discriminator", becoming a wildcard child
// in the compiled tree.
type Value any

// Wildcard is the sentinel Value meaning "matches anything".
var Wildcard = Value(struct{ any }{})

// Discriminator narrows the rule set reachable for a given premise pair
// without running unification. The tree built from a list of Discriminators
// is a guard-only over-approximation: no false negatives, false positives
// are weeded out by unification (spec.md §4.9 invariant).
type Discriminator interface {
	Name() string
	PatternValue(p, s *term.Term) Value
	InstanceValue(p, s *term.Term) Value
}

// DefaultDiscriminators returns the four discriminators spec.md §4.9
// prescribes: operator of p, operator of s, arity of p, arity of s.
func DefaultDiscriminators() []Discriminator {
	return []Discriminator{
		operatorOf{slot: 'p'},
		operatorOf{slot: 's'},
		arityOf{slot: 'p'},
		arityOf{slot: 's'},
	}
}

type operatorOf struct{ slot byte }

func (d operatorOf) Name() string { return "operator-" + string(d.slot) }

func (d operatorOf) PatternValue(p, s *term.Term) Value { return d.value(p, s) }
func (d operatorOf) InstanceValue(p, s *term.Term) Value { return d.value(p, s) }

func (d operatorOf) value(p, s *term.Term) Value {
	t := p
	if d.slot == 's' {
		t = s
	}
	if t.IsVariable() {
		return Wildcard
	}
	if t.IsAtomic() {
		return Value("atomic")
	}
	return Value(t.Operator())
}

type arityOf struct{ slot byte }

func (d arityOf) Name() string { return "arity-" + string(d.slot) }

func (d arityOf) PatternValue(p, s *term.Term) Value { return d.value(p, s) }
func (d arityOf) InstanceValue(p, s *term.Term) Value { return d.value(p, s) }

func (d arityOf) value(p, s *term.Term) Value {
	t := p
	if d.slot == 's' {
		t = s
	}
	if t.IsVariable() {
		return Wildcard
	}
	if t.IsAtomic() {
		return Value(0)
	}
	return Value(len(t.Components()))
}

// Node is a discrimination-tree node: an optional check (implicit in its
// depth), a map from observed value to child, a wildcard child, and
// (at leaves) the surviving rule list.
type Node struct {
	Children map[Value]*Node
	Wildcard *Node
	Leaf     []*Rule
}

func newNode() *Node { return &Node{Children: make(map[Value]*Node)} }

// Compiler builds the discrimination tree once per rule set.
type Compiler struct {
	Discriminators []Discriminator
}

// NewCompiler creates a Compiler using the given discriminators in order.
func NewCompiler(discriminators []Discriminator) *Compiler {
	return &Compiler{Discriminators: discriminators}
}

// Compile builds a read-only tree from rules, shared by all concurrent
// cycles once built (spec.md §5).
func (c *Compiler) Compile(rules []*Rule) *Node {
	root := newNode()
	for _, r := range rules {
		insert(root, r, c.Discriminators, 0)
	}
	return root
}

func insert(node *Node, r *Rule, discs []Discriminator, idx int) {
	if idx == len(discs) {
		node.Leaf = append(node.Leaf, r)
		return
	}
	val := discs[idx].PatternValue(r.Pattern.P, r.Pattern.S)
	var child *Node
	if val == Wildcard {
		if node.Wildcard == nil {
			node.Wildcard = newNode()
		}
		child = node.Wildcard
	} else {
		child = node.Children[val]
		if child == nil {
			child = newNode()
			node.Children[val] = child
		}
	}
	insert(child, r, discs, idx+1)
}

// Executor traverses the compiled tree to gather candidates and runs
// unification and rule conclusion, per spec.md §4.10.
type Executor struct {
	Tree           *Node
	Discriminators []Discriminator
	Bus            *event.Bus
}

// NewExecutor binds a compiled tree and the discriminators used to build it
// to an event bus for fault reporting.
func NewExecutor(tree *Node, discriminators []Discriminator, bus *event.Bus) *Executor {
	return &Executor{Tree: tree, Discriminators: discriminators, Bus: bus}
}

// Execute runs every reachable rule against (primary, secondary) and
// returns the accepted derivations. A rule conclusion function that panics
// is recovered, reported as error.raised, and its contribution dropped; the
// remaining candidates still run.
func (e *Executor) Execute(primary, secondary *task.Task, ctx *Context) []*task.Task {
	candidates := e.gather(primary.Term, secondary.Term)

	var out []*task.Task
	for _, r := range candidates {
		out = append(out, e.tryRule(r, primary, secondary, ctx)...)
	}
	return out
}

func (e *Executor) gather(p, s *term.Term) []*Rule {
	var out []*Rule
	seen := make(map[*Rule]bool)
	var walk func(n *Node, idx int)
	walk = func(n *Node, idx int) {
		if n == nil {
			return
		}
		if idx == len(e.Discriminators) {
			for _, r := range n.Leaf {
				if !seen[r] {
					seen[r] = true
					out = append(out, r)
				}
			}
			return
		}
		val := e.Discriminators[idx].InstanceValue(p, s)
		walk(n.Wildcard, idx+1)
		walk(n.Children[val], idx+1)
	}
	walk(e.Tree, 0)
	return out
}

func (e *Executor) tryRule(r *Rule, primary, secondary *task.Task, ctx *Context) (results []*task.Task) {
	defer func() {
		if rec := recover(); rec != nil {
			e.reportFault(r.ID, fmt.Errorf("panic: %v", rec), ctx)
			results = nil
		}
	}()

	sub, err := unify.Unify(r.Pattern.P, primary.Term, unify.Substitution{})
	if err != nil {
		return nil
	}
	sub, err = unify.Unify(r.Pattern.S, secondary.Term, sub)
	if err != nil {
		return nil
	}

	if stamp.IsCyclic(primary.Stamp, secondary.Stamp) {
		return nil // CyclicDerivation: silent rejection, no event (spec.md §7)
	}

	derived, err := r.Conclude(sub, primary, secondary, ctx)
	if err != nil {
		e.reportFault(r.ID, err, ctx)
		return nil
	}
	for _, d := range derived {
		e.Bus.Publish(event.Event{Kind: event.Derivation, Term: d.Term.String(), Cycle: ctx.Cycle})
	}
	return derived
}

func (e *Executor) reportFault(ruleID string, cause error, ctx *Context) {
	fault := &kernelerr.RuleExecutionFault{RuleID: ruleID, Cause: cause}
	var cycle int64
	if ctx != nil {
		cycle = ctx.Cycle
	}
	e.Bus.Publish(event.Event{
		Kind:    event.ErrorRaised,
		Cycle:   cycle,
		Payload: map[string]any{"error": fault.Error(), "rule": ruleID},
	})
}
