// Package unify implements variable matching between a rule pattern term
// and a ground term, with occurs-check and bounded commutative-permutation
// search.
//
// Grounded on the miniKanren-style term-walking/copying idiom in
// _examples/other_examples/15d8f1a3_gitrdm-gokando__pkg-minikanren-term_utils.go.go
// (fresh-variable substitution maps, recursive structural walks), adapted
// from logic-programming terms to the kernel's interned Term tree.
package unify

import (
	"errors"
	"fmt"

	"nars-kernel/internal/term"
)

// MismatchKind classifies why unification failed.
type MismatchKind int

const (
	MismatchOperator MismatchKind = iota
	MismatchArity
	MismatchAtom
	MismatchOccursCheck
	MismatchQueryVarBinding
	MismatchPermutationLimit
)

// MismatchError is returned by Unify on failure.
type MismatchError struct {
	Kind MismatchKind
	Msg  string
}

func (e *MismatchError) Error() string { return "unify: " + e.Msg }

var errNoMatch = errors.New("unify: no permutation matched")

// Substitution maps a pattern variable's interned term to the ground term
// it is bound to.
type Substitution map[*term.Term]*term.Term

// Clone returns a shallow copy of s.
func (s Substitution) Clone() Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Walk follows t through s until reaching an unbound variable or a
// non-variable term.
func (s Substitution) Walk(t *term.Term) *term.Term {
	for t.IsVariable() {
		next, ok := s[t]
		if !ok {
			return t
		}
		t = next
	}
	return t
}

// MaxCommutativePermutations bounds the factorial search for commutative
// compound unification (spec.md §4.8: "≤ 4!").
const MaxCommutativePermutations = 24

// Unify attempts to unify pattern against ground, extending existing with
// any new bindings. It never mutates existing; it returns a fresh
// Substitution on success.
func Unify(pattern, ground *term.Term, existing Substitution) (Substitution, error) {
	sub := existing.Clone()
	if ok, err := unify(pattern, ground, sub); !ok {
		return nil, err
	} else {
		return sub, nil
	}
}

func unify(pattern, ground *term.Term, sub Substitution) (bool, error) {
	pattern = sub.Walk(pattern)
	ground = sub.Walk(ground)

	if pattern == ground {
		return true, nil
	}

	if pattern.IsVariable() {
		return bindVariable(pattern, ground, sub)
	}
	if ground.IsVariable() {
		// A ground-side variable may only appear when matching two patterns
		// against each other (rule-to-rule); treat symmetrically.
		return bindVariable(ground, pattern, sub)
	}

	if pattern.IsAtomic() || ground.IsAtomic() {
		return false, &MismatchError{Kind: MismatchAtom, Msg: fmt.Sprintf("%s != %s", pattern, ground)}
	}

	// Both compound.
	if pattern.Operator() != ground.Operator() {
		return false, &MismatchError{Kind: MismatchOperator, Msg: fmt.Sprintf("%s != %s", pattern.Operator(), ground.Operator())}
	}
	pc, gc := pattern.Components(), ground.Components()
	if len(pc) != len(gc) {
		return false, &MismatchError{Kind: MismatchArity, Msg: "component count mismatch"}
	}

	if commutative(pattern.Operator()) {
		return unifyCommutative(pc, gc, sub)
	}
	return unifyPositional(pc, gc, sub)
}

func unifyPositional(pc, gc []*term.Term, sub Substitution) (bool, error) {
	for i := range pc {
		ok, err := unify(pc[i], gc[i], sub)
		if !ok {
			return false, err
		}
	}
	return true, nil
}

// unifyCommutative tries component permutations up to
// MaxCommutativePermutations, per spec.md §4.8.
func unifyCommutative(pc, gc []*term.Term, sub Substitution) (bool, error) {
	n := len(gc)
	if factorial(n) > MaxCommutativePermutations {
		// Still attempt positional match as a cheap best-effort when the
		// permutation space exceeds the bound, rather than refusing outright.
		if ok, _ := unifyPositional(pc, gc, sub); ok {
			return true, nil
		}
		return false, &MismatchError{Kind: MismatchPermutationLimit, Msg: "commutative arity exceeds permutation bound"}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var lastErr error
	found := false
	permute(perm, 0, func(order []int) bool {
		trial := sub.Clone()
		ok := true
		for i, pIdx := range order {
			r, err := unify(pc[i], gc[pIdx], trial)
			if !ok || !r {
				ok = false
				lastErr = err
				break
			}
		}
		if ok {
			for k, v := range trial {
				sub[k] = v
			}
			found = true
			return true // stop searching
		}
		return false
	})

	if !found {
		if lastErr == nil {
			lastErr = errNoMatch
		}
		return false, &MismatchError{Kind: MismatchAtom, Msg: lastErr.Error()}
	}
	return true, nil
}

func permute(a []int, k int, visit func([]int) bool) bool {
	if k == len(a) {
		return visit(append([]int(nil), a...))
	}
	for i := k; i < len(a); i++ {
		a[k], a[i] = a[i], a[k]
		if permute(a, k+1, visit) {
			a[k], a[i] = a[i], a[k]
			return true
		}
		a[k], a[i] = a[i], a[k]
	}
	return false
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

func commutative(op term.Operator) bool {
	switch op {
	case term.Similarity, term.Equivalence, term.Conjunction, term.Disjunction, term.Intersection, term.Union:
		return true
	default:
		return false
	}
}

// bindVariable binds variable v to value, enforcing the occurs check and
// the query-variable rule (spec.md §4.8: query variables may only be
// bound, never matched against another variable).
func bindVariable(v, value *term.Term, sub Substitution) (bool, error) {
	if value.IsVariable() {
		if v.VarKind() == term.Query || value.VarKind() == term.Query {
			return false, &MismatchError{Kind: MismatchQueryVarBinding, Msg: "query variable cannot match another variable"}
		}
	}
	if term.Contains(value, v) {
		return false, &MismatchError{Kind: MismatchOccursCheck, Msg: fmt.Sprintf("%s occurs in %s", v, value)}
	}
	sub[v] = value
	return true, nil
}

// Substitute rebuilds pattern with every bound variable replaced by its
// binding, re-interning any new compound shape through store.
func Substitute(store *term.Store, pattern *term.Term, sub Substitution) (*term.Term, error) {
	walked := sub.Walk(pattern)
	if walked.IsVariable() {
		return walked, nil // unbound variable: left as-is
	}
	if walked.IsAtomic() {
		return walked, nil
	}

	components := walked.Components()
	newComponents := make([]*term.Term, len(components))
	for i, c := range components {
		nc, err := Substitute(store, c, sub)
		if err != nil {
			return nil, err
		}
		newComponents[i] = nc
	}
	return store.InternCompound(walked.Operator(), newComponents)
}
