// Standard NAL rule set: the concrete Rule values wired into a default
// Executor. Grounded on spec.md §8's end-to-end scenarios (deduction,
// syllogism on implication, structural decomposition); revision is not a
// Rule here because it is handled eagerly on belief-insert by
// internal/concept (spec.md §4.6), not by the pairwise discrimination tree.
package rule

import (
	"nars-kernel/internal/budget"
	"nars-kernel/internal/task"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
	"nars-kernel/internal/unify"
)

// StandardRules builds the default NAL rule set against store, the same
// TermStore used at runtime (rule patterns must share identity with the
// terms they are unified against).
func StandardRules(store *term.Store) []*Rule {
	m := store.InternVariable("M", term.Independent)
	p := store.InternVariable("P", term.Independent)
	s := store.InternVariable("S", term.Independent)
	a := store.InternVariable("A", term.Independent)
	c := store.InternVariable("C", term.Independent)
	z := store.InternVariable("Z", term.Independent)
	cjA := store.InternVariable("CA", term.Independent)
	cjB := store.InternVariable("CB", term.Independent)

	mustInherit := func(subj, pred *term.Term) *term.Term {
		t, err := store.InternCompound(term.Inheritance, []*term.Term{subj, pred})
		if err != nil {
			panic(err)
		}
		return t
	}
	mustImpl := func(ante, cons *term.Term) *term.Term {
		t, err := store.InternCompound(term.Implication, []*term.Term{ante, cons})
		if err != nil {
			panic(err)
		}
		return t
	}
	mustConj := func(x, y *term.Term) *term.Term {
		t, err := store.InternCompound(term.Conjunction, []*term.Term{x, y})
		if err != nil {
			panic(err)
		}
		return t
	}

	return []*Rule{
		{
			ID:           "deduction.inheritance",
			Pattern:      Pattern{P: mustInherit(m, p), S: mustInherit(s, m)},
			BasePriority: 0.8,
			Conclude:     deduceInheritance(store),
		},
		{
			ID:           "deduction.inheritance.swapped",
			Pattern:      Pattern{P: mustInherit(s, m), S: mustInherit(m, p)},
			BasePriority: 0.8,
			Conclude:     deduceInheritanceSwapped(store),
		},
		{
			ID:           "syllogism.implication",
			Pattern:      Pattern{P: mustImpl(a, c), S: a},
			BasePriority: 0.8,
			Conclude:     modusPonens(store, c),
		},
		{
			ID:           "syllogism.implication.swapped",
			Pattern:      Pattern{P: a, S: mustImpl(a, c)},
			BasePriority: 0.8,
			Conclude:     modusPonensSwapped(store, c),
		},
		{
			ID:           "decomposition.conjunction",
			Pattern:      Pattern{P: mustConj(cjA, cjB), S: z},
			BasePriority: 0.5,
			Conclude:     decomposeConjunction(store, cjA, cjB),
		},
	}
}

func deduceInheritance(store *term.Store) Conclude {
	return func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error) {
		return buildInheritanceDeduction(store, sub, secondary, primary, ctx)
	}
}

func deduceInheritanceSwapped(store *term.Store) Conclude {
	return func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error) {
		return buildInheritanceDeduction(store, sub, primary, secondary, ctx)
	}
}

// buildInheritanceDeduction derives <subjTask.subject --> predTask.predicate>
// given subjTask: <S --> M>, predTask: <M --> P>.
func buildInheritanceDeduction(store *term.Store, sub unify.Substitution, subjTask, predTask *task.Task, ctx *Context) ([]*task.Task, error) {
	if subjTask.Truth == nil || predTask.Truth == nil {
		return nil, nil
	}
	sVar := lookupVar(sub, "S")
	pVar := lookupVar(sub, "P")
	if sVar == nil || pVar == nil {
		return nil, nil
	}
	concl, err := store.InternCompound(term.Inheritance, []*term.Term{sVar, pVar})
	if err != nil {
		return nil, err
	}

	tv := truth.Deduction(*predTask.Truth, *subjTask.Truth)
	mergedStamp := subjTask.Stamp.Merge(predTask.Stamp, ctx.StampMaxLen)
	b := deriveBudget(subjTask, predTask, 0.8, concl)
	return []*task.Task{task.New(concl, task.Belief, &tv, b, mergedStamp)}, nil
}

func modusPonens(store *term.Store, consVar *term.Term) Conclude {
	return func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error) {
		return buildModusPonens(store, sub, consVar, primary, secondary, ctx)
	}
}

func modusPonensSwapped(store *term.Store, consVar *term.Term) Conclude {
	return func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error) {
		return buildModusPonens(store, sub, consVar, secondary, primary, ctx)
	}
}

// buildModusPonens derives the consequent belief from an implication task
// and a belief matching its antecedent.
func buildModusPonens(store *term.Store, sub unify.Substitution, consVar *term.Term, implTask, anteTask *task.Task, ctx *Context) ([]*task.Task, error) {
	if implTask.Truth == nil || anteTask.Truth == nil {
		return nil, nil
	}
	concl, err := unify.Substitute(store, consVar, sub)
	if err != nil {
		return nil, err
	}
	tv := truth.Deduction(*implTask.Truth, *anteTask.Truth)
	mergedStamp := implTask.Stamp.Merge(anteTask.Stamp, ctx.StampMaxLen)
	b := deriveBudget(implTask, anteTask, 0.8, concl)
	return []*task.Task{task.New(concl, task.Belief, &tv, b, mergedStamp)}, nil
}

// decomposeConjunction splits a conjunction belief into its two conjuncts,
// each weakened per truth.StructuralDeduction. The secondary premise is
// unconstrained: this is logically a single-premise rule, modeled as a
// pair-pattern with a wildcard second slot so it fits the uniform
// RuleExecutor pipeline (spec.md §4.10 step 5 explicitly allows a rule to
// return more than one conclusion).
func decomposeConjunction(store *term.Store, aVar, bVar *term.Term) Conclude {
	return func(sub unify.Substitution, primary, secondary *task.Task, ctx *Context) ([]*task.Task, error) {
		if primary.Truth == nil {
			return nil, nil
		}
		aTerm, err := unify.Substitute(store, aVar, sub)
		if err != nil {
			return nil, err
		}
		bTerm, err := unify.Substitute(store, bVar, sub)
		if err != nil {
			return nil, err
		}
		tv := truth.StructuralDeduction(*primary.Truth)
		b := deriveBudget(primary, primary, 0.5, aTerm)
		out := []*task.Task{
			task.New(aTerm, task.Belief, &tv, b, primary.Stamp),
			task.New(bTerm, task.Belief, &tv, deriveBudget(primary, primary, 0.5, bTerm), primary.Stamp),
		}
		return out, nil
	}
}

func lookupVar(sub unify.Substitution, name string) *term.Term {
	for k, v := range sub {
		if k.IsVariable() && k.Name() == name {
			return v
		}
	}
	return nil
}

func deriveBudget(a, b *task.Task, rulePriority float64, concl *term.Term) budget.Budget {
	return budget.Derive(a.Budget, b.Budget, rulePriority, concl.Complexity())
}
