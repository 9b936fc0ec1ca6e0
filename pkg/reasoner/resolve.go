// Package reasoner assembles the kernel subsystems (term store, memory,
// rule executor, premise source, reasoning cycle, event bus) behind a
// single façade, the entry point an embedding process or cmd/server uses.
package reasoner

import (
	"fmt"

	"nars-kernel/internal/kernelerr"
	"nars-kernel/internal/narsese"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
)

// copulaOperator maps a narsese.Copula onto its term.Operator. Union has no
// teacher-inherited analogue; it was added to internal/term alongside
// Intersection so the `|` grammar production (spec.md §6) has somewhere to
// land.
var copulaOperator = map[narsese.Copula]term.Operator{
	narsese.Inheritance: term.Inheritance,
	narsese.Similarity:  term.Similarity,
	narsese.Implication: term.Implication,
	narsese.Equivalence: term.Equivalence,
	narsese.Conjunction: term.Conjunction,
	narsese.Disjunction: term.Disjunction,
	narsese.Product:     term.Product,
	narsese.Intersect:   term.Intersection,
	narsese.Union:       term.Union,
	narsese.Difference:  term.Difference,
	narsese.Negation:    term.Negation,
}

var varPrefixKind = map[narsese.VariablePrefix]term.VarKind{
	narsese.PrefixIndependent: term.Independent,
	narsese.PrefixDependent:   term.Dependent,
	narsese.PrefixQuery:       term.Query,
}

// resolveTerm interns ast into store, translating the parsed AST shape into
// the kernel's interned Term form. This is AST-to-term translation, not
// string parsing: narsese text parsing itself stays out of scope (spec.md
// §1 Non-goals); a caller has already turned text into a TermAST.
func resolveTerm(store *term.Store, ast *narsese.TermAST) (*term.Term, error) {
	if ast == nil {
		return nil, &kernelerr.InputError{Reason: "nil term"}
	}

	if ast.IsVar {
		kind, ok := varPrefixKind[ast.VarPrefix]
		if !ok {
			return nil, &kernelerr.InputError{Reason: fmt.Sprintf("unrecognized variable prefix %q", ast.VarPrefix)}
		}
		return store.InternVariable(ast.Name, kind), nil
	}

	if ast.IsAtomic() {
		return store.InternAtomic(ast.Name), nil
	}

	op, ok := copulaOperator[ast.Copula]
	if !ok {
		return nil, &kernelerr.InputError{Reason: fmt.Sprintf("unsupported copula %q", ast.Copula), Cause: kernelerr.ErrUnsupported}
	}

	components := make([]*term.Term, 0, len(ast.Operands))
	for _, operand := range ast.Operands {
		c, err := resolveTerm(store, operand)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}

	t, err := store.InternCompound(op, components)
	if err != nil {
		return nil, &kernelerr.InputError{Reason: "malformed compound term", Cause: err}
	}
	return t, nil
}

// resolveTruth converts the optional truth suffix; nil for questions and
// quests, which carry no truth value.
func resolveTruth(ast *narsese.TruthAST) *truth.Truth {
	if ast == nil {
		return nil
	}
	return &truth.Truth{Freq: ast.Frequency, Conf: ast.Confidence}
}
