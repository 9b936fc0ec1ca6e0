package mcpserver

import (
	"nars-kernel/internal/kernelerr"
	"nars-kernel/internal/narsese"
)

func termInputToAST(in TermInput) (*narsese.TermAST, error) {
	if in.Variable != "" {
		if len(in.Variable) != 1 {
			return nil, &kernelerr.InputError{Reason: "variable prefix must be one character"}
		}
		return &narsese.TermAST{IsVar: true, VarPrefix: narsese.VariablePrefix(in.Variable[0]), Name: in.Name}, nil
	}

	if in.Copula == "" {
		if in.Name == "" {
			return nil, &kernelerr.InputError{Reason: "atomic term missing name"}
		}
		return &narsese.TermAST{Name: in.Name}, nil
	}

	operands := make([]*narsese.TermAST, 0, len(in.Operands))
	for _, op := range in.Operands {
		ast, err := termInputToAST(op)
		if err != nil {
			return nil, err
		}
		operands = append(operands, ast)
	}
	return &narsese.TermAST{Copula: narsese.Copula(in.Copula), Operands: operands}, nil
}

func punctuationFromString(s string) (narsese.Punctuation, error) {
	if len(s) != 1 {
		return 0, &kernelerr.InputError{Reason: "punctuation must be one character"}
	}
	switch narsese.Punctuation(s[0]) {
	case narsese.PunctBelief, narsese.PunctQuestion, narsese.PunctGoal, narsese.PunctQuest:
		return narsese.Punctuation(s[0]), nil
	default:
		return 0, &kernelerr.InputError{Reason: "unrecognized punctuation " + s, Cause: kernelerr.ErrUnsupported}
	}
}

func truthInputToAST(in *TruthInput) *narsese.TruthAST {
	if in == nil {
		return nil
	}
	return &narsese.TruthAST{Frequency: in.Frequency, Confidence: in.Confidence}
}
