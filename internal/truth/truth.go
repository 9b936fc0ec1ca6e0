// Package truth implements the NAL evidential truth-value arithmetic: pure,
// total functions mapping premise truths to a conclusion truth.
package truth

import "math"

// Truth is an evidential truth value: frequency is the positive-evidence
// ratio, confidence is w/(w+k) for evidence amount w and personality
// parameter k.
//
// Invariant: Freq is always in [0,1]; Conf is always in [0,1).
type Truth struct {
	Freq float64
	Conf float64
}

// StructuralWeakening is the fixed confidence-discount factor applied when
// decomposing a conjunction (spec.md §4.2 structural_deduction).
const StructuralWeakening = 0.9

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// confFromWeight converts an evidence amount to a confidence, always < 1.
func confFromWeight(w, k float64) float64 {
	if w <= 0 {
		return 0
	}
	return w / (w + k)
}

func weightFromConf(c float64) float64 {
	if c >= 1 {
		// Guarded by the Conf<1 invariant elsewhere; defensive clamp only.
		c = 0.999999
	}
	return c / (1 - c)
}

// Deduction: f = f1*f2, c = f1*f2*c1*c2.
func Deduction(a, b Truth) Truth {
	f := a.Freq * b.Freq
	c := a.Freq * b.Freq * a.Conf * b.Conf
	return Truth{Freq: clamp01(f), Conf: clamp01(c)}
}

// Induction produces a belief about the second premise's subject from the
// first premise's predicate relation, using the asymmetric w formula.
func Induction(a, b Truth, k float64) (Truth, bool) {
	return asymmetric(a.Freq, a.Conf, b.Conf, k)
}

// Abduction mirrors Induction with premise roles swapped.
func Abduction(a, b Truth, k float64) (Truth, bool) {
	return asymmetric(b.Freq, a.Conf, b.Conf, k)
}

// asymmetric implements w = f2*c1*c2/(f2*c1*c2+k), f = f2 (premise frequency
// carried through), shared by Induction and Abduction.
func asymmetric(f2, c1, c2, k float64) (Truth, bool) {
	w := f2 * c1 * c2
	c := confFromWeight(w, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(f2), Conf: clamp01(c)}, true
}

// Revision merges two truths about the same statement derived from disjoint
// evidence. Callers MUST have already established stamp disjointness
// (spec.md §4.2, §9 Open Questions) — Revision itself has no way to check
// this and trusts the caller.
func Revision(a, b Truth, k float64) (Truth, bool) {
	w1 := weightFromConf(a.Conf)
	w2 := weightFromConf(b.Conf)
	sum := w1 + w2
	if sum <= 0 {
		return Truth{}, false
	}
	f := (w1*a.Freq + w2*b.Freq) / sum
	c := confFromWeight(sum, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(f), Conf: clamp01(c)}, true
}

// Comparison estimates the degree of similarity implied by shared evidence
// for two statements with a common subject or predicate.
func Comparison(a, b Truth, k float64) (Truth, bool) {
	f := a.Freq * b.Freq
	denom := a.Freq + b.Freq - f
	if denom <= 0 {
		return Truth{}, false
	}
	fOut := f / denom
	w := denom * a.Conf * b.Conf
	c := confFromWeight(w, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(fOut), Conf: clamp01(c)}, true
}

// Analogy propagates a's truth through b's similarity-derived confidence.
func Analogy(a, b Truth) (Truth, bool) {
	f := a.Freq * b.Freq
	c := a.Conf * b.Conf * b.Freq
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(f), Conf: clamp01(c)}, true
}

// Resemblance strengthens a similarity statement from two premises sharing
// structure; symmetric in its inputs.
func Resemblance(a, b Truth, k float64) (Truth, bool) {
	f := a.Freq * b.Freq
	w := f * a.Conf * b.Conf
	c := confFromWeight(w, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(f), Conf: clamp01(c)}, true
}

// Contraposition derives ((!P ==> !S)) truth from a (P ==> S) premise.
func Contraposition(a Truth, k float64) (Truth, bool) {
	f := 0.0
	w := (1 - a.Freq) * a.Conf
	c := confFromWeight(w, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: clamp01(f), Conf: clamp01(c)}, true
}

// Conversion derives the converse relation (S --> P) from (P --> S).
func Conversion(a Truth, k float64) (Truth, bool) {
	w := a.Freq * a.Conf
	c := confFromWeight(w, k)
	if c <= 0 {
		return Truth{}, false
	}
	return Truth{Freq: 1.0, Conf: clamp01(c)}, true
}

// StructuralDeduction decomposes a compound statement (e.g. a conjunct of a
// conjunction) carrying the parent's truth forward with a fixed confidence
// weakening, per spec.md §4.2.
func StructuralDeduction(parent Truth) Truth {
	return Truth{Freq: parent.Freq, Conf: clamp01(parent.Conf * StructuralWeakening)}
}

// Expectation is the standard NARS decision-theoretic projection of a truth
// value onto a single scalar. Budget derivation and Query do not use it.
func Expectation(t Truth) float64 {
	return t.Conf*(t.Freq-0.5) + 0.5
}

// Valid reports whether t satisfies the kernel-wide truth invariants: no
// NaN, Freq in [0,1], Conf in [0,1).
func Valid(t Truth) bool {
	if math.IsNaN(t.Freq) || math.IsNaN(t.Conf) {
		return false
	}
	return t.Freq >= 0 && t.Freq <= 1 && t.Conf >= 0 && t.Conf < 1
}
