// Package budget implements the attentional Budget triple (priority,
// durability, quality) separate from evidential truth.
package budget

import "math"

// Budget is attentional metadata: priority is the current attentional
// weight, durability resists decay, quality is long-term worth.
//
// Invariant: every field stays in [0,1].
type Budget struct {
	Priority   float64
	Durability float64
	Quality    float64
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// New constructs a Budget, clamping each component into [0,1].
func New(priority, durability, quality float64) Budget {
	return Budget{Priority: clamp01(priority), Durability: clamp01(durability), Quality: clamp01(quality)}
}

// Decay multiplies priority by (1-amount), the per-cycle penalty applied to
// everything not selected this cycle.
func (b Budget) Decay(amount float64) Budget {
	return Budget{
		Priority:   clamp01(b.Priority * (1 - amount)),
		Durability: b.Durability,
		Quality:    b.Quality,
	}
}

// Merge combines two budgets for the same owner: priority takes the
// pointwise max (whichever budget is more urgent wins), durability and
// quality average.
func (b Budget) Merge(other Budget) Budget {
	return Budget{
		Priority:   clamp01(math.Max(b.Priority, other.Priority)),
		Durability: clamp01((b.Durability + other.Durability) / 2),
		Quality:    clamp01((b.Quality + other.Quality) / 2),
	}
}

// Forget applies exponential decay proportional to age and inversely
// proportional to durability: a highly durable item forgets slowly.
func (b Budget) Forget(age float64) Budget {
	if age <= 0 {
		return b
	}
	rate := 1 - b.Durability*0.9 // durability in [0,1] bounds rate in [0.1,1]
	factor := math.Exp(-rate * age)
	return Budget{
		Priority:   clamp01(b.Priority * factor),
		Durability: b.Durability,
		Quality:    b.Quality,
	}
}

// Derive computes a conclusion's budget from its two premise budgets, the
// rule's base priority, and the conclusion's structural complexity: more
// complex conclusions receive lower priority, per spec.md §4.3.
func Derive(primary, secondary Budget, rulePriority float64, complexity int) Budget {
	avgPriority := (primary.Priority + secondary.Priority) / 2 * rulePriority
	complexityPenalty := 1 / (1 + float64(complexity)/10)
	priority := avgPriority * complexityPenalty

	durability := (primary.Durability + secondary.Durability) / 2
	quality := (primary.Quality + secondary.Quality) / 2

	return New(priority, durability, quality)
}
