// Package task defines the immutable sentence record that flows through the
// reasoning kernel: a term annotated with punctuation, truth, budget and
// evidential stamp.
package task

import (
	"github.com/google/uuid"

	"nars-kernel/internal/budget"
	"nars-kernel/internal/stamp"
	"nars-kernel/internal/term"
	"nars-kernel/internal/truth"
)

// Punctuation is the sentence type marker from the Narsese grammar.
type Punctuation rune

const (
	Belief   Punctuation = '.'
	Question Punctuation = '?'
	Goal     Punctuation = '!'
	Quest    Punctuation = '@'
)

// Tense is a supplemented field (SPEC_FULL.md §4): absent from the
// distilled grammar, defaults to Eternal so it never changes the behavior
// of any spec.md end-to-end scenario.
type Tense int

const (
	Eternal Tense = iota
	Past
	Present
	Future
)

// Task is an immutable sentence. Term and Stamp, once set, are never
// mutated; Budget is logically mutable over a task's lifetime (decay,
// merge) but every mutation produces a new Task value rather than editing
// one in place, so a Task held by one goroutine is never invalidated out
// from under it.
type Task struct {
	ID     uuid.UUID
	Term   *term.Term
	Punct  Punctuation
	Truth  *truth.Truth // nil for questions and quests
	Budget budget.Budget
	Stamp  stamp.Stamp
	Tense  Tense
}

// New constructs a Task. t may be nil only when punct is Question or Quest.
func New(term *term.Term, punct Punctuation, t *truth.Truth, b budget.Budget, s stamp.Stamp) *Task {
	return &Task{
		ID:     uuid.New(),
		Term:   term,
		Punct:  punct,
		Truth:  t,
		Budget: b,
		Stamp:  s,
		Tense:  Eternal,
	}
}

// WithBudget returns a copy of the task with a new Budget; everything else,
// including ID, is shared. Used by decay/merge so a Task's identity survives
// attentional changes while the Term/Stamp invariant (never mutated) holds.
func (t *Task) WithBudget(b budget.Budget) *Task {
	cp := *t
	cp.Budget = b
	return &cp
}

// IsBelief reports whether the task carries evidential truth.
func (t *Task) IsBelief() bool { return t.Punct == Belief }

// IsQuestion reports whether the task is a question (no truth).
func (t *Task) IsQuestion() bool { return t.Punct == Question }

// IsGoal reports whether the task is a goal.
func (t *Task) IsGoal() bool { return t.Punct == Goal }

// IsQuest reports whether the task is a quest.
func (t *Task) IsQuest() bool { return t.Punct == Quest }

// Key is the content key used by Bag for deduplication: a task is unique by
// its term plus punctuation, not by ID (so revision/choice logic can find
// the existing belief on the same term).
func (t *Task) Key() string {
	return string(t.Punct) + ":" + t.Term.String()
}

// Priority implements bag.Item.
func (t *Task) Priority() float64 { return t.Budget.Priority }
