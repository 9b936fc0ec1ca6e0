package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternAtomic_SameNameReturnsIdenticalPointer(t *testing.T) {
	s := NewStore()
	a := s.InternAtomic("bird")
	b := s.InternAtomic("bird")
	assert.True(t, a.Equals(b))
	assert.Equal(t, "bird", a.String())
}

func TestInternAtomic_DifferentNamesAreDistinct(t *testing.T) {
	s := NewStore()
	a := s.InternAtomic("bird")
	b := s.InternAtomic("robin")
	assert.False(t, a.Equals(b))
}

func TestInternVariable_CanonicalFormUsesPrefix(t *testing.T) {
	s := NewStore()
	v := s.InternVariable("x", Independent)
	assert.Equal(t, "$x", v.String())
	assert.True(t, v.IsVariable())
}

func TestInternCompound_InheritanceCanonicalForm(t *testing.T) {
	s := NewStore()
	robin := s.InternAtomic("robin")
	bird := s.InternAtomic("bird")
	inh, err := s.InternCompound(Inheritance, []*Term{robin, bird})
	require.NoError(t, err)
	assert.Equal(t, "<robin --> bird>", inh.String())
	assert.True(t, inh.IsCompound())
}

func TestInternCompound_WrongArityReturnsArityError(t *testing.T) {
	s := NewStore()
	robin := s.InternAtomic("robin")
	_, err := s.InternCompound(Inheritance, []*Term{robin})
	require.Error(t, err)
	var arityErr *ArityError
	assert.ErrorAs(t, err, &arityErr)
}

func TestInternCompound_CommutativeOperatorCanonicalizesOrder(t *testing.T) {
	s := NewStore()
	a := s.InternAtomic("a")
	b := s.InternAtomic("b")
	ab, err := s.InternCompound(Conjunction, []*Term{a, b})
	require.NoError(t, err)
	ba, err := s.InternCompound(Conjunction, []*Term{b, a})
	require.NoError(t, err)
	assert.True(t, ab.Equals(ba))
}

func TestInternCompound_DedupesRepeatedComponents(t *testing.T) {
	s := NewStore()
	a := s.InternAtomic("a")
	both, err := s.InternCompound(Conjunction, []*Term{a, a})
	require.NoError(t, err)
	assert.Len(t, both.Components(), 1)
}

func TestInternCompound_IdenticalStructureIsSameTerm(t *testing.T) {
	s := NewStore()
	robin := s.InternAtomic("robin")
	bird := s.InternAtomic("bird")
	a, err := s.InternCompound(Inheritance, []*Term{robin, bird})
	require.NoError(t, err)
	b, err := s.InternCompound(Inheritance, []*Term{robin, bird})
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
	assert.Equal(t, 3, s.Size()) // two atomics plus one distinct compound
}

func TestContains_FindsSubterm(t *testing.T) {
	s := NewStore()
	robin := s.InternAtomic("robin")
	bird := s.InternAtomic("bird")
	inh, err := s.InternCompound(Inheritance, []*Term{robin, bird})
	require.NoError(t, err)
	assert.True(t, Contains(inh, robin))
	assert.True(t, Contains(inh, inh))
	assert.False(t, Contains(inh, s.InternAtomic("cat")))
}

func TestSweep_RemovesUnreachableTerms(t *testing.T) {
	s := NewStore()
	kept := s.InternAtomic("kept")
	s.InternAtomic("orphan")
	s.Sweep([]*Term{kept})
	assert.Equal(t, 1, s.Size())
}

func TestWalk_VisitsEveryComponent(t *testing.T) {
	s := NewStore()
	robin := s.InternAtomic("robin")
	bird := s.InternAtomic("bird")
	inh, err := s.InternCompound(Inheritance, []*Term{robin, bird})
	require.NoError(t, err)

	var visited []string
	Walk(inh, func(tm *Term) { visited = append(visited, tm.String()) })
	assert.ElementsMatch(t, []string{"<robin --> bird>", "robin", "bird"}, visited)
}
