package truth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduction_MultipliesFreqAndConf(t *testing.T) {
	a := Truth{Freq: 0.9, Conf: 0.9}
	b := Truth{Freq: 0.8, Conf: 0.8}
	out := Deduction(a, b)
	assert.InDelta(t, 0.72, out.Freq, 1e-9)
	assert.InDelta(t, 0.9*0.8*0.9*0.8, out.Conf, 1e-9)
}

func TestInduction_ZeroConfidenceFailsGracefully(t *testing.T) {
	a := Truth{Freq: 0.9, Conf: 0}
	b := Truth{Freq: 0.9, Conf: 0.9}
	_, ok := Induction(a, b, 1.0)
	assert.False(t, ok)
}

func TestRevision_MergesDisjointEvidence(t *testing.T) {
	a := Truth{Freq: 1.0, Conf: 0.9}
	b := Truth{Freq: 1.0, Conf: 0.9}
	out, ok := Revision(a, b, 1.0)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, out.Freq, 1e-9)
	assert.Greater(t, out.Conf, a.Conf)
}

func TestRevision_DisagreeingFreqPullsTowardMean(t *testing.T) {
	a := Truth{Freq: 1.0, Conf: 0.9}
	b := Truth{Freq: 0.0, Conf: 0.9}
	out, ok := Revision(a, b, 1.0)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, out.Freq, 1e-9)
}

func TestContraposition_NegatesFrequency(t *testing.T) {
	a := Truth{Freq: 0.9, Conf: 0.9}
	out, ok := Contraposition(a, 1.0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, out.Freq)
}

func TestConversion_AlwaysYieldsFrequencyOne(t *testing.T) {
	a := Truth{Freq: 0.9, Conf: 0.9}
	out, ok := Conversion(a, 1.0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, out.Freq)
}

func TestStructuralDeduction_WeakensConfidenceOnly(t *testing.T) {
	parent := Truth{Freq: 0.8, Conf: 0.9}
	out := StructuralDeduction(parent)
	assert.Equal(t, parent.Freq, out.Freq)
	assert.InDelta(t, 0.9*StructuralWeakening, out.Conf, 1e-9)
}

func TestExpectation_HalfFrequencyYieldsHalfRegardlessOfConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, Expectation(Truth{Freq: 0.5, Conf: 0.9}), 1e-9)
}

func TestExpectation_FullConfidenceTracksFrequency(t *testing.T) {
	assert.InDelta(t, 0.9, Expectation(Truth{Freq: 0.9, Conf: 1.0}), 1e-9)
}

func TestValid_RejectsNaNAndOutOfRange(t *testing.T) {
	assert.False(t, Valid(Truth{Freq: math.NaN(), Conf: 0.5}))
	assert.False(t, Valid(Truth{Freq: 1.5, Conf: 0.5}))
	assert.False(t, Valid(Truth{Freq: 0.5, Conf: 1.0}))
	assert.True(t, Valid(Truth{Freq: 0.5, Conf: 0.5}))
}
