package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "drops single characters", text: "a bb c dd", want: []string{"bb", "dd"}},
		{name: "splits on punctuation", text: "10% off acme, snacks!", want: []string{"10", "off", "acme", "snacks"}},
		{name: "keeps underscores", text: "foo_bar", want: []string{"foo_bar"}},
		{name: "lower-cases", text: "ACME", want: []string{"acme"}},
		{name: "unicode letters", text: "café crème", want: []string{"café", "crème"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFit_Similarities(t *testing.T) {
	m := Fit([]string{"apple banana", "apple cherry", ""})
	require.False(t, m.Degenerate())
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.VocabularySize())

	sims := m.Similarities("banana")
	require.Len(t, sims, 3)

	idfApple := math.Log(4.0/3.0) + 1
	idfBanana := math.Log(4.0/2.0) + 1
	want := idfBanana / math.Sqrt(idfApple*idfApple+idfBanana*idfBanana)

	assert.InDelta(t, want, sims[0], 1e-12)
	assert.Equal(t, 0.0, sims[1])
	assert.Equal(t, 0.0, sims[2])
}

func TestFit_ExactMatchScoresOne(t *testing.T) {
	m := Fit([]string{"acme snack", "globex cereal"})
	sims := m.Similarities("acme snack")
	assert.InDelta(t, 1.0, sims[0], 1e-12)
	assert.Equal(t, 0.0, sims[1])
}

func TestFit_UnknownTermsIgnored(t *testing.T) {
	m := Fit([]string{"acme snack", "globex cereal"})
	assert.Equal(t, []float64{0, 0}, m.Similarities("initech"))

	sims := m.Similarities("acme initech")
	assert.InDelta(t, Cosine(m.Transform("acme"), m.Transform("acme snack")), sims[0], 1e-12)
}

func TestFit_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		docs []string
	}{
		{name: "no documents", docs: nil},
		{name: "single non-empty document", docs: []string{"acme", "", "  "}},
		{name: "all empty", docs: []string{"", ""}},
		{name: "empty vocabulary", docs: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Fit(tt.docs)
			assert.True(t, m.Degenerate())
			assert.Zero(t, m.VocabularySize())
			sims := m.Similarities("acme")
			assert.Len(t, sims, len(tt.docs))
			for _, s := range sims {
				assert.Equal(t, 0.0, s)
			}
		})
	}
}

func TestSimilarities_Range(t *testing.T) {
	m := Fit([]string{"acme acme snack", "snack bar", "cereal", "acme cereal bar"})
	for _, q := range []string{"acme", "snack bar", "cereal acme", "", "zzz"} {
		for _, s := range m.Similarities(q) {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestSimilarities_FreshSlice(t *testing.T) {
	m := Fit([]string{"acme", "globex"})
	a := m.Similarities("acme")
	a[0] = 42
	b := m.Similarities("acme")
	assert.InDelta(t, 1.0, b[0], 1e-12)
}

func TestCosine(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(Vector{}, Vector{0: 1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.InDelta(t, 1.0, Cosine(Vector{0: 2}, Vector{0: 5}), 1e-12)
	assert.Equal(t, 0.0, Cosine(Vector{0: 1}, Vector{1: 1}))
	assert.InDelta(t, 1/math.Sqrt(2), Cosine(Vector{0: 1}, Vector{0: 1, 1: 1}), 1e-12)
}
