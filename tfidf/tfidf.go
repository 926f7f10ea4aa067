// Package tfidf implements a TF-IDF vector space model with cosine similarity.
//
// A Model is fitted over a fixed collection of documents. Term weights are raw
// term counts scaled by a smoothed inverse document frequency,
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// and every vector is L2-normalized, so the cosine similarity between a query
// and a document lies in [0, 1].
//
// Tokens are maximal runs of letters, digits, marks and underscores that are
// at least two characters long. Query terms outside the fitted vocabulary are
// ignored.
//
// A Model is read-only after Fit and safe for concurrent use.
package tfidf

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// minDocuments is the fewest non-empty documents a model needs to produce
// non-zero similarities.
const minDocuments = 2

var tokenRegex = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vector is a sparse term vector keyed by vocabulary index.
type Vector map[int]float64

// Model is a fitted TF-IDF vector space over a document collection.
type Model struct {
	vocab      map[string]int
	idf        []float64
	docs       []Vector
	degenerate bool
}

// Fit builds a model over docs.
// The model is degenerate, and scores every document 0, when fewer than two
// documents are non-empty or when no document yields a token.
func Fit(docs []string) *Model {
	m := &Model{
		vocab: make(map[string]int),
		docs:  make([]Vector, len(docs)),
	}

	nonEmpty := 0
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		if strings.TrimSpace(doc) != "" {
			nonEmpty++
		}
		tokens := Tokenize(doc)
		tc := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tc[token]++
			// Indices follow first-seen order so fitting is deterministic.
			if _, ok := m.vocab[token]; !ok {
				m.vocab[token] = len(m.vocab)
			}
		}
		for term := range tc {
			df[term]++
		}
		counts[i] = tc
	}

	if nonEmpty < minDocuments || len(df) == 0 {
		m.vocab = map[string]int{}
		m.degenerate = true
		return m
	}

	n := float64(len(docs))
	m.idf = make([]float64, len(m.vocab))
	for term, idx := range m.vocab {
		m.idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for i, tc := range counts {
		m.docs[i] = m.weigh(tc)
	}
	return m
}

// Len returns the number of documents in the model.
func (m *Model) Len() int {
	return len(m.docs)
}

// Degenerate reports whether the model scores every document 0.
func (m *Model) Degenerate() bool {
	return m.degenerate
}

// VocabularySize returns the number of distinct terms in the model.
func (m *Model) VocabularySize() int {
	return len(m.vocab)
}

// Transform projects text into the model's vector space.
func (m *Model) Transform(text string) Vector {
	if m.degenerate {
		return Vector{}
	}
	tc := make(map[string]int)
	for _, token := range Tokenize(text) {
		tc[token]++
	}
	return m.weigh(tc)
}

// Similarities returns the cosine similarity of query against every document,
// in document order. The returned slice is owned by the caller.
func (m *Model) Similarities(query string) []float64 {
	out := make([]float64, len(m.docs))
	if m.degenerate {
		return out
	}
	q := m.Transform(query)
	if len(q) == 0 {
		return out
	}
	for i, doc := range m.docs {
		out[i] = Cosine(q, doc)
	}
	return out
}

// weigh turns term counts into an L2-normalized TF-IDF vector.
// Terms outside the vocabulary are dropped.
func (m *Model) weigh(counts map[string]int) Vector {
	v := make(Vector, len(counts))
	var norm float64
	for term, count := range counts {
		idx, ok := m.vocab[term]
		if !ok {
			continue
		}
		w := float64(count) * m.idf[idx]
		v[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for idx := range v {
		v[idx] /= norm
	}
	return v
}

// Cosine returns the cosine similarity of a and b, clamped to [0, 1].
// A zero vector has similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for idx, wa := range a {
		dot += wa * b[idx]
		na += wa * wa
	}
	for _, wb := range b {
		nb += wb * wb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

// Tokenize lower-cases text and splits it into terms of two or more characters.
func Tokenize(text string) []string {
	matches := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := matches[:0]
	for _, match := range matches {
		if utf8.RuneCountInString(match) >= 2 {
			tokens = append(tokens, match)
		}
	}
	return tokens
}
