package classifier

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// tokenize lowercases, splits on non-alphanumeric runes and stems each
// token. Mirrors the tokenizer the model was fitted with (Porter
// stemming over word tokens).
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, english.Stem(f, false))
	}
	return tokens
}

// ngrams expands stemmed tokens into space-joined n-grams for
// n in [min, max].
func ngrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	var out []string
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// vectorizer maps text to a sparse l2-normalized TF-IDF vector over a
// fixed vocabulary.
type vectorizer struct {
	vocab    map[string]int
	idf      []float64
	ngramMin int
	ngramMax int
}

// transform returns the sparse TF-IDF representation of text.
// Terms outside the vocabulary are ignored.
func (v *vectorizer) transform(text string) map[int]float64 {
	vec := make(map[int]float64)
	for _, term := range ngrams(tokenize(text), v.ngramMin, v.ngramMax) {
		idx, ok := v.vocab[term]
		if !ok {
			continue
		}
		vec[idx]++
	}
	var norm float64
	for idx := range vec {
		vec[idx] *= v.idf[idx]
		norm += vec[idx] * vec[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// fitVectorizer builds a vocabulary and smoothed IDF vector from a
// document collection, matching the standard TF-IDF formulation
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func fitVectorizer(docs []string, ngramMin, ngramMax int) *vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range ngrams(tokenize(doc), ngramMin, ngramMax) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &vectorizer{
		vocab:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		ngramMin: ngramMin,
		ngramMax: ngramMax,
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
