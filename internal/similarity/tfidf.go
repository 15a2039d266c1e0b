package similarity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/textguard/textguard/internal/textnorm"
)

// Cosine computes the pairwise term-frequency cosine similarity of two texts
// over their union vocabulary, scaled to 0-100. No corpus-wide IDF weighting
// is applied; the comparison is strictly pairwise. Zero-length input on
// either side yields 0, never NaN.
func Cosine(a, b string) float64 {
	wordsA := textnorm.Words(a)
	wordsB := textnorm.Words(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	vocab := make(map[string]int)
	for _, w := range wordsA {
		vocab[w] = 0
	}
	for _, w := range wordsB {
		vocab[w] = 0
	}

	// Fixed vocabulary order keeps the vectors aligned and the result
	// reproducible.
	terms := make([]string, 0, len(vocab))
	for w := range vocab {
		terms = append(terms, w)
	}
	sort.Strings(terms)
	for i, w := range terms {
		vocab[w] = i
	}

	vecA := termFrequencies(wordsA, vocab)
	vecB := termFrequencies(wordsB, vocab)

	dot := floats.Dot(vecA, vecB)
	normA := math.Sqrt(floats.Dot(vecA, vecA))
	normB := math.Sqrt(floats.Dot(vecB, vecB))

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * normB) * 100
}

func termFrequencies(words []string, vocab map[string]int) []float64 {
	vec := make([]float64, len(vocab))
	for _, w := range words {
		vec[vocab[w]]++
	}
	n := float64(len(words))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}
