package similarity

import (
	"errors"
	"strings"

	"github.com/textguard/textguard/internal/textnorm"
	"github.com/textguard/textguard/pkg/models"
)

// DefaultShingleSize is the word length of a shingle.
const DefaultShingleSize = 5

// ErrInvalidShingleSize reports a non-positive shingle size.
var ErrInvalidShingleSize = errors.New("similarity: shingle size must be positive")

// ShingleIndex holds every k-word shingle of a document keyed by text, mapping
// to the starting word index of each occurrence. Shingles whose character span
// lies fully inside an exclusion range are not indexed.
type ShingleIndex struct {
	k         int
	wordCount int
	positions map[string][]int
}

// NewShingleIndex builds the shingle index of a tokenized document.
// Exclusion ranges use the same byte offsets the tokenizer produced.
func NewShingleIndex(tokens []textnorm.Token, k int, excluded []models.ExclusionRange) (*ShingleIndex, error) {
	if k <= 0 {
		return nil, ErrInvalidShingleSize
	}

	idx := &ShingleIndex{
		k:         k,
		wordCount: len(tokens),
		positions: make(map[string][]int),
	}

	if len(tokens) < k {
		return idx, nil
	}

	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}

	for i := 0; i+k <= len(tokens); i++ {
		if isExcluded(tokens[i].Start, tokens[i+k-1].End, excluded) {
			continue
		}
		key := strings.Join(words[i:i+k], " ")
		idx.positions[key] = append(idx.positions[key], i)
	}

	return idx, nil
}

// Coverage measures what fraction of the document's words fall inside a
// shingle that also appears in source, as a 0-100 percentage. The measure is
// deliberately asymmetric: it asks how much of the document is echoed in the
// source, not the reverse.
func (idx *ShingleIndex) Coverage(source string) float64 {
	if idx.wordCount == 0 || len(idx.positions) == 0 {
		return 0
	}

	sourceWords := textnorm.Words(source)
	if len(sourceWords) < idx.k {
		return 0
	}

	covered := make(map[int]struct{})
	for i := 0; i+idx.k <= len(sourceWords); i++ {
		key := strings.Join(sourceWords[i:i+idx.k], " ")
		for _, start := range idx.positions[key] {
			for w := start; w < start+idx.k; w++ {
				covered[w] = struct{}{}
			}
		}
	}

	return float64(len(covered)) / float64(idx.wordCount) * 100
}

// WordCount returns the number of document words behind the index.
func (idx *ShingleIndex) WordCount() int {
	return idx.wordCount
}

func isExcluded(start, end int, excluded []models.ExclusionRange) bool {
	for _, r := range excluded {
		if r.Contains(start, end) {
			return true
		}
	}
	return false
}
