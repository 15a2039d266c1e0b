// Package stylometry computes normalized writing-style fingerprints and flags
// sections whose style deviates from the rest of the document. Its output is
// informational and never feeds the overlap score.
package stylometry

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/textguard/textguard/internal/textnorm"
	"github.com/textguard/textguard/pkg/models"
)

// Normalization constants. Each feature divides by the value considered an
// extreme for ordinary prose, then clamps to [0, 1].
const (
	maxAvgSentenceWords   = 40.0
	maxSyllablesPerWord   = 4.0
	maxPassivePerSentence = 1.0
	transitionScale       = 10.0
	maxPunctPerSentence   = 5.0
)

var (
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	passiveRe  = regexp.MustCompile(`(?i)\b(?:is|are|was|were|be|been|being)\s+\w+(?:ed|en)\b`)
	vowelRe    = regexp.MustCompile(`(?i)[aeiouy]+`)
)

var transitionWords = map[string]bool{
	"however": true, "therefore": true, "furthermore": true, "moreover": true,
	"nevertheless": true, "consequently": true, "additionally": true,
	"meanwhile": true, "subsequently": true, "accordingly": true,
	"nonetheless": true, "conversely": true, "similarly": true,
	"specifically": true, "ultimately": true,
}

// Compute builds the 7-dimension fingerprint of a text. Every feature is in
// [0, 1]. Empty input yields the zero fingerprint.
func Compute(text string) models.StyleFingerprint {
	words := textnorm.Words(text)
	if len(words) == 0 {
		return models.StyleFingerprint{}
	}

	sentences := splitSentences(text)
	sentenceCount := float64(len(sentences))
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	unique := float64(textnorm.UniqueWords(words))
	avgSentence := float64(len(words)) / sentenceCount

	syllables := 0
	transitions := 0
	for _, w := range words {
		syllables += countSyllables(w)
		if transitionWords[w] {
			transitions++
		}
	}

	passives := float64(len(passiveRe.FindAllString(text, -1)))
	punct := float64(strings.Count(text, ",") + strings.Count(text, ";") +
		strings.Count(text, "—") + strings.Count(text, " - "))

	return models.StyleFingerprint{
		VocabularyRichness: clamp01(unique / float64(len(words))),
		AvgSentenceLength:  clamp01(avgSentence / maxAvgSentenceWords),
		SyllableComplexity: clamp01(float64(syllables) / float64(len(words)) / maxSyllablesPerWord),
		PassiveVoiceRatio:  clamp01(passives / sentenceCount / maxPassivePerSentence),
		TransitionDensity:  clamp01(float64(transitions) / float64(len(words)) * transitionScale),
		PunctuationDensity: clamp01(punct / sentenceCount / maxPunctPerSentence),
		ParagraphVariation: paragraphVariation(text),
	}
}

// divergenceScale maps mean feature divergence to the similarity scale: a
// mean absolute difference of half the feature range already means the two
// voices have nothing in common.
const divergenceScale = 2.0

// Similarity compares two fingerprints via mean absolute difference across
// the 7 dimensions, converted to a 0-100 score.
func Similarity(a, b models.StyleFingerprint) float64 {
	va, vb := a.Vector(), b.Vector()
	sum := 0.0
	for i := range va {
		sum += math.Abs(va[i] - vb[i])
	}
	divergence := sum / float64(len(va)) * divergenceScale
	if divergence > 1 {
		divergence = 1
	}
	return (1 - divergence) * 100
}

// paragraphVariation measures how unevenly paragraph lengths are distributed,
// as the coefficient of variation of paragraph word counts.
func paragraphVariation(text string) float64 {
	paragraphs := SplitParagraphs(text, 1)
	if len(paragraphs) < 2 {
		return 0
	}

	lengths := make([]float64, len(paragraphs))
	for i, p := range paragraphs {
		lengths[i] = float64(len(textnorm.Words(p)))
	}

	mean, variance := stat.MeanVariance(lengths, nil)
	if mean == 0 {
		return 0
	}
	return clamp01(math.Sqrt(variance) / mean)
}

// SplitParagraphs splits text on blank lines, keeping paragraphs of at least
// minChars characters.
func SplitParagraphs(text string, minChars int) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if len(p) >= minChars {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func splitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	var sentences []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// countSyllables approximates syllable count by vowel-cluster counting, with
// a floor of one per word.
func countSyllables(word string) int {
	n := len(vowelRe.FindAllString(word, -1))
	if n == 0 {
		return 1
	}
	// Trailing silent e.
	if n > 1 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		n--
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
