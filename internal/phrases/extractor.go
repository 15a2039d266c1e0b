package phrases

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/textguard/textguard/internal/textnorm"
	"github.com/textguard/textguard/pkg/models"
)

// ErrInvalidConfig reports a precondition violation in the extractor
// configuration.
var ErrInvalidConfig = errors.New("phrases: invalid config")

const (
	// DefaultWindow is the phrase length in words.
	DefaultWindow = 6

	// Phrase budget bounds; the effective budget scales with document length.
	minPhrases = 8
	maxPhrases = 20

	// Sentences shorter than this (non-space characters) carry no signal.
	minSentenceChars = 10

	// Step sizes for the sliding window.
	shortDocWords = 200
	shortDocStep  = 2
	longDocStep   = 3
)

// Config controls phrase extraction.
type Config struct {
	Window       int
	MaxPhrases   int  // 0 means scale with document length
	FilterCommon bool // discard generic academic connector chains
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Window:       DefaultWindow,
		MaxPhrases:   0,
		FilterCommon: true,
	}
}

var sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)

// commonChains are generic academic connectors that match half the papers on
// the internet and carry no evidentiary value.
var commonChains = []string{
	"the results show that",
	"in this study we",
	"we found that the",
	"on the other hand",
	"as a result of",
	"it is important to",
	"in order to determine",
	"one of the most",
	"it should be noted",
	"as well as the",
	"in the present study",
	"the aim of this",
	"there is a need",
	"the purpose of this",
	"according to the results",
}

type candidate struct {
	text     string
	score    float64
	sentence int
}

// Extract selects a bounded, information-dense set of search phrases from
// text. Identical input always yields identical ordered output.
func Extract(text string, cfg Config) ([]models.KeyPhrase, error) {
	if cfg.Window <= 0 || cfg.MaxPhrases < 0 {
		return nil, ErrInvalidConfig
	}

	words := textnorm.Words(text)
	if len(words) == 0 {
		return nil, nil
	}

	budget := cfg.MaxPhrases
	if budget == 0 {
		budget = phraseBudget(len(words))
	}

	step := longDocStep
	if len(words) < shortDocWords {
		step = shortDocStep
	}

	sentences := splitSentences(text)
	candidates := collectCandidates(sentences, cfg.Window, step)

	if cfg.FilterCommon {
		kept := candidates[:0]
		for _, c := range candidates {
			if !isCommonChain(c.text) {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	// Highest score first; ties broken by sentence order then text so that
	// repeated runs produce byte-identical output.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].sentence != candidates[j].sentence {
			return candidates[i].sentence < candidates[j].sentence
		}
		return candidates[i].text < candidates[j].text
	})

	selected := selectNonOverlapping(candidates, budget)

	if len(selected) == 0 {
		// Trivial document: fall back to its opening words as one phrase.
		n := cfg.Window
		if n > len(words) {
			n = len(words)
		}
		selected = []candidate{{text: strings.Join(words[:n], " "), score: 0, sentence: 0}}
	}

	result := make([]models.KeyPhrase, len(selected))
	for i, c := range selected {
		result[i] = models.KeyPhrase{Text: c.text, Score: c.score, Sentence: c.sentence}
	}
	return result, nil
}

// phraseBudget scales the phrase count with document length:
// clamp(ceil(words/40), 8, 20).
func phraseBudget(wordCount int) int {
	n := int(math.Ceil(float64(wordCount) / 40))
	if n < minPhrases {
		return minPhrases
	}
	if n > maxPhrases {
		return maxPhrases
	}
	return n
}

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	var sentences []string
	for _, p := range parts {
		if len(strings.ReplaceAll(p, " ", "")) >= minSentenceChars {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func collectCandidates(sentences []string, window, step int) []candidate {
	var candidates []candidate
	total := len(sentences)

	for si, sentence := range sentences {
		words := textnorm.Words(sentence)
		if len(words) < window {
			continue
		}

		base := complexityScore(words)
		// Earlier sentences tend to hold the thesis and the lifted text.
		positionBonus := 0.5 * (1 - float64(si)/float64(total))

		for start := 0; start+window <= len(words); start += step {
			candidates = append(candidates, candidate{
				text:     strings.Join(words[start:start+window], " "),
				score:    base + positionBonus,
				sentence: si,
			})
		}
	}

	return candidates
}

// complexityScore rewards long words and penalizes stop-words, normalized by
// sentence length.
func complexityScore(words []string) float64 {
	score := 0.0
	for _, w := range words {
		if len(w) >= 7 {
			score += 2
		}
		if textnorm.IsStopWord(w) {
			score--
		}
	}
	score /= float64(len(words))
	if score < 0 {
		return 0
	}
	return score
}

// isCommonChain reports whether a phrase is a generic connector chain: either
// it contains a curated connector, or 4-7 token phrases are at least 75%
// stop-words.
func isCommonChain(phrase string) bool {
	for _, chain := range commonChains {
		if strings.Contains(phrase, chain) {
			return true
		}
	}

	words := strings.Fields(phrase)
	if len(words) >= 4 && len(words) <= 7 && textnorm.StopWordRatio(words) >= 0.75 {
		return true
	}
	return false
}

// selectNonOverlapping greedily keeps the best-scored candidates, skipping any
// phrase that is a substring or superstring of an already kept one.
func selectNonOverlapping(candidates []candidate, budget int) []candidate {
	var kept []candidate
	for _, c := range candidates {
		if len(kept) >= budget {
			break
		}
		overlaps := false
		for _, k := range kept {
			if strings.Contains(k.text, c.text) || strings.Contains(c.text, k.text) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}
