package textnorm

var stopWords = buildStopWords()

// IsStopWord reports whether w (already lowercase) is a common English
// function word.
func IsStopWord(w string) bool {
	return stopWords[w]
}

// StopWordRatio returns the fraction of words that are stop-words.
// Returns 0 for an empty list.
func StopWordRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	count := 0
	for _, w := range words {
		if stopWords[w] {
			count++
		}
	}
	return float64(count) / float64(len(words))
}

func buildStopWords() map[string]bool {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "have", "he", "in", "is", "it", "its", "of", "on", "or",
		"she", "that", "the", "they", "this", "to", "was", "were", "will",
		"with", "you", "your", "we", "our", "their", "them", "there", "these",
		"those", "been", "being", "had", "having", "do", "does", "did", "doing",
		"would", "could", "should", "may", "might", "must", "can", "cannot",
		"about", "above", "after", "again", "against", "all", "am", "any",
		"because", "before", "below", "between", "both", "but", "during",
		"each", "few", "further", "here", "how", "if", "into", "just", "more",
		"most", "no", "nor", "not", "now", "only", "other", "out", "own",
		"same", "so", "some", "such", "than", "then", "through", "too", "under",
		"until", "up", "very", "what", "when", "where", "which", "while", "who",
		"whom", "why", "also", "however", "therefore", "thus", "hence", "yet",
	}

	result := make(map[string]bool, len(words))
	for _, w := range words {
		result[w] = true
	}
	return result
}
