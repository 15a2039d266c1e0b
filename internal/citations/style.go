package citations

import (
	"github.com/textguard/textguard/pkg/models"
)

// styleOrder fixes the tie-break: on equal scores the first-registered style
// wins.
var styleOrder = []string{"vancouver", "apa", "superscript"}

// ClassifyStyle scores each citation style by occurrence count and returns
// the argmax. Documents with no citations classify as "unknown".
func ClassifyStyle(citations []models.InTextCitation) string {
	scores := StyleScores(citations)

	best := "unknown"
	bestScore := 0
	for _, style := range styleOrder {
		if scores[style] > bestScore {
			best = style
			bestScore = scores[style]
		}
	}
	return best
}

// StyleScores tallies in-text citation occurrences per style.
func StyleScores(citations []models.InTextCitation) map[string]int {
	scores := make(map[string]int, len(styleOrder))
	for _, style := range styleOrder {
		scores[style] = 0
	}
	for _, c := range citations {
		scores[c.Type]++
	}
	return scores
}
