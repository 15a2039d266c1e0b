package citations

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/textguard/textguard/pkg/models"
)

// In-text citation patterns, one per supported style.
var (
	vancouverRe   = regexp.MustCompile(`\[(\d{1,3}(?:\s*[-,]\s*\d{1,3})*)\]`)
	apaRe         = regexp.MustCompile(`\(([A-Z][A-Za-z'’-]+(?:\s+(?:et\s+al\.?|&\s+[A-Z][A-Za-z'’-]+))?),\s*((?:19|20)\d{2})[a-z]?\)`)
	superscriptRe = regexp.MustCompile(`[\x{00B9}\x{00B2}\x{00B3}\x{2070}\x{2074}-\x{2079}]+`)
)

var superscriptDigits = map[rune]int{
	'⁰': 0, '¹': 1, '²': 2, '³': 3, '⁴': 4,
	'⁵': 5, '⁶': 6, '⁷': 7, '⁸': 8, '⁹': 9,
}

// DetectInTextCitations finds every inline citation occurrence in the
// document, ordered by position.
func DetectInTextCitations(text string) []models.InTextCitation {
	var citations []models.InTextCitation

	for _, loc := range vancouverRe.FindAllStringSubmatchIndex(text, -1) {
		numbers := expandNumbers(text[loc[2]:loc[3]])
		citations = append(citations, models.InTextCitation{
			Type:     "vancouver",
			Position: loc[0],
			End:      loc[1],
			Text:     text[loc[0]:loc[1]],
			Numbers:  numbers,
		})
	}

	for _, loc := range apaRe.FindAllStringSubmatchIndex(text, -1) {
		year, _ := strconv.Atoi(text[loc[4]:loc[5]])
		citations = append(citations, models.InTextCitation{
			Type:     "apa",
			Position: loc[0],
			End:      loc[1],
			Text:     text[loc[0]:loc[1]],
			Author:   text[loc[2]:loc[3]],
			Year:     year,
		})
	}

	for _, loc := range superscriptRe.FindAllStringIndex(text, -1) {
		citations = append(citations, models.InTextCitation{
			Type:     "superscript",
			Position: loc[0],
			End:      loc[1],
			Text:     text[loc[0]:loc[1]],
			Numbers:  []int{superscriptValue(text[loc[0]:loc[1]])},
		})
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Position < citations[j].Position
	})

	return citations
}

// expandNumbers turns "1-3, 7" into [1 2 3 7], deduplicated and sorted.
func expandNumbers(s string) []int {
	seen := make(map[int]struct{})

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, errA := strconv.Atoi(strings.TrimSpace(lo))
			b, errB := strconv.Atoi(strings.TrimSpace(hi))
			if errA != nil || errB != nil || b < a {
				continue
			}
			for n := a; n <= b; n++ {
				seen[n] = struct{}{}
			}
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			seen[n] = struct{}{}
		}
	}

	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func superscriptValue(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + superscriptDigits[r]
	}
	return n
}

// CrossReference checks in-text citations against the reference list:
// a citation pointing to a number with no reference is an error, a reference
// never cited is a warning.
func CrossReference(citations []models.InTextCitation, references []models.ReferenceEntry) []models.CitationIssue {
	known := make(map[int]bool, len(references))
	for _, ref := range references {
		known[ref.Number] = true
	}

	cited := make(map[int]bool)
	flagged := make(map[int]bool)
	var issues []models.CitationIssue

	for _, c := range citations {
		for _, n := range c.Numbers {
			cited[n] = true
			if !known[n] && !flagged[n] {
				flagged[n] = true
				issues = append(issues, models.CitationIssue{
					Type:     "missing_reference",
					Severity: "error",
					Number:   n,
					Message:  "in-text citation [" + strconv.Itoa(n) + "] has no matching reference entry",
				})
			}
		}
	}

	for _, ref := range references {
		if !cited[ref.Number] {
			issues = append(issues, models.CitationIssue{
				Type:     "uncited_reference",
				Severity: "warning",
				Number:   ref.Number,
				Message:  "reference " + strconv.Itoa(ref.Number) + " is never cited in the text",
			})
		}
	}

	return issues
}

// ExclusionRanges returns the character spans of all in-text citations. Text
// inside a properly formatted citation is attribution, not overlap evidence.
func ExclusionRanges(citations []models.InTextCitation) []models.ExclusionRange {
	ranges := make([]models.ExclusionRange, 0, len(citations))
	for _, c := range citations {
		if c.Position < c.End {
			ranges = append(ranges, models.ExclusionRange{Start: c.Position, End: c.End})
		}
	}
	return ranges
}
