// Package citations locates and parses a document's reference list, detects
// in-text citations, cross-references the two, and emits the exclusion ranges
// the shingle matcher honors.
package citations

import (
	"github.com/textguard/textguard/pkg/models"
)

// Analyze runs the full citation pipeline over a document.
func Analyze(text string) *models.CitationReport {
	report := &models.CitationReport{
		References: []models.ReferenceEntry{},
		InText:     []models.InTextCitation{},
		Issues:     []models.CitationIssue{},
		Excluded:   []models.ExclusionRange{},
	}

	if body, _, ok := FindReferencesSection(text); ok {
		report.References = ParseReferences(body)
	}

	report.InText = DetectInTextCitations(text)
	report.Style = ClassifyStyle(report.InText)
	report.Issues = CrossReference(report.InText, report.References)
	report.Excluded = ExclusionRanges(report.InText)

	return report
}
