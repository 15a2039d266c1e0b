package models

import (
	"time"
)

// SourceMatch is a single result returned by the source search collaborator
// for one key phrase.
type SourceMatch struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	SourceType string `json:"source_type"` // web, academic, news
}

// ScoredSource is a deduplicated external source with its computed similarity.
type ScoredSource struct {
	Key             string  `json:"key"` // url if present, else title
	Title           string  `json:"title"`
	URL             string  `json:"url,omitempty"`
	SourceType      string  `json:"source_type"`
	Similarity      float64 `json:"similarity"` // 0-100
	ShingleCoverage float64 `json:"shingle_coverage"`
	TFIDF           float64 `json:"tfidf"`
	Hits            int     `json:"hits"`
}

// KeyPhrase is a high-signal phrase selected for external search.
type KeyPhrase struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Sentence int     `json:"sentence"`
}

// ExclusionRange is a byte span of the document exempted from shingle
// matching, typically an in-text citation.
type ExclusionRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the span [start, end) lies fully inside the range.
func (r ExclusionRange) Contains(start, end int) bool {
	return start >= r.Start && end <= r.End
}

// ReferenceEntry is one parsed bibliography item.
type ReferenceEntry struct {
	Number   int      `json:"number"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year,omitempty"`
	Title    string   `json:"title,omitempty"`
	Journal  string   `json:"journal,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	URL      string   `json:"url,omitempty"`
	PMID     string   `json:"pmid,omitempty"`
	Volume   string   `json:"volume,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Pages    string   `json:"pages,omitempty"`
	Parsed   bool     `json:"parsed"`
	Original string   `json:"original"`
}

// InTextCitation is one inline citation occurrence.
type InTextCitation struct {
	Type     string `json:"type"` // vancouver, apa, superscript
	Position int    `json:"position"`
	End      int    `json:"end"`
	Text     string `json:"text"`
	Numbers  []int  `json:"numbers,omitempty"`
	Author   string `json:"author,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// CitationIssue flags a cross-referencing problem between in-text citations
// and the reference list.
type CitationIssue struct {
	Type     string `json:"type"`     // missing_reference, uncited_reference
	Severity string `json:"severity"` // error, warning
	Number   int    `json:"number"`
	Message  string `json:"message"`
}

// CitationReport is the full output of the citation parser.
type CitationReport struct {
	Style      string           `json:"style"`
	References []ReferenceEntry `json:"references"`
	InText     []InTextCitation `json:"in_text"`
	Issues     []CitationIssue  `json:"issues"`
	Excluded   []ExclusionRange `json:"excluded"`
}

// StyleFingerprint is a normalized stylometric feature vector. Every feature
// is clamped to [0, 1].
type StyleFingerprint struct {
	VocabularyRichness float64 `json:"vocabulary_richness"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	SyllableComplexity float64 `json:"syllable_complexity"`
	PassiveVoiceRatio  float64 `json:"passive_voice_ratio"`
	TransitionDensity  float64 `json:"transition_density"`
	PunctuationDensity float64 `json:"punctuation_density"`
	ParagraphVariation float64 `json:"paragraph_variation"`
}

// Vector returns the fingerprint as an ordered 7-dimension slice.
func (f StyleFingerprint) Vector() []float64 {
	return []float64{
		f.VocabularyRichness,
		f.AvgSentenceLength,
		f.SyllableComplexity,
		f.PassiveVoiceRatio,
		f.TransitionDensity,
		f.PunctuationDensity,
		f.ParagraphVariation,
	}
}

// StyleAnomaly flags a paragraph whose style deviates from the document.
type StyleAnomaly struct {
	Paragraph  int     `json:"paragraph"`
	Similarity float64 `json:"similarity"` // 0-100 vs document fingerprint
	Excerpt    string  `json:"excerpt"`
}

// StyleReport is the output of the style fingerprinter. It is informational
// and never blended into the overall score.
type StyleReport struct {
	Document         StyleFingerprint   `json:"document"`
	Paragraphs       []StyleFingerprint `json:"paragraphs"`
	ConsistencyScore float64            `json:"consistency_score"` // 0-100
	Anomalies        []StyleAnomaly     `json:"anomalies"`
}

// AnalysisResult is the final output of an analysis run.
type AnalysisResult struct {
	ID             string           `json:"id"`
	OverallScore   float64          `json:"overall_score"` // 0-100
	WordCount      int              `json:"word_count"`
	UniqueWords    int              `json:"unique_words"`
	MaxMatch       float64          `json:"max_match"`
	Sources        []ScoredSource   `json:"sources"`
	KeyPhrases     []KeyPhrase      `json:"key_phrases"`
	Citations      *CitationReport  `json:"citations,omitempty"`
	Style          *StyleReport     `json:"style,omitempty"`
	ExcludedRanges []ExclusionRange `json:"excluded_ranges"`
	TooShort       bool             `json:"too_short,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
