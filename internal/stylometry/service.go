package stylometry

import (
	"github.com/textguard/textguard/pkg/models"
)

// Config holds style consistency configuration.
type Config struct {
	MinParagraphChars int     // paragraphs below this are skipped
	AnomalyThreshold  float64 // similarity below this flags a paragraph
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MinParagraphChars: 50,
		AnomalyThreshold:  60,
	}
}

// Service computes per-document style consistency reports.
type Service struct {
	config Config
}

// NewService creates a stylometry service.
func NewService(config Config) *Service {
	if config.MinParagraphChars <= 0 {
		config.MinParagraphChars = DefaultConfig().MinParagraphChars
	}
	if config.AnomalyThreshold <= 0 {
		config.AnomalyThreshold = DefaultConfig().AnomalyThreshold
	}
	return &Service{config: config}
}

// Analyze fingerprints the document and each qualifying paragraph, flags
// paragraphs whose style deviates from the whole, and derives a consistency
// score. Fewer than two qualifying paragraphs score 100: a single voice
// cannot disagree with itself.
func (s *Service) Analyze(text string) *models.StyleReport {
	report := &models.StyleReport{
		Document:         Compute(text),
		Paragraphs:       []models.StyleFingerprint{},
		ConsistencyScore: 100,
		Anomalies:        []models.StyleAnomaly{},
	}

	paragraphs := SplitParagraphs(text, s.config.MinParagraphChars)
	if len(paragraphs) < 2 {
		return report
	}

	sum := 0.0
	for i, p := range paragraphs {
		fp := Compute(p)
		report.Paragraphs = append(report.Paragraphs, fp)

		sim := Similarity(fp, report.Document)
		sum += sim

		if sim < s.config.AnomalyThreshold {
			report.Anomalies = append(report.Anomalies, models.StyleAnomaly{
				Paragraph:  i,
				Similarity: sim,
				Excerpt:    excerpt(p, 120),
			})
		}
	}

	report.ConsistencyScore = sum / float64(len(paragraphs))
	return report
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
