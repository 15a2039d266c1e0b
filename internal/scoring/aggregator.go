package scoring

import (
	"sort"
	"strings"
	"sync"

	"github.com/textguard/textguard/internal/similarity"
	"github.com/textguard/textguard/pkg/models"
)

// Config holds source scoring configuration.
type Config struct {
	ShingleWeight  float64
	TFIDFWeight    float64
	HitBonus       float64 // added per phrase hit
	HitBonusCap    float64
	NoiseThreshold float64 // sources scoring below this are dropped
	MaxSources     int     // retained in the result
	TopAverage     int     // sources averaged into the overall score
	MaxConcurrent  int     // per-source scoring workers
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		ShingleWeight:  0.6,
		TFIDFWeight:    0.2,
		HitBonus:       3,
		HitBonusCap:    15,
		NoiseThreshold: 5,
		MaxSources:     10,
		TopAverage:     5,
		MaxConcurrent:  4,
	}
}

// Service aggregates phrase-search hits into scored, ranked sources.
type Service struct {
	config Config
}

// NewService creates a scoring service. Zero-valued config fields fall back
// to defaults.
func NewService(config Config) *Service {
	def := DefaultConfig()
	if config.ShingleWeight <= 0 {
		config.ShingleWeight = def.ShingleWeight
	}
	if config.TFIDFWeight <= 0 {
		config.TFIDFWeight = def.TFIDFWeight
	}
	if config.HitBonus <= 0 {
		config.HitBonus = def.HitBonus
	}
	if config.HitBonusCap <= 0 {
		config.HitBonusCap = def.HitBonusCap
	}
	if config.NoiseThreshold <= 0 {
		config.NoiseThreshold = def.NoiseThreshold
	}
	if config.MaxSources <= 0 {
		config.MaxSources = def.MaxSources
	}
	if config.TopAverage <= 0 {
		config.TopAverage = def.TopAverage
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = def.MaxConcurrent
	}
	return &Service{config: config}
}

// SourceCandidate is a deduplicated external match accumulated across phrase
// searches.
type SourceCandidate struct {
	Key        string
	Title      string
	URL        string
	SourceType string
	Hits       int
	text       strings.Builder
}

// Text returns the concatenated snippet and title text used for comparison.
func (c *SourceCandidate) Text() string {
	return c.text.String()
}

// Collect merges per-phrase search results into unique source candidates.
// The dedup key is the URL when present, otherwise the title. Candidate order
// follows first appearance, keeping aggregation deterministic.
func (s *Service) Collect(results [][]models.SourceMatch) []*SourceCandidate {
	byKey := make(map[string]*SourceCandidate)
	var ordered []*SourceCandidate

	for _, matches := range results {
		for _, m := range matches {
			key := m.URL
			if key == "" {
				key = m.Title
			}
			if key == "" {
				continue
			}

			c, ok := byKey[key]
			if !ok {
				c = &SourceCandidate{
					Key:        key,
					Title:      m.Title,
					URL:        m.URL,
					SourceType: m.SourceType,
				}
				byKey[key] = c
				ordered = append(ordered, c)
			}

			c.Hits++
			if m.Title != "" {
				c.text.WriteString(m.Title)
				c.text.WriteString(" ")
			}
			if m.Snippet != "" {
				c.text.WriteString(m.Snippet)
				c.text.WriteString(" ")
			}
		}
	}

	return ordered
}

// Score computes the combined similarity of every candidate against the
// document, drops noise, ranks descending and caps the list. Candidates are
// scored concurrently; each computation is independent and side-effect-free.
func (s *Service) Score(index *similarity.ShingleIndex, docText string, candidates []*SourceCandidate) []models.ScoredSource {
	if len(candidates) == 0 {
		return []models.ScoredSource{}
	}

	scored := make([]models.ScoredSource, len(candidates))

	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c *SourceCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			scored[i] = s.scoreOne(index, docText, c)
		}(i, c)
	}
	wg.Wait()

	kept := scored[:0]
	for _, src := range scored {
		if src.Similarity >= s.config.NoiseThreshold {
			kept = append(kept, src)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].Key < kept[j].Key
	})

	if len(kept) > s.config.MaxSources {
		kept = kept[:s.config.MaxSources]
	}

	out := make([]models.ScoredSource, len(kept))
	copy(out, kept)
	return out
}

func (s *Service) scoreOne(index *similarity.ShingleIndex, docText string, c *SourceCandidate) models.ScoredSource {
	text := c.Text()
	coverage := index.Coverage(text)
	tfidf := similarity.Cosine(docText, text)

	hitBonus := float64(c.Hits) * s.config.HitBonus
	if hitBonus > s.config.HitBonusCap {
		hitBonus = s.config.HitBonusCap
	}

	sim := coverage*s.config.ShingleWeight + tfidf*s.config.TFIDFWeight + hitBonus
	sim = clamp(sim, 0, 100)

	return models.ScoredSource{
		Key:             c.Key,
		Title:           c.Title,
		URL:             c.URL,
		SourceType:      c.SourceType,
		Similarity:      sim,
		ShingleCoverage: coverage,
		TFIDF:           tfidf,
		Hits:            c.Hits,
	}
}

// OverallScore derives the document score from ranked sources: the single
// worst offense dominates, breadth of matches still contributes.
func (s *Service) OverallScore(sources []models.ScoredSource) float64 {
	if len(sources) == 0 {
		return 0
	}

	max := 0.0
	for _, src := range sources {
		if src.Similarity > max {
			max = src.Similarity
		}
	}

	n := s.config.TopAverage
	if n > len(sources) {
		n = len(sources)
	}
	sum := 0.0
	for _, src := range sources[:n] {
		sum += src.Similarity
	}
	avg := sum / float64(n)

	return clamp(max*0.8+avg*0.2, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
