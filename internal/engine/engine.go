// Package engine runs the full similarity analysis pipeline: normalization,
// citation parsing, phrase extraction, source search fan-out, shingle and
// TF-IDF scoring, aggregation, and style fingerprinting.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/textguard/textguard/internal/citations"
	"github.com/textguard/textguard/internal/phrases"
	"github.com/textguard/textguard/internal/scoring"
	"github.com/textguard/textguard/internal/search"
	"github.com/textguard/textguard/internal/similarity"
	"github.com/textguard/textguard/internal/stylometry"
	"github.com/textguard/textguard/internal/textnorm"
	"github.com/textguard/textguard/pkg/models"
)

// Config holds pipeline configuration.
type Config struct {
	MinWords          int // below this the document is flagged too short
	ShingleSize       int
	PhraseWindow      int
	SearchConcurrency int
	Scoring           scoring.Config
	Stylometry        stylometry.Config
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MinWords:          8,
		ShingleSize:       similarity.DefaultShingleSize,
		PhraseWindow:      phrases.DefaultWindow,
		SearchConcurrency: 4,
		Scoring:           scoring.DefaultConfig(),
		Stylometry:        stylometry.DefaultConfig(),
	}
}

// Options is the per-call exclusion policy.
type Options struct {
	ExcludeCitations     bool
	ExcludeCommonPhrases bool
}

// ProgressFunc receives pipeline progress, 0 through 100, never decreasing.
// It may be sampled from any goroutine by the caller but is invoked from the
// analysis goroutine only.
type ProgressFunc func(percent int)

// Engine is the similarity detection pipeline.
type Engine struct {
	config     Config
	searcher   search.Searcher
	scorer     *scoring.Service
	stylometer *stylometry.Service
}

// New creates an engine around a search collaborator. A nil searcher is
// replaced by the no-op searcher: analysis still runs on local signals.
func New(searcher search.Searcher, config Config) (*Engine, error) {
	def := DefaultConfig()
	if config.MinWords <= 0 {
		config.MinWords = def.MinWords
	}
	if config.ShingleSize == 0 {
		config.ShingleSize = def.ShingleSize
	}
	if config.PhraseWindow == 0 {
		config.PhraseWindow = def.PhraseWindow
	}
	if config.SearchConcurrency <= 0 {
		config.SearchConcurrency = def.SearchConcurrency
	}
	if searcher == nil {
		searcher = search.NoopSearcher{}
	}

	// Validate precondition-style settings up front so data-driven calls
	// can never fail.
	if config.ShingleSize <= 0 {
		return nil, similarity.ErrInvalidShingleSize
	}
	if config.PhraseWindow <= 0 {
		return nil, phrases.ErrInvalidConfig
	}

	return &Engine{
		config:     config,
		searcher:   searcher,
		scorer:     scoring.NewService(config.Scoring),
		stylometer: stylometry.NewService(config.Stylometry),
	}, nil
}

// Analyze runs the pipeline over text. Every failure mode degrades to "no
// evidence found"; the only errors returned are context cancellation during
// the search fan-out.
func (e *Engine) Analyze(ctx context.Context, text string, opts Options, onProgress ProgressFunc) (*models.AnalysisResult, error) {
	progress := newProgressReporter(onProgress)
	progress.report(0)

	result := &models.AnalysisResult{
		ID:             uuid.New().String(),
		Sources:        []models.ScoredSource{},
		KeyPhrases:     []models.KeyPhrase{},
		ExcludedRanges: []models.ExclusionRange{},
		CreatedAt:      time.Now().UTC(),
	}

	tokens := textnorm.Tokenize(text)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	result.WordCount = len(words)
	result.UniqueWords = textnorm.UniqueWords(words)
	progress.report(10)

	// Degenerate or too-short input short-circuits to a zero-valued result.
	if strings.TrimSpace(text) == "" || len(words) < e.config.MinWords {
		result.TooShort = true
		progress.report(100)
		return result, nil
	}

	citationReport := citations.Analyze(text)
	result.Citations = citationReport
	var excluded []models.ExclusionRange
	if opts.ExcludeCitations {
		excluded = citationReport.Excluded
		result.ExcludedRanges = excluded
	}
	progress.report(20)

	keyPhrases, err := phrases.Extract(text, phrases.Config{
		Window:       e.config.PhraseWindow,
		FilterCommon: opts.ExcludeCommonPhrases,
	})
	if err != nil {
		return nil, err
	}
	result.KeyPhrases = keyPhrases
	progress.report(30)

	searchResults := e.searchAll(ctx, keyPhrases, progress)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	progress.report(70)

	index, err := similarity.NewShingleIndex(tokens, e.config.ShingleSize, excluded)
	if err != nil {
		return nil, err
	}

	candidates := e.scorer.Collect(searchResults)
	result.Sources = e.scorer.Score(index, text, candidates)
	result.OverallScore = e.scorer.OverallScore(result.Sources)
	for _, src := range result.Sources {
		if src.Similarity > result.MaxMatch {
			result.MaxMatch = src.Similarity
		}
	}
	progress.report(90)

	result.Style = e.stylometer.Analyze(text)
	progress.report(100)

	return result, nil
}

// searchAll dispatches every phrase to the search collaborator with bounded
// concurrency. A failed search contributes zero matches and never aborts the
// analysis.
func (e *Engine) searchAll(ctx context.Context, keyPhrases []models.KeyPhrase, progress *progressReporter) [][]models.SourceMatch {
	results := make([][]models.SourceMatch, len(keyPhrases))
	if len(keyPhrases) == 0 {
		return results
	}

	sem := make(chan struct{}, e.config.SearchConcurrency)
	var wg sync.WaitGroup
	var done int64
	var mu sync.Mutex

	for i, phrase := range keyPhrases {
		wg.Add(1)
		go func(i int, phrase string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			matches, err := e.searcher.Search(ctx, phrase)
			if err == nil {
				results[i] = matches
			}

			mu.Lock()
			done++
			// Search spans the 30-70 band of the progress bar.
			progress.report(30 + int(done*40/int64(len(keyPhrases))))
			mu.Unlock()
		}(i, phrase.Text)
	}

	wg.Wait()
	return results
}

// progressReporter enforces monotonic progress.
type progressReporter struct {
	mu   sync.Mutex
	last int
	fn   ProgressFunc
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (p *progressReporter) report(percent int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent < p.last {
		return
	}
	if percent > 100 {
		percent = 100
	}
	p.last = percent
	p.fn(percent)
}
