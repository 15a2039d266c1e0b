package scoring

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/textguard/textguard/internal/similarity"
	"github.com/textguard/textguard/internal/textnorm"
	"github.com/textguard/textguard/pkg/models"
)

const docText = "The mitochondria is the powerhouse of the cell."

func newIndex(t *testing.T) *similarity.ShingleIndex {
	t.Helper()
	idx, err := similarity.NewShingleIndex(textnorm.Tokenize(docText), similarity.DefaultShingleSize, nil)
	if err != nil {
		t.Fatalf("NewShingleIndex: %v", err)
	}
	return idx
}

func TestCollect_DedupeByURL(t *testing.T) {
	svc := NewService(Config{})

	results := [][]models.SourceMatch{
		{{Title: "Cell Biology", URL: "https://example.org/cell", Snippet: "first snippet"}},
		{{Title: "Cell Biology (mirror)", URL: "https://example.org/cell", Snippet: "second snippet"}},
		{{Title: "Untitled web hit", URL: "", Snippet: "", SourceType: "web"}},
	}

	candidates := svc.Collect(results)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Key != "https://example.org/cell" {
		t.Errorf("key = %q", c.Key)
	}
	if c.Hits != 2 {
		t.Errorf("hits = %d, want 2", c.Hits)
	}
	text := c.Text()
	for _, fragment := range []string{"first snippet", "second snippet", "Cell Biology"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("concatenated text missing %q: %q", fragment, text)
		}
	}
}

func TestCollect_FallsBackToTitleKey(t *testing.T) {
	svc := NewService(Config{})

	results := [][]models.SourceMatch{
		{{Title: "Paper Without Link", Snippet: "abc"}},
		{{Title: "Paper Without Link", Snippet: "def"}},
	}

	candidates := svc.Collect(results)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Key != "Paper Without Link" {
		t.Errorf("key = %q", candidates[0].Key)
	}
	if candidates[0].Hits != 2 {
		t.Errorf("hits = %d, want 2", candidates[0].Hits)
	}
}

func TestCollect_SkipsEmptyMatches(t *testing.T) {
	svc := NewService(Config{})
	candidates := svc.Collect([][]models.SourceMatch{{{Snippet: "orphan snippet"}}})
	if len(candidates) != 0 {
		t.Errorf("expected no candidates for a match without url or title, got %d", len(candidates))
	}
}

func TestScore_IdenticalSnippet(t *testing.T) {
	svc := NewService(Config{})
	idx := newIndex(t)

	candidates := svc.Collect([][]models.SourceMatch{
		{{Title: "Verbatim copy", URL: "https://example.org/a", Snippet: docText}},
	})

	scored := svc.Score(idx, docText, candidates)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored source, got %d", len(scored))
	}

	src := scored[0]
	if src.ShingleCoverage != 100 {
		t.Errorf("shingle coverage = %f, want 100", src.ShingleCoverage)
	}
	if src.Similarity < 60 || src.Similarity > 100 {
		t.Errorf("similarity = %f, expected within (60, 100]", src.Similarity)
	}
	if src.Hits != 1 {
		t.Errorf("hits = %d, want 1", src.Hits)
	}
}

func TestScore_DropsNoise(t *testing.T) {
	svc := NewService(Config{})
	idx := newIndex(t)

	candidates := svc.Collect([][]models.SourceMatch{
		{{Title: "Unrelated", URL: "https://example.org/x", Snippet: "quarterly revenue guidance exceeded forecasts"}},
	})

	// One hit grants a 3-point bonus, still below the noise threshold of 5.
	scored := svc.Score(idx, docText, candidates)
	if len(scored) != 0 {
		t.Errorf("expected unrelated source to fall below noise threshold, got %v", scored)
	}
}

func TestScore_CapsSources(t *testing.T) {
	svc := NewService(Config{})
	idx := newIndex(t)

	var results [][]models.SourceMatch
	for i := 0; i < 25; i++ {
		results = append(results, []models.SourceMatch{{
			Title:   fmt.Sprintf("Mirror %02d", i),
			URL:     fmt.Sprintf("https://example.org/%02d", i),
			Snippet: docText,
		}})
	}

	scored := svc.Score(idx, docText, svc.Collect(results))
	if len(scored) != 10 {
		t.Errorf("expected cap of 10 sources, got %d", len(scored))
	}

	for i := 1; i < len(scored); i++ {
		if scored[i].Similarity > scored[i-1].Similarity {
			t.Errorf("sources not sorted descending at %d", i)
		}
	}
}

func TestScore_CombinedFormula(t *testing.T) {
	svc := NewService(Config{})
	idx := newIndex(t)

	candidates := svc.Collect([][]models.SourceMatch{
		{{Title: "A", URL: "https://example.org/a", Snippet: docText}},
		{{Title: "A", URL: "https://example.org/a", Snippet: docText}},
	})

	scored := svc.Score(idx, docText, candidates)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored source, got %d", len(scored))
	}

	src := scored[0]
	want := math.Min(src.ShingleCoverage*0.6+src.TFIDF*0.2+math.Min(float64(src.Hits)*3, 15), 100)
	if math.Abs(src.Similarity-want) > 1e-9 {
		t.Errorf("similarity = %f, want %f", src.Similarity, want)
	}
}

func TestOverallScore(t *testing.T) {
	svc := NewService(Config{})

	if got := svc.OverallScore(nil); got != 0 {
		t.Errorf("overall score of no sources = %f, want 0", got)
	}

	sources := []models.ScoredSource{
		{Similarity: 80},
		{Similarity: 40},
		{Similarity: 20},
	}
	want := 80*0.8 + (80+40+20)/3*0.2
	if got := svc.OverallScore(sources); math.Abs(got-want) > 1e-9 {
		t.Errorf("overall score = %f, want %f", got, want)
	}
}

func TestOverallScore_Bounds(t *testing.T) {
	svc := NewService(Config{})
	sources := []models.ScoredSource{{Similarity: 100}, {Similarity: 100}}
	got := svc.OverallScore(sources)
	if got < 0 || got > 100 {
		t.Errorf("overall score out of bounds: %f", got)
	}
}
