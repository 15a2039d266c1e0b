// Package search defines the source search collaborator boundary: the engine
// hands it key phrases and receives candidate source matches. Implementations
// may hit the network; the engine itself never does.
package search

import (
	"context"

	"github.com/textguard/textguard/pkg/models"
)

// Searcher finds external sources containing a phrase. Implementations must
// return an empty slice, not an error, for "no results".
type Searcher interface {
	Search(ctx context.Context, phrase string) ([]models.SourceMatch, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, phrase string) ([]models.SourceMatch, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, phrase string) ([]models.SourceMatch, error) {
	return f(ctx, phrase)
}

// NoopSearcher returns no matches for every phrase. Used when no search
// provider is configured: analyses still run, with local signals only.
type NoopSearcher struct{}

// Search implements Searcher.
func (NoopSearcher) Search(ctx context.Context, phrase string) ([]models.SourceMatch, error) {
	return nil, nil
}
