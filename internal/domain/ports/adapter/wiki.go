// File: internal/domain/ports/adapter/wiki.go
package adapter

import (
	"context"

	"wikiukbot/internal/domain/model"
)

// WikiClient is the encyclopedia boundary. Every failure it returns is a *domain.UpstreamError.
type WikiClient interface {
	// Search returns prefix-search hits sorted by upstream rank; no hits is an empty slice.
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	// RandomArticle returns one random article from the main namespace.
	RandomArticle(ctx context.Context) (model.RandomArticleRef, error)
}
