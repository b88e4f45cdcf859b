//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing/fstest"

	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/infra/i18n"

	"github.com/rs/zerolog"
)

// fakeWiki is a scripted adapter.WikiClient that records how it was called.
type fakeWiki struct {
	mu          sync.Mutex
	results     []model.SearchResult
	searchErr   error
	ref         model.RandomArticleRef
	randomErr   error
	queries     []string
	randomCalls int
}

func (f *fakeWiki) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeWiki) RandomArticle(ctx context.Context) (model.RandomArticleRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.randomCalls++
	if f.randomErr != nil {
		return model.RandomArticleRef{}, f.randomErr
	}
	return f.ref, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	testFS := fstest.MapFS{
		"locales/uk.yaml": {Data: []byte(
			"random_title: 'RANDOM'\n" +
				"random_description: 'random description'\n" +
				"hint_search: 'SEARCH'\n" +
				"hint_change_query: 'CHANGE'\n" +
				"hint_start_parameter: 'help'\n",
		)},
		"locales/privacy-uk.txt": {Data: []byte("Test Privacy")},
	}
	tr, err := i18n.NewTranslator(testFS, "uk")
	if err != nil {
		panic(err)
	}
	return tr
}
