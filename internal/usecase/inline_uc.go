// File: internal/usecase/inline_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
	"wikiukbot/internal/infra/logging"
	"wikiukbot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ InlineUseCase = (*inlineUC)(nil)

// Catalog keys used by the inline flow.
const (
	keyRandomTitle       = "random_title"
	keyRandomDescription = "random_description"
	keyHintSearch        = "hint_search"
	keyHintChangeQuery   = "hint_change_query"
	keyHintStartParam    = "hint_start_parameter"
)

// Translator resolves display strings.
type Translator interface {
	T(key string, args ...interface{}) string
}

// InlineUseCase answers inline queries.
type InlineUseCase interface {
	// Answer returns a complete answer or an error; it never returns a partial answer.
	Answer(ctx context.Context, rawQuery string) (*model.InlineAnswer, error)
}

type inlineUC struct {
	wiki         adapter.WikiClient
	tr           Translator
	articleBase  string
	cacheSeconds int
	log          *zerolog.Logger
}

func NewInlineUseCase(wiki adapter.WikiClient, tr Translator, articleBase string, searchCacheSeconds int, logger *zerolog.Logger) *inlineUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &inlineUC{
		wiki:         wiki,
		tr:           tr,
		articleBase:  articleBase,
		cacheSeconds: searchCacheSeconds,
		log:          logger,
	}
}

func (uc *inlineUC) Answer(ctx context.Context, rawQuery string) (*model.InlineAnswer, error) {
	defer logging.TraceDuration(logging.With(ctx, uc.log), "InlineUseCase.Answer")()

	query := strings.TrimSpace(rawQuery)
	if query == "" {
		metrics.IncInlineQuery("random")
		return uc.random(ctx)
	}
	metrics.IncInlineQuery("search")
	return uc.search(ctx, query)
}

func (uc *inlineUC) random(ctx context.Context) (*model.InlineAnswer, error) {
	ref, err := uc.wiki.RandomArticle(ctx)
	if err != nil {
		return nil, fmt.Errorf("random article: %w", err)
	}
	item := PresentRandomArticle(ref, uc.articleBase, uc.tr.T(keyRandomTitle), uc.tr.T(keyRandomDescription))
	return &model.InlineAnswer{
		Items:        []model.InlineResultItem{item},
		Hint:         uc.hint(keyHintSearch),
		CacheSeconds: 0,
	}, nil
}

func (uc *inlineUC) search(ctx context.Context, query string) (*model.InlineAnswer, error) {
	results, err := uc.wiki.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	ans := &model.InlineAnswer{
		Items:        make([]model.InlineResultItem, 0, len(results)),
		CacheSeconds: uc.cacheSeconds,
	}
	for _, r := range results {
		ans.Items = append(ans.Items, PresentSearchResult(r, uc.articleBase))
	}
	if len(ans.Items) == 0 {
		ans.Hint = uc.hint(keyHintChangeQuery)
	}
	uc.log.Debug().Int("results", len(ans.Items)).Msg("search answered")
	return ans, nil
}

func (uc *inlineUC) hint(labelKey string) *model.UIHint {
	return &model.UIHint{Label: uc.tr.T(labelKey), StartParameter: uc.tr.T(keyHintStartParam)}
}
