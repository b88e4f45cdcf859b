package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs what would have been sent instead of calling Telegram.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NoopBotAdapter{log: logger}
}

func (b *NoopBotAdapter) AnswerInline(ctx context.Context, queryID string, ans *model.InlineAnswer) error {
	if err := simulateLatency(ctx); err != nil {
		return err
	}
	titles := make([]string, 0, len(ans.Items))
	for _, it := range ans.Items {
		titles = append(titles, it.Title)
	}
	ev := b.log.Info().Str("query_id", queryID).Strs("titles", titles).Int("cache_time", ans.CacheSeconds)
	if ans.Hint != nil {
		ev = ev.Str("hint", ans.Hint.Label)
	}
	ev.Msg("[noop-telegram] answer inline query")
	return nil
}

func simulateLatency(ctx context.Context) error {
	select {
	case <-time.After(10 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
