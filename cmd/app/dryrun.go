package main

import (
	"context"
	"fmt"

	"wikiukbot/internal/application"
	"wikiukbot/internal/domain/ports/adapter"
)

const dryRunQueryID = "dry-run"

// dryRun answers a single inline query and hands the answer to out.
func dryRun(ctx context.Context, facade *application.BotFacade, out adapter.TelegramBotAdapter, query string) error {
	ans, err := facade.HandleInlineQuery(ctx, query)
	if err != nil {
		return fmt.Errorf("dry run %q: %w", query, err)
	}
	return out.AnswerInline(ctx, dryRunQueryID, ans)
}
