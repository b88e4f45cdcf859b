// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"wikiukbot/internal/domain/model"
)

// InlineButton is one button of an inline keyboard. Exactly one of Data, URL or
// SwitchInlineQuery is expected to be set.
type InlineButton struct {
	Text              string
	Data              string
	URL               string
	SwitchInlineQuery string
}

// TelegramBotAdapter delivers inline answers.
type TelegramBotAdapter interface {
	AnswerInline(ctx context.Context, queryID string, ans *model.InlineAnswer) error
}
