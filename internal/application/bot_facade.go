package application

import (
	"context"
	"errors"

	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
)

// Reply is a chat message produced by a command, ready for the Telegram adapter.
type Reply struct {
	Text           string
	HTML           bool
	DisablePreview bool
	Buttons        [][]adapter.InlineButton
}

// BotFacade composes usecases into high-level bot commands.
type BotFacade struct {
	InlineUC InlineUseCaseIface
	tr       Catalog
}

// NewBotFacade constructs a facade from the inline usecase and the message catalog.
func NewBotFacade(inlineUC InlineUseCaseIface, tr Catalog) *BotFacade {
	return &BotFacade{InlineUC: inlineUC, tr: tr}
}

// HandleInlineQuery answers one inline query. Errors are returned as-is so the
// caller can classify them.
func (b *BotFacade) HandleInlineQuery(ctx context.Context, rawQuery string) (*model.InlineAnswer, error) {
	if b.InlineUC == nil {
		return nil, errors.New("inline usecase not available")
	}
	return b.InlineUC.Answer(ctx, rawQuery)
}

// HandleStart returns the welcome message with a button that opens inline mode
// prefilled with a sample query.
func (b *BotFacade) HandleStart(_ context.Context, botUsername string) Reply {
	return Reply{
		Text:           b.tr.T("start_message", botUsername),
		HTML:           true,
		DisablePreview: true,
		Buttons: [][]adapter.InlineButton{{
			{Text: b.tr.T("start_try_button"), SwitchInlineQuery: b.tr.T("start_try_query")},
		}},
	}
}

// HandlePrivacy returns the privacy notice.
func (b *BotFacade) HandlePrivacy(_ context.Context) Reply {
	return Reply{Text: b.tr.Privacy()}
}
