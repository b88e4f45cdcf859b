package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"wikiukbot/internal/application"
	"wikiukbot/internal/config"
	"wikiukbot/internal/domain"
	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
	"wikiukbot/internal/infra/logging"
	"wikiukbot/internal/infra/metrics"
	"wikiukbot/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RealTelegramBotAdapter uses tgbotapi to receive updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot            botAPI
	username       string
	facade         *application.BotFacade
	pool           *worker.Pool
	requestTimeout time.Duration
	dev            bool
	log            *zerolog.Logger
}

// NewRealTelegramBotAdapter connects to Telegram. In dev mode requester handles are logged unredacted.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, dev bool, facade *application.BotFacade, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return newAdapter(bot, bot.Self.UserName, facade, pool, cfg.RequestTimeout, dev, logger)
}

func newAdapter(bot botAPI, username string, facade *application.BotFacade, pool *worker.Pool, timeout time.Duration, dev bool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RealTelegramBotAdapter{
		bot:            bot,
		username:       username,
		facade:         facade,
		pool:           pool,
		requestTimeout: timeout,
		dev:            dev,
		log:            logger,
	}, nil
}

// Username is the bot's @username without the at sign.
func (r *RealTelegramBotAdapter) Username() string { return r.username }

// DeleteWebhook switches the bot to getUpdates, optionally discarding queued updates.
func (r *RealTelegramBotAdapter) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// StartPolling receives updates until ctx is done, handing each one to the worker pool.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("polling needs a worker pool")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	r.pool.Start(ctx)
	defer r.pool.Stop()
	defer r.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			err := r.pool.Submit(func(ctx context.Context) error {
				r.HandleUpdate(ctx, up)
				return nil
			})
			if err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

// HandleUpdate processes one update under its own deadline and trace id. Failures are
// logged and counted here; nothing is sent back to Telegram for them.
func (r *RealTelegramBotAdapter) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()
	if logging.TraceID(ctx) == "" {
		ctx = logging.WithTraceID(ctx, ulid.Make().String())
	}
	ctx = logging.WithUpdateID(ctx, update.UpdateID)

	switch {
	case update.InlineQuery != nil:
		metrics.IncTelegramUpdate("inline_query")
		r.handleInlineQuery(ctx, update.InlineQuery)
	case update.Message != nil && update.Message.IsCommand():
		metrics.IncTelegramUpdate("command")
		if err := r.handleCommand(ctx, update.Message); err != nil {
			l := logging.With(ctx, r.log)
			l.Error().Err(err).Str("command", update.Message.Command()).Msg("command reply failed")
		}
	default:
		metrics.IncTelegramUpdate("other")
	}
}

func (r *RealTelegramBotAdapter) handleInlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) {
	from := ""
	if q.From != nil {
		ctx = logging.WithTgID(ctx, q.From.ID)
		from = logging.Redact(q.From.UserName, r.dev)
	}
	l := logging.With(ctx, r.log)

	ans, err := r.facade.HandleInlineQuery(ctx, q.Query)
	if err == nil {
		err = r.AnswerInline(ctx, q.ID, ans)
	}
	if err != nil {
		kind := domain.KindOf(err)
		metrics.IncInlineAnswerError(string(kind))
		l.Error().Err(err).Str("kind", string(kind)).Str("query", q.Query).Str("from", from).Msg("inline query failed")
		return
	}
	l.Debug().Int("results", len(ans.Items)).Msg("inline query answered")
}

// AnswerInline sends ans as the answer to the inline query queryID.
func (r *RealTelegramBotAdapter) AnswerInline(ctx context.Context, queryID string, ans *model.InlineAnswer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params, err := inlineParams(queryID, ans)
	if err != nil {
		return err
	}
	if _, err := r.bot.MakeRequest("answerInlineQuery", params); err != nil {
		return fmt.Errorf("answer inline query: %w", err)
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return nil
	}
	var reply application.Reply
	switch msg.Command() {
	case "start":
		reply = r.facade.HandleStart(ctx, r.username)
	case "privacy":
		reply = r.facade.HandlePrivacy(ctx)
	default:
		return nil
	}
	return r.sendReply(ctx, msg.Chat.ID, reply)
}

func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, reply application.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	msg.DisableWebPagePreview = reply.DisablePreview
	if len(reply.Buttons) > 0 {
		msg.ReplyMarkup = toKeyboard(reply.Buttons)
	}
	_, err := r.bot.Send(msg)
	return err
}

func toKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var r []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			switch {
			case b.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			case b.SwitchInlineQuery != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonSwitch(b.Text, b.SwitchInlineQuery))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		kb = append(kb, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

func toInlineResults(items []model.InlineResultItem) []interface{} {
	results := make([]interface{}, 0, len(items))
	for _, it := range items {
		article := tgbotapi.NewInlineQueryResultArticle(it.ID, it.Title, it.Share.Text)
		article.Description = it.Description
		if th := it.Thumbnail; th != nil {
			article.ThumbURL = th.URL
			article.ThumbWidth = th.Width
			article.ThumbHeight = th.Height
		}
		article.InputMessageContent = tgbotapi.InputTextMessageContent{
			Text:     it.Share.Text,
			Entities: toEntities(it.Share.Links),
		}
		results = append(results, article)
	}
	return results
}

// inlineParams renders an answer as answerInlineQuery parameters. cache_time is always
// sent: tgbotapi's InlineConfig omits a zero value and Telegram then caches for 300s.
func inlineParams(queryID string, ans *model.InlineAnswer) (tgbotapi.Params, error) {
	params := tgbotapi.Params{"inline_query_id": queryID}
	if err := params.AddInterface("results", toInlineResults(ans.Items)); err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	params["cache_time"] = strconv.Itoa(ans.CacheSeconds)
	if ans.Hint != nil {
		params.AddNonEmpty("switch_pm_text", ans.Hint.Label)
		params.AddNonEmpty("switch_pm_parameter", ans.Hint.StartParameter)
	}
	return params, nil
}

func toEntities(links []model.TextLink) []tgbotapi.MessageEntity {
	if len(links) == 0 {
		return nil
	}
	out := make([]tgbotapi.MessageEntity, 0, len(links))
	for _, l := range links {
		out = append(out, tgbotapi.MessageEntity{Type: "text_link", Offset: l.Offset, Length: l.Length, URL: l.URL})
	}
	return out
}
