// File: cmd/setwebhook/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"wikiukbot/internal/config"
	"wikiukbot/internal/infra/logging"
	red "wikiukbot/internal/infra/redis"
)

const lockKey = "wikiukbot:setwebhook"

// requester is the slice of *tgbotapi.BotAPI used here.
type requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

type options struct {
	remove   bool
	attempts int
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	remove := flag.Bool("delete", false, "remove the webhook instead of setting it")
	attempts := flag.Int("attempts", 3, "max attempts when Telegram asks to retry later")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, options{remove: *remove, attempts: *attempts}, newTelegram, logger)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("webhook registration failed")
		os.Exit(1)
	}
}

func newTelegram(token string) (requester, error) {
	return tgbotapi.NewBotAPI(token)
}

// run sets (or deletes) the webhook, under the Redis lock when Redis is configured.
func run(ctx context.Context, cfg *config.Config, opts options, connect func(token string) (requester, error), logger *zerolog.Logger) error {
	if !opts.remove && cfg.Bot.WebhookURL == "" {
		return errors.New("bot.webhook_url (or WEBHOOK_URL) is required to set a webhook")
	}

	bot, err := connect(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	register := func(ctx context.Context) error {
		if opts.remove {
			return callWithRetry(ctx, bot, "deleteWebhook", deleteParams(cfg.Bot), opts.attempts, sleepCtx, logger)
		}
		return callWithRetry(ctx, bot, "setWebhook", webhookParams(cfg.Bot), opts.attempts, sleepCtx, logger)
	}

	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		if err := red.WithLock(ctx, red.NewLocker(rc), lockKey, cfg.Redis.LockTTL, register); err != nil {
			return err
		}
	} else if err := register(ctx); err != nil {
		return err
	}

	if opts.remove {
		logger.Info().Msg("webhook deleted")
		return nil
	}
	logger.Info().Str("url", cfg.Bot.WebhookURL).Bool("secret_token", cfg.Bot.SecretToken != "").Msg("webhook set")
	return nil
}

func webhookParams(bot config.BotConfig) tgbotapi.Params {
	p := tgbotapi.Params{}
	p.AddNonEmpty("url", bot.WebhookURL)
	p.AddNonEmpty("secret_token", bot.SecretToken)
	p.AddBool("drop_pending_updates", bot.DropPendingUpdates)
	p.AddNonEmpty("allowed_updates", `["inline_query","message"]`)
	return p
}

func deleteParams(bot config.BotConfig) tgbotapi.Params {
	p := tgbotapi.Params{}
	p.AddBool("drop_pending_updates", bot.DropPendingUpdates)
	return p
}

// callWithRetry calls endpoint, waiting out Telegram's retry_after between attempts.
// Any other failure is returned immediately.
func callWithRetry(ctx context.Context, bot requester, endpoint string, params tgbotapi.Params, attempts int, sleep sleepFunc, logger *zerolog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if _, err = bot.MakeRequest(endpoint, params); err == nil {
			return nil
		}
		var tgErr *tgbotapi.Error
		if !errors.As(err, &tgErr) || tgErr.RetryAfter <= 0 || i == attempts {
			break
		}
		wait := time.Duration(tgErr.RetryAfter) * time.Second
		logger.Warn().Str("endpoint", endpoint).Dur("retry_after", wait).Int("attempt", i).Msg("rate limited by telegram")
		if serr := sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return fmt.Errorf("%s: %w", endpoint, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
