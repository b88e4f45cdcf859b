// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"wikiukbot/internal/application"
	"wikiukbot/internal/config"
	tele "wikiukbot/internal/infra/adapters/telegram"
	"wikiukbot/internal/infra/adapters/wiki"
	"wikiukbot/internal/infra/api"
	"wikiukbot/internal/infra/i18n"
	"wikiukbot/internal/infra/logging"
	"wikiukbot/internal/infra/metrics"
	"wikiukbot/internal/infra/worker"
	"wikiukbot/internal/usecase"

	"github.com/rs/zerolog"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted fields)")
	dry := flag.Bool("dry-run", false, "answer -query once through the noop adapter and exit without contacting Telegram")
	query := flag.String("query", "", "inline query text for -dry-run (empty asks for random articles)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if *dry {
		err = dryRunFromConfig(ctx, cfg, *query, logger)
	} else {
		err = run(ctx, cfg, logger)
	}
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("bot stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

// newFacade wires the wiki client and the inline usecase behind the bot facade.
func newFacade(cfg *config.Config, logger *zerolog.Logger) (*application.BotFacade, error) {
	translator, err := i18n.NewTranslator(i18n.LocalesFS, i18n.DefaultLang)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}
	wikiClient := wiki.NewFromConfig(cfg.Wiki, logger)
	inlineUC := usecase.NewInlineUseCase(wikiClient, translator, wikiClient.ArticleBase(), cfg.Bot.CacheSeconds(), logger)
	return application.NewBotFacade(inlineUC, translator), nil
}

func dryRunFromConfig(ctx context.Context, cfg *config.Config, query string, logger *zerolog.Logger) error {
	facade, err := newFacade(cfg, logger)
	if err != nil {
		return err
	}
	return dryRun(ctx, facade, tele.NewNoopBotAdapter(logger), query)
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	facade, err := newFacade(cfg, logger)
	if err != nil {
		return err
	}

	// ---- Telegram ----
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, cfg.Runtime.Dev, facade, pool, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if cfg.Bot.Mode == config.ModePolling {
		// getUpdates refuses to work while a webhook is set
		if err := bot.DeleteWebhook(ctx, cfg.Bot.DropPendingUpdates); err != nil {
			return err
		}
	}
	logger.Info().
		Str("username", bot.Username()).
		Str("mode", cfg.Bot.Mode).
		Str("random_mode", cfg.Wiki.RandomMode).
		Msg("bot is up and running")

	g, ctx := errgroup.WithContext(ctx)

	switch cfg.Bot.Mode {
	case config.ModeWebhook:
		srv := api.NewServer(bot, cfg.Bot.WebhookPath, cfg.Bot.SecretToken, cfg.Bot.RequestTimeout, logger)
		serve(ctx, g, fmt.Sprintf(":%d", cfg.Bot.Port), srv.Router(), logger)
	default:
		if cfg.Admin.Port > 0 {
			srv := api.NewServer(nil, "", "", cfg.Bot.RequestTimeout, logger)
			serve(ctx, g, fmt.Sprintf(":%d", cfg.Admin.Port), srv.Router(), logger)
		}
		g.Go(func() error { return bot.StartPolling(ctx) })
	}

	return g.Wait()
}

// serve runs an HTTP server in g and shuts it down gracefully when ctx ends.
func serve(ctx context.Context, g *errgroup.Group, addr string, h http.Handler, logger *zerolog.Logger) {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}
