package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"wikiukbot/internal/domain"
	"wikiukbot/internal/infra/logging"
	"wikiukbot/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// SecretTokenHeader carries the secret_token given to setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// UpdateHandler consumes decoded Telegram updates. It owns error handling for them.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Server exposes the webhook endpoint together with /health and /metrics.
type Server struct {
	bot            UpdateHandler
	webhookPath    string
	secretToken    string
	requestTimeout time.Duration
	log            *zerolog.Logger
}

// NewServer constructs the HTTP layer. A nil bot serves only /health and /metrics,
// which is what polling mode exposes on the admin port.
func NewServer(bot UpdateHandler, webhookPath, secretToken string, requestTimeout time.Duration, logger *zerolog.Logger) *Server {
	if webhookPath == "" {
		webhookPath = "/api/webhook"
	}
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{
		bot:            bot,
		webhookPath:    webhookPath,
		secretToken:    secretToken,
		requestTimeout: requestTimeout,
		log:            logger,
	}
}

// Router builds the chi router with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if s.bot != nil {
		// any-method route first; Post below replaces it for POST only
		r.HandleFunc(s.webhookPath, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		r.With(Timeout(s.requestTimeout)).Post(s.webhookPath, s.handleWebhook)
	}
	return r
}

// handleWebhook acks every authenticated delivery with 200 so Telegram never
// redelivers, whatever happened while handling it.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.secretToken != "" {
		got := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secretToken)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	l := logging.With(r.Context(), s.log)
	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		l.Warn().Err(err).Msg("undecodable webhook body")
		w.WriteHeader(http.StatusOK)
		return
	}

	s.dispatch(r.Context(), l, update)
	w.WriteHeader(http.StatusOK)
}

// dispatch hands the update to the bot; a panic is logged and swallowed so the
// delivery is still acked.
func (s *Server) dispatch(ctx context.Context, l *zerolog.Logger, update tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			query := ""
			if update.InlineQuery != nil {
				query = update.InlineQuery.Query
			}
			metrics.IncInlineAnswerError(string(domain.KindUnexpected))
			l.Error().
				Interface("panic", rec).
				Str("kind", string(domain.KindUnexpected)).
				Int("update_id", update.UpdateID).
				Str("query", query).
				Msg("update handler panicked")
		}
	}()
	s.bot.HandleUpdate(ctx, update)
}
