package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesReceivedTotal,
		inlineQueriesTotal,
		inlineAnswerErrorsTotal,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming updates by type (inline_query, command, other).",
		},
		[]string{"type"},
	)

	inlineQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inline_queries_total",
			Help: "Inline queries handled, by branch (random or search).",
		},
		[]string{"branch"},
	)

	inlineAnswerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inline_answer_errors_total",
			Help: "Inline queries that produced no answer, by error kind.",
		},
		[]string{"kind"},
	)
)

func IncTelegramUpdate(kind string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncInlineQuery(branch string) {
	inlineQueriesTotal.WithLabelValues(norm(branch)).Inc()
}

func IncInlineAnswerError(kind string) {
	inlineAnswerErrorsTotal.WithLabelValues(norm(kind)).Inc()
}
