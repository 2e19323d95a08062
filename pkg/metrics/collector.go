// Package metrics exposes Prometheus instruments shared across the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	webhookUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_updates_total",
			Help: "Inbound webhook updates by intake result",
		},
		[]string{"result"},
	)
	debtPaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debt_payments_total",
			Help: "Debt repayments by outcome",
		},
		[]string{"outcome"},
	)
)

// Webhook intake results.
const (
	WebhookEnqueued     = "enqueued"
	WebhookDuplicate    = "duplicate"
	WebhookInvalid      = "invalid"
	WebhookDropped      = "dropped"
	WebhookUnauthorized = "unauthorized"
)

// Debt payment outcomes.
const (
	PaymentPartial  = "partial"
	PaymentSettled  = "settled"
	PaymentNotFound = "not_found"
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// RecordWebhook counts one inbound webhook update.
func RecordWebhook(result string) {
	webhookUpdatesTotal.WithLabelValues(result).Inc()
}

// RecordDebtPayment counts one repayment attempt.
func RecordDebtPayment(outcome string) {
	debtPaymentsTotal.WithLabelValues(outcome).Inc()
}
