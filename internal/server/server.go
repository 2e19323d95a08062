// Package server exposes the webhook intake and operational endpoints over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/health"
	"github.com/Proton-105/finance-bot/internal/jobs"
	"github.com/Proton-105/finance-bot/internal/middleware"
	"github.com/Proton-105/finance-bot/pkg/logger"
	"github.com/Proton-105/finance-bot/pkg/metrics"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// Enqueuer accepts decoded updates.
type Enqueuer interface {
	Enqueue(ctx context.Context, update telebot.Update) error
}

// Healther reports dependency status.
type Healther interface {
	Check(ctx context.Context) health.Report
}

// Options configures the router.
type Options struct {
	Queue         Enqueuer
	Health        Healther
	WebhookSecret string
	Log           *slog.Logger
}

type webhookHandler struct {
	queue  Enqueuer
	secret string
	log    *slog.Logger
}

// New returns the HTTP handler serving /, /webhook, /healthz and /metrics.
func New(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(logger.Middleware)
	router.Use(middleware.New(log))
	router.Use(chimw.Recoverer)

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w)
	})

	wh := &webhookHandler{queue: opts.Queue, secret: opts.WebhookSecret, log: log}
	router.Post("/webhook", wh.ServeHTTP)

	if opts.Health != nil {
		router.Get("/healthz", healthHandler(opts.Health, log))
	}
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func (h *webhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Telegram redelivers anything that is not acknowledged with 2xx, so every
	// request is acked with ok whatever happens to it.
	defer writeOK(w)

	if h.secret != "" {
		got := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			metrics.RecordWebhook(metrics.WebhookUnauthorized)
			h.log.Warn("webhook secret mismatch, update ignored", slog.String("remote_addr", r.RemoteAddr))
			return
		}
	}

	var update telebot.Update
	body := http.MaxBytesReader(w, r.Body, maxUpdateBytes)
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		metrics.RecordWebhook(metrics.WebhookInvalid)
		h.log.Warn("undecodable webhook update", slog.Any("error", err))
		return
	}

	if err := h.queue.Enqueue(r.Context(), update); err != nil {
		if errors.Is(err, jobs.ErrDuplicateUpdate) {
			metrics.RecordWebhook(metrics.WebhookDuplicate)
			h.log.Debug("duplicate webhook update", slog.Int("update_id", update.ID))
			return
		}
		metrics.RecordWebhook(metrics.WebhookDropped)
		h.log.Error("failed to enqueue update",
			slog.Int("update_id", update.ID),
			slog.Any("error", err),
		)
		return
	}

	metrics.RecordWebhook(metrics.WebhookEnqueued)
}

func healthHandler(checker Healther, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := checker.Check(r.Context())

		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("failed to encode health report", slog.Any("error", err))
		}
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
