package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/health"
	"github.com/Proton-105/finance-bot/internal/jobs"
	"github.com/Proton-105/finance-bot/pkg/logger"
)

type fakeQueue struct {
	mu      sync.Mutex
	updates []telebot.Update
	err     error
}

func (q *fakeQueue) Enqueue(_ context.Context, update telebot.Update) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.updates = append(q.updates, update)
	return nil
}

type fakeHealth struct {
	report health.Report
}

func (f fakeHealth) Check(context.Context) health.Report {
	return f.report
}

func newTestServer(q *fakeQueue, secret string) http.Handler {
	return New(Options{
		Queue:         q,
		Health:        fakeHealth{report: health.Report{Healthy: true, Components: map[string]string{"database": health.StatusOK}}},
		WebhookSecret: secret,
		Log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

const updateBody = `{"update_id":42,"message":{"message_id":1,"text":"/income 100 salary","from":{"id":7},"chat":{"id":7,"type":"private"}}}`

func TestRootReturnsOK(t *testing.T) {
	h := newTestServer(&fakeQueue{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(logger.CorrelationIDHeader))
}

func TestWebhookEnqueuesUpdate(t *testing.T) {
	q := &fakeQueue{}
	h := newTestServer(q, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(updateBody))
	req.Header.Set(SecretTokenHeader, "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	require.Len(t, q.updates, 1)
	assert.Equal(t, 42, q.updates[0].ID)
	require.NotNil(t, q.updates[0].Message)
	assert.Equal(t, "/income 100 salary", q.updates[0].Message.Text)
}

func TestWebhookIgnoresWrongSecret(t *testing.T) {
	q := &fakeQueue{}
	h := newTestServer(q, "s3cret")

	for _, secret := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(updateBody))
		if secret != "" {
			req.Header.Set(SecretTokenHeader, secret)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "secret %q", secret)
		assert.Equal(t, "ok", rec.Body.String())
	}
	assert.Empty(t, q.updates)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `webhook_updates_total{result="unauthorized"}`)
}

func TestWebhookAcksFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "invalid json", body: "{not json"},
		{name: "queue full", body: updateBody, err: jobs.ErrQueueFull},
		{name: "duplicate", body: updateBody, err: jobs.ErrDuplicateUpdate},
		{name: "too large", body: `{"update_id":1,"message":{"text":"` + strings.Repeat("x", maxUpdateBytes) + `"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fakeQueue{err: tt.err}, "")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "ok", rec.Body.String())
		})
	}
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		report health.Report
		status int
	}{
		{name: "healthy", report: health.Report{Healthy: true, Components: map[string]string{"database": health.StatusOK}}, status: http.StatusOK},
		{name: "unhealthy", report: health.Report{Healthy: false, Components: map[string]string{"database": "connection refused"}}, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Options{Queue: &fakeQueue{}, Health: fakeHealth{report: tt.report}})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got health.Report
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.report, got)
		})
	}
}

func TestMetricsExposeWebhookCounters(t *testing.T) {
	h := newTestServer(&fakeQueue{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(updateBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `webhook_updates_total{result="enqueued"}`)
}
