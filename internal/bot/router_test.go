package bot

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	"github.com/Proton-105/finance-bot/internal/command"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/i18n"
	"github.com/Proton-105/finance-bot/pkg/config"
	"github.com/Proton-105/finance-bot/pkg/logger"
)

type fakeContext struct {
	telebot.Context

	sender  *telebot.User
	message *telebot.Message
	store   map[string]interface{}
	sent    []string
}

func newFakeContext(text, payload string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: 7},
		message: &telebot.Message{Text: text, Payload: payload},
		store:   map[string]interface{}{},
	}
}

func (f *fakeContext) Sender() *telebot.User         { return f.sender }
func (f *fakeContext) Message() *telebot.Message     { return f.message }
func (f *fakeContext) Get(key string) interface{}    { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.store[key] = v }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func translator(t *testing.T) i18n.Translator {
	t.Helper()
	m, err := i18n.Load("ar")
	require.NoError(t, err)
	return m.Translator("ar")
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	log := discard()
	errHandler := apperrors.NewHandler(log)

	r := NewRouter(log)
	r.Use(RecoveryMiddleware(log, errHandler))
	r.Use(ContextMiddleware)
	r.Use(ErrorHandlingMiddleware(errHandler, translator(t), log))
	r.Use(LoggingMiddleware(log))
	return r
}

func TestValidateReportsMissingKinds(t *testing.T) {
	r := NewRouter(discard())
	r.Register(command.Start, func(telebot.Context, command.Invocation) error { return nil })

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debt_pay")
	assert.NotContains(t, err.Error(), "start")
}

func TestHandlerParsesPayload(t *testing.T) {
	r := newTestRouter(t)

	var got command.Invocation
	var corrID string
	r.Register(command.DebtOwe, func(c telebot.Context, inv command.Invocation) error {
		got = inv
		corrID = logger.CorrelationIDFromContext(handlers.RequestContext(c))
		return nil
	})

	c := newFakeContext("/debt_owe 50000 أحمد قرض", "50000 أحمد قرض")
	require.NoError(t, r.Handler(command.DebtOwe)(c))

	assert.Equal(t, []string{"50000", "أحمد", "قرض"}, got.Args)
	assert.NotEmpty(t, corrID)
	kind, ok := handlers.CommandOf(c)
	require.True(t, ok)
	assert.Equal(t, command.DebtOwe, kind)
}

func TestHandlerFallsBackToMessageText(t *testing.T) {
	r := newTestRouter(t)

	var got command.Invocation
	r.Register(command.Income, func(_ telebot.Context, inv command.Invocation) error {
		got = inv
		return nil
	})

	c := newFakeContext("/income@finance_bot 100 راتب", "")
	require.NoError(t, r.Handler(command.Income)(c))
	assert.Equal(t, []string{"100", "راتب"}, got.Args)
}

func TestHandlerKeepsArgsAfterLineBreak(t *testing.T) {
	tests := []struct {
		name    string
		kind    command.Kind
		text    string
		payload string
		want    []string
	}{
		{name: "note on second line", kind: command.Income, text: "/income 25000\nراتب شهر", payload: "25000", want: []string{"25000", "راتب", "شهر"}},
		{name: "person on second line", kind: command.DebtOwe, text: "/debt_owe 50000\nأحمد", payload: "50000", want: []string{"50000", "أحمد"}},
		{name: "tab separated", kind: command.Expense, text: "/expense\t300\tغداء", payload: "", want: []string{"300", "غداء"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t)

			var got command.Invocation
			r.Register(tt.kind, func(_ telebot.Context, inv command.Invocation) error {
				got = inv
				return nil
			})

			c := newFakeContext(tt.text, tt.payload)
			require.NoError(t, r.Handler(tt.kind)(c))
			assert.Empty(t, c.sent)
			assert.Equal(t, tt.want, got.Args)
		})
	}
}

func TestMissingArgsReplyWithUsageHint(t *testing.T) {
	r := newTestRouter(t)

	called := false
	r.Register(command.DebtPay, func(telebot.Context, command.Invocation) error {
		called = true
		return nil
	})

	c := newFakeContext("/debt_pay 20000", "20000")
	require.NoError(t, r.Handler(command.DebtPay)(c))

	assert.False(t, called)
	assert.Equal(t, []string{"اكتبها: /debt_pay 20000 أحمد"}, c.sent)
}

func TestHandlerErrorGetsGenericReply(t *testing.T) {
	r := newTestRouter(t)
	r.Register(command.Balance, func(telebot.Context, command.Invocation) error {
		return apperrors.NewDatabaseError(errors.New("connection reset"))
	})

	c := newFakeContext("/balance", "")
	require.NoError(t, r.Handler(command.Balance)(c))
	assert.Equal(t, []string{apperrors.DefaultUserMessage}, c.sent)
}

func TestPanicIsRecovered(t *testing.T) {
	r := newTestRouter(t)
	r.Register(command.Summary, func(telebot.Context, command.Invocation) error {
		panic("boom")
	})

	c := newFakeContext("/summary", "")
	require.NoError(t, r.Handler(command.Summary)(c))
	assert.Equal(t, []string{apperrors.DefaultUserMessage}, c.sent)
}

func TestMiddlewareOrder(t *testing.T) {
	r := NewRouter(discard())

	var order []string
	mark := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	r.Use(mark("outer"))
	r.Use(mark("inner"))
	r.Register(command.Debts, func(telebot.Context, command.Invocation) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, r.Handler(command.Debts)(newFakeContext("/debts", "")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLoggingMiddlewareWritesCommand(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	r := NewRouter(log)
	r.Use(ContextMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Register(command.FixedList, func(telebot.Context, command.Invocation) error { return nil })

	require.NoError(t, r.Handler(command.FixedList)(newFakeContext("/fixed_list", "")))
	assert.Contains(t, buf.String(), "command=fixed_list")
	assert.Contains(t, buf.String(), "user_id=7")
}

func TestNewOfflineBindsEveryCommand(t *testing.T) {
	log := discard()
	b, err := New(
		config.BotConfig{Token: "123:offline", Offline: true},
		log,
		handlers.New(nil, translator(t), log),
		translator(t),
		apperrors.NewHandler(log),
	)
	require.NoError(t, err)
	require.NotNil(t, b.Telebot())
	require.NoError(t, b.router.Validate())
}
