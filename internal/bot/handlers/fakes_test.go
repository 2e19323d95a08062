package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/domain"
)

// fakeContext implements the parts of telebot.Context the handlers touch.
type fakeContext struct {
	telebot.Context

	sender  *telebot.User
	message *telebot.Message
	store   map[string]interface{}
	sent    []string
	opts    [][]interface{}
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: userID},
		message: &telebot.Message{Text: text},
		store:   map[string]interface{}{},
	}
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Message() *telebot.Message   { return f.message }
func (f *fakeContext) Text() string                { return f.message.Text }
func (f *fakeContext) Callback() *telebot.Callback { return nil }
func (f *fakeContext) Get(key string) interface{}  { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) {
	f.store[key] = v
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	f.opts = append(f.opts, opts)
	return nil
}

func (f *fakeContext) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) AddIncome(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, amount, note)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, amount, note)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) Balance(ctx context.Context, userID int64) (domain.Totals, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Totals), args.Error(1)
}

func (m *mockLedger) MonthlySummary(ctx context.Context, userID int64) (domain.Totals, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Totals), args.Error(1)
}

func (m *mockLedger) AddDebt(ctx context.Context, userID int64, side domain.DebtSide, amount decimal.Decimal, person, note string) (*domain.Debt, error) {
	args := m.Called(ctx, userID, side, amount, person, note)
	d, _ := args.Get(0).(*domain.Debt)
	return d, args.Error(1)
}

func (m *mockLedger) PayDebt(ctx context.Context, userID int64, person string, amount decimal.Decimal) (domain.Payment, error) {
	args := m.Called(ctx, userID, person, amount)
	return args.Get(0).(domain.Payment), args.Error(1)
}

func (m *mockLedger) OpenDebts(ctx context.Context, userID int64) (domain.OpenDebts, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.OpenDebts), args.Error(1)
}

func (m *mockLedger) AddFixedExpense(ctx context.Context, userID int64, title string, amount decimal.Decimal, day int, note string) (*domain.FixedExpense, error) {
	args := m.Called(ctx, userID, title, amount, day, note)
	e, _ := args.Get(0).(*domain.FixedExpense)
	return e, args.Error(1)
}

func (m *mockLedger) FixedExpenses(ctx context.Context, userID int64) ([]domain.FixedExpense, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]domain.FixedExpense)
	return list, args.Error(1)
}
