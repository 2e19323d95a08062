// Package handlers implements one Telegram handler per finance command.
package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/command"
	"github.com/Proton-105/finance-bot/internal/domain"
)

// Handler processes one update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// CommandHandler processes a parsed command.
type CommandHandler func(c telebot.Context, inv command.Invocation) error

// Ledger is the finance service the handlers call.
type Ledger interface {
	AddIncome(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error)
	AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error)
	Balance(ctx context.Context, userID int64) (domain.Totals, error)
	MonthlySummary(ctx context.Context, userID int64) (domain.Totals, error)
	AddDebt(ctx context.Context, userID int64, side domain.DebtSide, amount decimal.Decimal, person, note string) (*domain.Debt, error)
	PayDebt(ctx context.Context, userID int64, person string, amount decimal.Decimal) (domain.Payment, error)
	OpenDebts(ctx context.Context, userID int64) (domain.OpenDebts, error)
	AddFixedExpense(ctx context.Context, userID int64, title string, amount decimal.Decimal, day int, note string) (*domain.FixedExpense, error)
	FixedExpenses(ctx context.Context, userID int64) ([]domain.FixedExpense, error)
}

const (
	contextKey = "ctx"
	commandKey = "command"
)

// WithContext stores ctx on the update so downstream handlers can use it.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// RequestContext returns the context stored by WithContext, or context.Background.
func RequestContext(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// WithCommand records which command the update resolved to.
func WithCommand(c telebot.Context, kind command.Kind) {
	c.Set(commandKey, kind)
}

// CommandOf returns the command recorded by WithCommand.
func CommandOf(c telebot.Context) (command.Kind, bool) {
	if c == nil {
		return 0, false
	}
	kind, ok := c.Get(commandKey).(command.Kind)
	return kind, ok
}
