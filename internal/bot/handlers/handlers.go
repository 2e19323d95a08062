package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/command"
	"github.com/Proton-105/finance-bot/internal/i18n"
)

// Handlers binds the ledger and the message catalog to the command handlers.
type Handlers struct {
	ledger Ledger
	tr     i18n.Translator
	log    *slog.Logger
}

func New(ledger Ledger, tr i18n.Translator, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{ledger: ledger, tr: tr, log: log}
}

// For returns the handler of kind, or nil for an unknown kind.
func (h *Handlers) For(kind command.Kind) CommandHandler {
	switch kind {
	case command.Start:
		return h.Start
	case command.Income:
		return h.Income
	case command.Expense:
		return h.Expense
	case command.Balance:
		return h.Balance
	case command.Summary:
		return h.Summary
	case command.DebtOwe:
		return h.DebtOwe
	case command.DebtDue:
		return h.DebtDue
	case command.DebtPay:
		return h.DebtPay
	case command.Debts:
		return h.Debts
	case command.FixedAdd:
		return h.FixedAdd
	case command.FixedList:
		return h.FixedList
	default:
		return nil
	}
}

func (h *Handlers) Start(c telebot.Context, _ command.Invocation) error {
	return c.Send(h.tr.T("help"))
}

func senderID(c telebot.Context) (int64, bool) {
	if c == nil || c.Sender() == nil {
		return 0, false
	}
	return c.Sender().ID, true
}
