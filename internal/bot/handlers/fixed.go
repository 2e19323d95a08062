package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/command"
)

func (h *Handlers) FixedAdd(c telebot.Context, inv command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	amount, err := inv.Amount(0)
	if err != nil {
		return err
	}
	day, err := inv.Day(2)
	if err != nil {
		return err
	}

	expense, err := h.ledger.AddFixedExpense(RequestContext(c), userID, inv.Word(1), amount, day, inv.Note())
	if err != nil {
		return err
	}

	return c.Send(h.tr.F("fixed.added", expense.Title, Money(expense.Amount), expense.DayOfMonth))
}

func (h *Handlers) FixedList(c telebot.Context, _ command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	expenses, err := h.ledger.FixedExpenses(RequestContext(c), userID)
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		return c.Send(h.tr.T("fixed.none"))
	}

	return c.Send(FormatFixedExpenses(h.tr, expenses))
}
