package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/command"
)

func (h *Handlers) Income(c telebot.Context, inv command.Invocation) error {
	return h.addTransaction(c, inv, "transaction.income_added")
}

func (h *Handlers) Expense(c telebot.Context, inv command.Invocation) error {
	return h.addTransaction(c, inv, "transaction.expense_added")
}

func (h *Handlers) addTransaction(c telebot.Context, inv command.Invocation, replyKey string) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	amount, err := inv.Amount(0)
	if err != nil {
		return err
	}

	ctx := RequestContext(c)
	add := h.ledger.AddIncome
	if inv.Kind == command.Expense {
		add = h.ledger.AddExpense
	}

	tx, err := add(ctx, userID, amount, inv.Note())
	if err != nil {
		return err
	}

	return c.Send(strings.TrimSpace(h.tr.F(replyKey, Money(tx.Amount), tx.Note)))
}

func (h *Handlers) Balance(c telebot.Context, _ command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	totals, err := h.ledger.Balance(RequestContext(c), userID)
	if err != nil {
		return err
	}

	return c.Send(h.tr.F("balance", Money(totals.Income), Money(totals.Expense), Money(totals.Net())))
}

func (h *Handlers) Summary(c telebot.Context, _ command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	totals, err := h.ledger.MonthlySummary(RequestContext(c), userID)
	if err != nil {
		return err
	}

	return c.Send(h.tr.F("summary", Money(totals.Income), Money(totals.Expense), Money(totals.Net())))
}
