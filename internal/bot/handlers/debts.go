package handlers

import (
	"errors"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/command"
	"github.com/Proton-105/finance-bot/internal/domain"
)

func (h *Handlers) DebtOwe(c telebot.Context, inv command.Invocation) error {
	return h.addDebt(c, inv, domain.DebtSideOwe, "debt.owe_added")
}

func (h *Handlers) DebtDue(c telebot.Context, inv command.Invocation) error {
	return h.addDebt(c, inv, domain.DebtSideDue, "debt.due_added")
}

func (h *Handlers) addDebt(c telebot.Context, inv command.Invocation, side domain.DebtSide, replyKey string) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	amount, err := inv.Amount(0)
	if err != nil {
		return err
	}

	debt, err := h.ledger.AddDebt(RequestContext(c), userID, side, amount, inv.Word(1), inv.Note())
	if err != nil {
		return err
	}

	return c.Send(strings.TrimSpace(h.tr.F(replyKey, debt.Person, Money(debt.Amount), debt.Note)))
}

func (h *Handlers) DebtPay(c telebot.Context, inv command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	amount, err := inv.Amount(0)
	if err != nil {
		return err
	}
	person := inv.Word(1)

	payment, err := h.ledger.PayDebt(RequestContext(c), userID, person, amount)
	if errors.Is(err, domain.ErrNoOpenDebt) {
		h.log.Info("no open debt to pay", slog.Int64("user_id", userID))
		return c.Send(h.tr.T("debt.no_open"))
	}
	if err != nil {
		return err
	}

	if payment.Closed {
		return c.Send(h.tr.F("debt.paid_full", person))
	}
	return c.Send(h.tr.F("debt.paid_partial", Money(payment.Paid), person, Money(payment.Remaining)))
}

func (h *Handlers) Debts(c telebot.Context, _ command.Invocation) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}

	open, err := h.ledger.OpenDebts(RequestContext(c), userID)
	if err != nil {
		return err
	}

	if open.Empty() {
		return c.Send(h.tr.T("debt.none_open"))
	}

	return c.Send(FormatOpenDebts(h.tr, open), telebot.ModeHTML)
}
