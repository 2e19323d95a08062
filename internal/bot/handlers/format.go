package handlers

import (
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Proton-105/finance-bot/internal/domain"
	"github.com/Proton-105/finance-bot/internal/i18n"
)

// Money renders an amount with no decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(0)
}

// FormatOpenDebts renders the open debts as HTML, owed group first.
func FormatOpenDebts(tr i18n.Translator, open domain.OpenDebts) string {
	var b strings.Builder
	b.WriteString(tr.T("debt.list_header"))
	b.WriteString("\n")

	if len(open.Owed) > 0 {
		b.WriteString("\n" + tr.T("debt.owed_header") + "\n")
		writeDebtLines(&b, tr, open.Owed)
	}
	if len(open.Due) > 0 {
		b.WriteString("\n" + tr.T("debt.due_header") + "\n")
		writeDebtLines(&b, tr, open.Due)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeDebtLines(b *strings.Builder, tr i18n.Translator, debts []domain.Debt) {
	for _, d := range debts {
		line := tr.F("debt.line", html.EscapeString(d.Person), Money(d.Amount), html.EscapeString(d.Note))
		if d.Note == "" {
			line = strings.TrimSuffix(line, " ()")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// FormatFixedExpenses renders the fixed expenses in day order as plain text.
func FormatFixedExpenses(tr i18n.Translator, expenses []domain.FixedExpense) string {
	var b strings.Builder
	b.WriteString(tr.T("fixed.list_header"))
	for _, e := range expenses {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(tr.F("fixed.line", e.Title, Money(e.Amount), e.DayOfMonth, e.Note)))
	}
	return b.String()
}
