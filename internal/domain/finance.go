// Package domain holds the finance records tracked per Telegram user.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoOpenDebt indicates that no open debt matches the requested counterparty.
	ErrNoOpenDebt = errors.New("no open debt for counterparty")
	// ErrNonPositiveAmount indicates that a monetary amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrInvalidDay indicates a day of month outside 1..31.
	ErrInvalidDay = errors.New("day of month must be between 1 and 31")
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// DebtSide is the direction of a debt relative to the user.
type DebtSide string

const (
	// DebtSideOwe means the user owes the counterparty.
	DebtSideOwe DebtSide = "owe"
	// DebtSideDue means the counterparty owes the user.
	DebtSideDue DebtSide = "due"
)

// Valid reports whether s is a known side.
func (s DebtSide) Valid() bool {
	return s == DebtSideOwe || s == DebtSideDue
}

// Transaction is an immutable income or expense record.
type Transaction struct {
	ID        int64
	UserID    int64
	Type      TransactionType
	Amount    decimal.Decimal
	Category  string
	Note      string
	CreatedAt time.Time
}

// Debt is an informal debt with a named counterparty.
type Debt struct {
	ID        int64
	UserID    int64
	Person    string
	Side      DebtSide
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
	IsClosed  bool
}

// FixedExpense is a recurring monthly reminder; it never affects totals.
type FixedExpense struct {
	ID         int64
	UserID     int64
	Title      string
	Amount     decimal.Decimal
	DayOfMonth int
	Note       string
	CreatedAt  time.Time
}

// Totals aggregates transaction amounts by type.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// OpenDebts groups open debts by side, newest first.
type OpenDebts struct {
	Owed []Debt
	Due  []Debt
}

// Empty reports whether there are no open debts on either side.
func (o OpenDebts) Empty() bool {
	return len(o.Owed) == 0 && len(o.Due) == 0
}

// MonthStart returns midnight of the first day of t's month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
