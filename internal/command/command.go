// Package command defines the closed set of bot commands and their argument grammar.
package command

import "fmt"

// Kind identifies one bot command.
type Kind int

const (
	Start Kind = iota
	Income
	Expense
	Balance
	Summary
	DebtOwe
	DebtDue
	DebtPay
	Debts
	FixedAdd
	FixedList

	kindCount
)

// Spec describes the argument schema of a command.
type Spec struct {
	Kind Kind
	Name string
	// MinArgs is the number of required positional arguments.
	MinArgs int
	// NoteFrom is the index where the free-text note starts, or -1 when the command takes none.
	NoteFrom int
	// UsageKey is the i18n key of the hint shown when arguments are missing or invalid.
	UsageKey string
}

var specs = [kindCount]Spec{
	Start:     {Kind: Start, Name: "start", NoteFrom: -1},
	Income:    {Kind: Income, Name: "income", MinArgs: 1, NoteFrom: 1, UsageKey: "usage.income"},
	Expense:   {Kind: Expense, Name: "expense", MinArgs: 1, NoteFrom: 1, UsageKey: "usage.expense"},
	Balance:   {Kind: Balance, Name: "balance", NoteFrom: -1},
	Summary:   {Kind: Summary, Name: "summary", NoteFrom: -1},
	DebtOwe:   {Kind: DebtOwe, Name: "debt_owe", MinArgs: 2, NoteFrom: 2, UsageKey: "usage.debt_owe"},
	DebtDue:   {Kind: DebtDue, Name: "debt_due", MinArgs: 2, NoteFrom: 2, UsageKey: "usage.debt_due"},
	DebtPay:   {Kind: DebtPay, Name: "debt_pay", MinArgs: 2, NoteFrom: -1, UsageKey: "usage.debt_pay"},
	Debts:     {Kind: Debts, Name: "debts", NoteFrom: -1},
	FixedAdd:  {Kind: FixedAdd, Name: "fixed_add", MinArgs: 3, NoteFrom: 3, UsageKey: "usage.fixed_add"},
	FixedList: {Kind: FixedList, Name: "fixed_list", NoteFrom: -1},
}

// All returns every command kind in declaration order.
func All() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Spec returns the argument schema for k.
func (k Kind) Spec() Spec {
	if !k.Valid() {
		return Spec{Kind: k, NoteFrom: -1}
	}
	return specs[k]
}

// Name returns the command name without the leading slash.
func (k Kind) Name() string {
	return k.Spec().Name
}

// Endpoint returns the telebot endpoint for k, e.g. "/debt_pay".
func (k Kind) Endpoint() string {
	return "/" + k.Name()
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return k.Name()
}

// Lookup resolves a command name, with or without the leading slash.
func Lookup(name string) (Kind, bool) {
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	for _, s := range specs {
		if s.Name == name {
			return s.Kind, true
		}
	}
	return 0, false
}
