package domain

import "github.com/shopspring/decimal"

// Payment describes the outcome of applying a repayment to a debt.
type Payment struct {
	DebtID    int64
	Person    string
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Closed    bool
}

// ApplyPayment decrements the debt by amount. A debt that would reach zero or
// below is clamped to zero and closed; overpayment is not carried as credit.
func (d *Debt) ApplyPayment(amount decimal.Decimal) Payment {
	remaining := d.Amount.Sub(amount)
	if remaining.LessThanOrEqual(decimal.Zero) {
		d.Amount = decimal.Zero
		d.IsClosed = true
	} else {
		d.Amount = remaining
	}

	return Payment{
		DebtID:    d.ID,
		Person:    d.Person,
		Paid:      amount,
		Remaining: d.Amount,
		Closed:    d.IsClosed,
	}
}
