// Package ledger implements balance, summary and debt settlement on top of the repositories.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Proton-105/finance-bot/internal/domain"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/repository"
	"github.com/Proton-105/finance-bot/pkg/metrics"
)

// Service is the aggregation engine for one deployment; every call is scoped by user id.
type Service struct {
	transactions repository.TransactionRepository
	debts        repository.DebtRepository
	fixed        repository.FixedExpenseRepository
	log          *slog.Logger
	now          func() time.Time
	loc          *time.Location
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for the monthly window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone in which "this month" is computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(
	transactions repository.TransactionRepository,
	debts repository.DebtRepository,
	fixed repository.FixedExpenseRepository,
	opts ...Option,
) *Service {
	s := &Service{
		transactions: transactions,
		debts:        debts,
		fixed:        fixed,
		log:          slog.Default(),
		now:          time.Now,
		loc:          time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AddIncome(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	return s.addTransaction(ctx, userID, domain.TransactionIncome, amount, note)
}

func (s *Service) AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	return s.addTransaction(ctx, userID, domain.TransactionExpense, amount, note)
}

func (s *Service) addTransaction(ctx context.Context, userID int64, kind domain.TransactionType, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	tx := &domain.Transaction{
		UserID:   userID,
		Type:     kind,
		Amount:   amount,
		Category: string(kind),
		Note:     note,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return tx, nil
}

// Balance returns all-time totals for the user.
func (s *Service) Balance(ctx context.Context, userID int64) (domain.Totals, error) {
	totals, err := s.transactions.Totals(ctx, userID, time.Time{})
	if err != nil {
		return domain.Totals{}, apperrors.NewDatabaseError(err)
	}
	return totals, nil
}

// MonthlySummary returns totals since the first day of the current month.
func (s *Service) MonthlySummary(ctx context.Context, userID int64) (domain.Totals, error) {
	since := domain.MonthStart(s.now().In(s.loc))

	totals, err := s.transactions.Totals(ctx, userID, since)
	if err != nil {
		return domain.Totals{}, apperrors.NewDatabaseError(err)
	}
	return totals, nil
}

func (s *Service) AddDebt(ctx context.Context, userID int64, side domain.DebtSide, amount decimal.Decimal, person, note string) (*domain.Debt, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("unknown debt side %q", side)
	}
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	debt := &domain.Debt{
		UserID: userID,
		Person: strings.TrimSpace(person),
		Side:   side,
		Amount: amount,
		Note:   note,
	}
	if err := s.debts.Create(ctx, debt); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return debt, nil
}

// PayDebt repays the newest open debt the user owes to person.
// It returns domain.ErrNoOpenDebt when there is none.
func (s *Service) PayDebt(ctx context.Context, userID int64, person string, amount decimal.Decimal) (domain.Payment, error) {
	if !amount.IsPositive() {
		return domain.Payment{}, domain.ErrNonPositiveAmount
	}

	var payment domain.Payment
	_, err := s.debts.UpdateLatestOpen(ctx, userID, strings.TrimSpace(person), domain.DebtSideOwe, func(d *domain.Debt) error {
		payment = d.ApplyPayment(amount)
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrNoOpenDebt):
		metrics.RecordDebtPayment(metrics.PaymentNotFound)
		return domain.Payment{}, domain.ErrNoOpenDebt
	case err != nil:
		return domain.Payment{}, apperrors.NewDatabaseError(err)
	}

	outcome := metrics.PaymentPartial
	if payment.Closed {
		outcome = metrics.PaymentSettled
	}
	metrics.RecordDebtPayment(outcome)

	s.log.DebugContext(ctx, "debt payment applied",
		slog.Int64("user_id", userID),
		slog.Int64("debt_id", payment.DebtID),
		slog.Bool("closed", payment.Closed),
	)

	return payment, nil
}

// OpenDebts lists open debts grouped by side, newest first.
func (s *Service) OpenDebts(ctx context.Context, userID int64) (domain.OpenDebts, error) {
	debts, err := s.debts.ListOpen(ctx, userID)
	if err != nil {
		return domain.OpenDebts{}, apperrors.NewDatabaseError(err)
	}

	var open domain.OpenDebts
	for _, d := range debts {
		if d.IsClosed {
			continue
		}
		switch d.Side {
		case domain.DebtSideOwe:
			open.Owed = append(open.Owed, d)
		case domain.DebtSideDue:
			open.Due = append(open.Due, d)
		}
	}

	return open, nil
}

func (s *Service) AddFixedExpense(ctx context.Context, userID int64, title string, amount decimal.Decimal, day int, note string) (*domain.FixedExpense, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}
	if day < 1 || day > 31 {
		return nil, domain.ErrInvalidDay
	}

	expense := &domain.FixedExpense{
		UserID:     userID,
		Title:      title,
		Amount:     amount,
		DayOfMonth: day,
		Note:       note,
	}
	if err := s.fixed.Create(ctx, expense); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return expense, nil
}

// FixedExpenses lists the user's fixed expenses by day of month.
func (s *Service) FixedExpenses(ctx context.Context, userID int64) ([]domain.FixedExpense, error) {
	expenses, err := s.fixed.List(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}
