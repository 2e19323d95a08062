package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Proton-105/finance-bot/internal/domain"
)

// TransactionRepository persists income and expense records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// Totals sums amounts by type for transactions created at or after since.
	// A zero since covers all time.
	Totals(ctx context.Context, userID int64, since time.Time) (domain.Totals, error)
}

type transactionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewTransactionRepository creates a new SQL-backed transaction repository.
func NewTransactionRepository(db *sql.DB, log *slog.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log,
	}
}

// Create inserts tx and fills its ID and CreatedAt from the database.
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	const query = `
		INSERT INTO transactions (user_id, type, amount, category, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		tx.UserID,
		string(tx.Type),
		tx.Amount,
		tx.Category,
		tx.Note,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to insert transaction",
				slog.Int64("user_id", tx.UserID),
				slog.String("type", string(tx.Type)),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) Totals(ctx context.Context, userID int64, since time.Time) (domain.Totals, error) {
	const query = `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY type
	`

	totals := domain.Totals{Income: decimal.Zero, Expense: decimal.Zero}

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return totals, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			sum  decimal.Decimal
		)
		if err := rows.Scan(&kind, &sum); err != nil {
			return totals, fmt.Errorf("scan transaction totals: %w", err)
		}

		switch domain.TransactionType(kind) {
		case domain.TransactionIncome:
			totals.Income = sum
		case domain.TransactionExpense:
			totals.Expense = sum
		}
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("iterate transaction totals: %w", err)
	}

	return totals, nil
}
