package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Proton-105/finance-bot/internal/domain"
)

// FixedExpenseRepository persists recurring monthly expenses.
type FixedExpenseRepository interface {
	Create(ctx context.Context, expense *domain.FixedExpense) error
	// List returns the user's fixed expenses ordered by day of month.
	List(ctx context.Context, userID int64) ([]domain.FixedExpense, error)
}

type fixedExpenseRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewFixedExpenseRepository(db *sql.DB, log *slog.Logger) FixedExpenseRepository {
	return &fixedExpenseRepository{
		db:  db,
		log: log,
	}
}

func (r *fixedExpenseRepository) Create(ctx context.Context, expense *domain.FixedExpense) error {
	const query = `
		INSERT INTO fixed_expenses (user_id, title, amount, day_of_month, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		expense.UserID,
		expense.Title,
		expense.Amount,
		expense.DayOfMonth,
		expense.Note,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to insert fixed expense", slog.Int64("user_id", expense.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert fixed expense: %w", err)
	}

	return nil
}

func (r *fixedExpenseRepository) List(ctx context.Context, userID int64) ([]domain.FixedExpense, error) {
	const query = `
		SELECT id, user_id, title, amount, day_of_month, note, created_at
		FROM fixed_expenses
		WHERE user_id = $1
		ORDER BY day_of_month, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select fixed expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.FixedExpense
	for rows.Next() {
		var e domain.FixedExpense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.DayOfMonth, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fixed expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed expenses: %w", err)
	}

	return expenses, nil
}
