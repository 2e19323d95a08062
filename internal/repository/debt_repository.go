package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/finance-bot/internal/domain"
)

// DebtRepository persists debts and applies repayments.
type DebtRepository interface {
	Create(ctx context.Context, debt *domain.Debt) error
	// ListOpen returns the user's open debts, newest first.
	ListOpen(ctx context.Context, userID int64) ([]domain.Debt, error)
	// UpdateLatestOpen locks the newest open debt for (userID, person, side), passes it
	// to fn and persists its amount and closure. It returns domain.ErrNoOpenDebt when
	// nothing matches.
	UpdateLatestOpen(ctx context.Context, userID int64, person string, side domain.DebtSide, fn func(*domain.Debt) error) (*domain.Debt, error)
}

type debtRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDebtRepository creates a new SQL-backed debt repository.
func NewDebtRepository(db *sql.DB, log *slog.Logger) DebtRepository {
	return &debtRepository{
		db:  db,
		log: log,
	}
}

func (r *debtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	const query = `
		INSERT INTO debts (user_id, person, side, amount, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, is_closed
	`

	err := r.db.QueryRowContext(ctx, query,
		debt.UserID,
		debt.Person,
		string(debt.Side),
		debt.Amount,
		debt.Note,
	).Scan(&debt.ID, &debt.CreatedAt, &debt.IsClosed)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to insert debt", slog.Int64("user_id", debt.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert debt: %w", err)
	}

	return nil
}

func (r *debtRepository) ListOpen(ctx context.Context, userID int64) ([]domain.Debt, error) {
	const query = `
		SELECT id, user_id, person, side, amount, note, created_at, is_closed
		FROM debts
		WHERE user_id = $1 AND is_closed = FALSE
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select open debts: %w", err)
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open debts: %w", err)
	}

	return debts, nil
}

func (r *debtRepository) UpdateLatestOpen(
	ctx context.Context,
	userID int64,
	person string,
	side domain.DebtSide,
	fn func(*domain.Debt) error,
) (*domain.Debt, error) {
	const selectQuery = `
		SELECT id, user_id, person, side, amount, note, created_at, is_closed
		FROM debts
		WHERE user_id = $1 AND person = $2 AND side = $3 AND is_closed = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`
	const updateQuery = `UPDATE debts SET amount = $1, is_closed = $2 WHERE id = $3`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin debt payment: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && r.log != nil {
			r.log.Error("rollback debt payment", slog.Any("error", rbErr))
		}
	}()

	debt, err := scanDebt(tx.QueryRowContext(ctx, selectQuery, userID, person, string(side)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoOpenDebt
	}
	if err != nil {
		return nil, err
	}

	if err := fn(debt); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, updateQuery, debt.Amount, debt.IsClosed, debt.ID); err != nil {
		return nil, fmt.Errorf("update debt %d: %w", debt.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit debt payment: %w", err)
	}

	return debt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*domain.Debt, error) {
	var (
		debt domain.Debt
		side string
	)
	if err := row.Scan(
		&debt.ID,
		&debt.UserID,
		&debt.Person,
		&side,
		&debt.Amount,
		&debt.Note,
		&debt.CreatedAt,
		&debt.IsClosed,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan debt: %w", err)
	}
	debt.Side = domain.DebtSide(side)

	return &debt, nil
}
