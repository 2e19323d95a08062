package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Proton-105/finance-bot/internal/domain"
)

// memoryStore implements the three repositories in memory for tests.
type memoryStore struct {
	mu           sync.Mutex
	clock        func() time.Time
	nextID       int64
	transactions []domain.Transaction
	debts        []domain.Debt
	fixed        []domain.FixedExpense
	err          error
}

func newMemoryStore(clock func() time.Time) *memoryStore {
	return &memoryStore{clock: clock}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memTransactions struct{ *memoryStore }

func (m memTransactions) Create(_ context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	tx.ID = m.id()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = m.clock()
	}
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m memTransactions) Totals(_ context.Context, userID int64, since time.Time) (domain.Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := domain.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	if m.err != nil {
		return totals, m.err
	}
	for _, tx := range m.transactions {
		if tx.UserID != userID || tx.CreatedAt.Before(since) {
			continue
		}
		if tx.Type == domain.TransactionIncome {
			totals.Income = totals.Income.Add(tx.Amount)
		} else {
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	return totals, nil
}

type memDebts struct{ *memoryStore }

func (m memDebts) Create(_ context.Context, debt *domain.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	debt.ID = m.id()
	debt.CreatedAt = m.clock()
	m.debts = append(m.debts, *debt)
	return nil
}

func (m memDebts) ListOpen(_ context.Context, userID int64) ([]domain.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Debt
	for _, d := range m.debts {
		if d.UserID == userID && !d.IsClosed {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memDebts) UpdateLatestOpen(_ context.Context, userID int64, person string, side domain.DebtSide, fn func(*domain.Debt) error) (*domain.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := len(m.debts) - 1; i >= 0; i-- {
		d := m.debts[i]
		if d.UserID != userID || d.Person != person || d.Side != side || d.IsClosed {
			continue
		}
		if err := fn(&d); err != nil {
			return nil, err
		}
		m.debts[i] = d
		return &d, nil
	}
	return nil, domain.ErrNoOpenDebt
}

func (m *memoryStore) debt(id int64) domain.Debt {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.debts {
		if d.ID == id {
			return d
		}
	}
	return domain.Debt{}
}

type memFixed struct{ *memoryStore }

func (m memFixed) Create(_ context.Context, e *domain.FixedExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	e.ID = m.id()
	e.CreatedAt = m.clock()
	m.fixed = append(m.fixed, *e)
	return nil
}

func (m memFixed) List(_ context.Context, userID int64) ([]domain.FixedExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.FixedExpense
	for _, e := range m.fixed {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayOfMonth < out[j].DayOfMonth })
	return out, nil
}
