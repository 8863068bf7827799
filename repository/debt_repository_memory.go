package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
)

// DebtRepositoryMemory is an in-memory DebtRepository with the same
// balance-keyed conflict semantics as the Postgres implementation. It backs
// tests and lets the server run without a database.
type DebtRepositoryMemory struct {
	mu       sync.RWMutex
	debts    map[string]domain.Debt
	payments map[string][]domain.DebtPayment
}

func NewDebtRepositoryMemory() *DebtRepositoryMemory {
	return &DebtRepositoryMemory{
		debts:    make(map[string]domain.Debt),
		payments: make(map[string][]domain.DebtPayment),
	}
}

func (r *DebtRepositoryMemory) Create(ctx context.Context, debt domain.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.debts[debt.ID]; exists {
		return fmt.Errorf("%w: debt %s already exists", domain.ErrConflict, debt.ID)
	}
	r.debts[debt.ID] = debt
	return nil
}

func (r *DebtRepositoryMemory) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	debt, ok := r.debts[id]
	if !ok {
		return domain.Debt{}, fmt.Errorf("%w: debt %s", domain.ErrNotFound, id)
	}
	return debt, nil
}

func (r *DebtRepositoryMemory) ListByUser(ctx context.Context, userID string) ([]domain.Debt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	debts := []domain.Debt{}
	for _, debt := range r.debts {
		if debt.UserID == userID && !debt.IsDeleted {
			debts = append(debts, debt)
		}
	}
	sort.Slice(debts, func(i, j int) bool {
		if !debts[i].CreatedAt.Equal(debts[j].CreatedAt) {
			return debts[i].CreatedAt.Before(debts[j].CreatedAt)
		}
		return debts[i].ID < debts[j].ID
	})
	return debts, nil
}

func (r *DebtRepositoryMemory) ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Debt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	debts := []domain.Debt{}
	for _, debt := range r.debts {
		if debt.Status == domain.StatusActive && !debt.IsDeleted && debt.NextDueDate.Before(cutoff) {
			debts = append(debts, debt)
		}
	}
	sort.Slice(debts, func(i, j int) bool { return debts[i].ID < debts[j].ID })
	return debts, nil
}

func (r *DebtRepositoryMemory) Update(ctx context.Context, debt domain.Debt, prevBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeLocked(debt, prevBalance)
}

func (r *DebtRepositoryMemory) AddPayment(ctx context.Context, debt domain.Debt, payment domain.DebtPayment, prevBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.storeLocked(debt, prevBalance); err != nil {
		return err
	}
	r.payments[debt.ID] = append(r.payments[debt.ID], payment)
	return nil
}

func (r *DebtRepositoryMemory) PaymentsByDebt(ctx context.Context, debtID string) ([]domain.DebtPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]domain.DebtPayment, len(r.payments[debtID]))
	copy(payments, r.payments[debtID])
	return payments, nil
}

func (r *DebtRepositoryMemory) storeLocked(debt domain.Debt, prevBalance decimal.Decimal) error {
	stored, ok := r.debts[debt.ID]
	if !ok {
		return fmt.Errorf("%w: debt %s", domain.ErrNotFound, debt.ID)
	}
	if !stored.CurrentBalance.Equal(prevBalance) {
		return fmt.Errorf("%w: debt %s was modified concurrently", domain.ErrConflict, debt.ID)
	}
	r.debts[debt.ID] = debt
	return nil
}
