package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
)

// DebtRepository persists Debt aggregates and their append-only payment
// ledgers.
//
// Update and AddPayment are conditional on prevBalance, the current balance
// the caller read before mutating: when the stored balance no longer matches,
// the write is rejected with domain.ErrConflict and the caller must retry
// from a fresh read. This is what serializes concurrent payments against the
// same debt.
type DebtRepository interface {
	Create(ctx context.Context, debt domain.Debt) error
	GetByID(ctx context.Context, id string) (domain.Debt, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Debt, error)

	// ListActiveDueBefore returns non-deleted Active debts whose next due
	// date has passed the cutoff, for the overdue sweep.
	ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Debt, error)

	Update(ctx context.Context, debt domain.Debt, prevBalance decimal.Decimal) error
	AddPayment(ctx context.Context, debt domain.Debt, payment domain.DebtPayment, prevBalance decimal.Decimal) error
	PaymentsByDebt(ctx context.Context, debtID string) ([]domain.DebtPayment, error)
}
