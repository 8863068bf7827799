package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"debt-tracker/domain"
	"debt-tracker/repository"
)

// DebtService orchestrates the debt lifecycle: opening debts, applying
// repayments, cancellation, soft deletion and the overdue sweep. It holds no
// state of its own between calls; per-debt serialization is delegated to the
// repository's conditional writes.
type DebtService struct {
	repo  repository.DebtRepository
	cache repository.CacheRepository
	now   func() time.Time
}

func NewDebtService(repo repository.DebtRepository, cache repository.CacheRepository) *DebtService {
	return &DebtService{repo: repo, cache: cache, now: time.Now}
}

// WithClock overrides the service clock. Tests use it for deterministic
// due dates and payment timestamps.
func (s *DebtService) WithClock(now func() time.Time) *DebtService {
	s.now = now
	return s
}

// CreateDebt opens a new Active debt for the user. The installment split is
// precomputed for the first month, the first due date is one month after the
// start date, and the end date is preset to the projected closing month until
// an actual payoff overwrites it.
func (s *DebtService) CreateDebt(ctx context.Context, userID string, input domain.NewDebtInput) (domain.Debt, error) {
	if userID == "" {
		return domain.Debt{}, fmt.Errorf("%w: missing user id", domain.ErrInvalidArgument)
	}
	name := strings.TrimSpace(input.Name)
	if len(name) < MinDebtNameLen || len(name) > MaxDebtNameLen {
		return domain.Debt{}, fmt.Errorf(
			"%w: name must be between %d and %d characters",
			domain.ErrInvalidArgument, MinDebtNameLen, MaxDebtNameLen,
		)
	}
	if len(input.Notes) > MaxNotesLen {
		return domain.Debt{}, fmt.Errorf(
			"%w: notes must not exceed %d characters", domain.ErrInvalidArgument, MaxNotesLen,
		)
	}
	if input.InitialAmount.IsNegative() {
		return domain.Debt{}, fmt.Errorf("%w: initial amount must not be negative", domain.ErrInvalidArgument)
	}
	if input.InitialAmount.GreaterThan(decimal.NewFromFloat(MaxDebtAmount)) {
		return domain.Debt{}, fmt.Errorf(
			"%w: initial amount exceeds the maximum of %.2f", domain.ErrInvalidArgument, MaxDebtAmount,
		)
	}
	if input.InterestRate < 0 || input.InterestRate > MaxInterestRate {
		return domain.Debt{}, fmt.Errorf(
			"%w: interest rate must be between 0 and %.2f", domain.ErrInvalidArgument, MaxInterestRate,
		)
	}
	if input.TenureMonths < MinTenureMonths || input.TenureMonths > MaxTenureMonths {
		return domain.Debt{}, fmt.Errorf(
			"%w: tenure must be between %d and %d months",
			domain.ErrInvalidArgument, MinTenureMonths, MaxTenureMonths,
		)
	}
	if input.AdditionalCharges.IsNegative() {
		return domain.Debt{}, fmt.Errorf("%w: additional charges must not be negative", domain.ErrInvalidArgument)
	}

	breakdown, err := CalculateLoanBreakdown(domain.BreakdownInput{
		InitialAmount: input.InitialAmount,
		TenureMonths:  input.TenureMonths,
		InterestRate:  input.InterestRate,
		InterestType:  input.InterestType,
		TargetMonth:   1,
	})
	if err != nil {
		return domain.Debt{}, err
	}

	currency := input.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	start := input.StartDate
	if start.IsZero() {
		start = s.now()
	}

	now := s.now()
	debt := domain.Debt{
		ID:                 uuid.NewString(),
		UserID:             userID,
		AccountID:          input.AccountID,
		Name:               name,
		Notes:              input.Notes,
		Currency:           currency,
		InitialAmount:      input.InitialAmount.Round(2),
		InterestRate:       input.InterestRate,
		InterestType:       input.InterestType,
		TenureMonths:       input.TenureMonths,
		StartDate:          start,
		NextDueDate:        NextDueDate(start),
		EndDate:            LoanClosingMonth(start, input.TenureMonths),
		MonthlyPayment:     breakdown.EMI,
		MonthlyPrincipal:   breakdown.Principal,
		MonthlyInterest:    breakdown.Interest,
		CurrentBalance:     input.InitialAmount.Round(2),
		TotalInterestPaid:  decimal.Zero,
		TotalPrincipalPaid: decimal.Zero,
		AdditionalCharges:  input.AdditionalCharges.Round(2),
		Status:             domain.StatusActive,
		IsGoodDebt:         CategorizeDebt(name),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, debt); err != nil {
		return domain.Debt{}, err
	}
	return debt, nil
}

func (s *DebtService) GetDebt(ctx context.Context, userID, debtID string) (domain.Debt, error) {
	return s.getOwned(ctx, userID, debtID)
}

func (s *DebtService) ListDebts(ctx context.Context, userID string) ([]domain.Debt, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *DebtService) ListPayments(ctx context.Context, userID, debtID string) ([]domain.DebtPayment, error) {
	if _, err := s.getOwned(ctx, userID, debtID); err != nil {
		return nil, err
	}
	return s.repo.PaymentsByDebt(ctx, debtID)
}

// ApplyPayment records one repayment against a debt: the balance drops by the
// principal component, totals and the next due date advance, and the ledger
// gains an immutable DebtPayment. A balance reaching zero flips the debt to
// Paid with the payment date as end date; an Overdue debt with balance left
// returns to Active. Sub-cent negative remainders clamp to zero.
func (s *DebtService) ApplyPayment(ctx context.Context, userID, debtID string, input domain.PaymentInput) (domain.Debt, domain.DebtPayment, error) {
	if input.AmountPaid.LessThanOrEqual(decimal.Zero) {
		return domain.Debt{}, domain.DebtPayment{}, fmt.Errorf(
			"%w: amount paid must be positive", domain.ErrInvalidArgument,
		)
	}
	if input.PrincipalAmount.IsNegative() || input.InterestAmount.IsNegative() {
		return domain.Debt{}, domain.DebtPayment{}, fmt.Errorf(
			"%w: principal and interest must not be negative", domain.ErrInvalidArgument,
		)
	}
	split := input.PrincipalAmount.Add(input.InterestAmount)
	if split.Sub(input.AmountPaid).Abs().GreaterThan(splitTolerance) {
		return domain.Debt{}, domain.DebtPayment{}, fmt.Errorf(
			"%w: principal %s + interest %s does not match amount paid %s",
			domain.ErrInvalidArgument, input.PrincipalAmount, input.InterestAmount, input.AmountPaid,
		)
	}

	// A replayed idempotency key answers with the original payment without
	// touching the aggregate again.
	if input.IdempotencyKey != "" {
		if raw, ok := s.cache.Get(paymentKey(debtID, input.IdempotencyKey)); ok {
			var recorded domain.DebtPayment
			if err := json.Unmarshal([]byte(raw), &recorded); err == nil {
				debt, err := s.getOwned(ctx, userID, debtID)
				if err != nil {
					return domain.Debt{}, domain.DebtPayment{}, err
				}
				return debt, recorded, nil
			}
			log.Printf("warning: discarding unreadable idempotency record for debt %s", debtID)
		}
	}

	debt, err := s.getOwned(ctx, userID, debtID)
	if err != nil {
		return domain.Debt{}, domain.DebtPayment{}, err
	}
	if debt.Status.Terminal() {
		return domain.Debt{}, domain.DebtPayment{}, fmt.Errorf(
			"%w: debt is %s and no longer accepts payments", domain.ErrInvalidArgument, debt.Status,
		)
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	payment := domain.DebtPayment{
		ID:              uuid.NewString(),
		DebtID:          debt.ID,
		AmountPaid:      input.AmountPaid.Round(2),
		PrincipalAmount: input.PrincipalAmount.Round(2),
		InterestAmount:  input.InterestAmount.Round(2),
		PaymentDate:     paymentDate,
		IsLate:          paymentDate.After(debt.NextDueDate),
	}

	prevBalance := debt.CurrentBalance
	debt.CurrentBalance = debt.CurrentBalance.Sub(payment.PrincipalAmount)
	debt.TotalPrincipalPaid = debt.TotalPrincipalPaid.Add(payment.PrincipalAmount)
	debt.TotalInterestPaid = debt.TotalInterestPaid.Add(payment.InterestAmount)
	debt.NextDueDate = NextDueDate(debt.NextDueDate)
	debt.UpdatedAt = s.now()

	if debt.CurrentBalance.LessThan(balanceTolerance) {
		debt.CurrentBalance = decimal.Zero
		debt.Status = domain.StatusPaid
		debt.IsCompleted = true
		debt.EndDate = paymentDate
	} else {
		debt.Status = domain.StatusActive
	}

	if err := s.repo.AddPayment(ctx, debt, payment, prevBalance); err != nil {
		return domain.Debt{}, domain.DebtPayment{}, err
	}

	if input.IdempotencyKey != "" {
		raw, err := json.Marshal(payment)
		if err == nil {
			err = s.cache.Set(paymentKey(debt.ID, input.IdempotencyKey), string(raw))
		}
		// not critical: losing the record only weakens replay protection
		if err != nil {
			log.Printf("warning: failed to record idempotency key for debt %s: %v", debt.ID, err)
		}
	}

	return debt, payment, nil
}

// CancelDebt moves an Active or Overdue debt to the terminal Cancelled state.
func (s *DebtService) CancelDebt(ctx context.Context, userID, debtID string) (domain.Debt, error) {
	debt, err := s.getOwned(ctx, userID, debtID)
	if err != nil {
		return domain.Debt{}, err
	}
	if debt.Status.Terminal() {
		return domain.Debt{}, fmt.Errorf(
			"%w: debt is already %s", domain.ErrInvalidArgument, debt.Status,
		)
	}

	debt.Status = domain.StatusCancelled
	debt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, debt, debt.CurrentBalance); err != nil {
		return domain.Debt{}, err
	}
	return debt, nil
}

// DeleteDebt soft-deletes a debt; it disappears from reads but the row and
// its ledger stay.
func (s *DebtService) DeleteDebt(ctx context.Context, userID, debtID string) error {
	debt, err := s.getOwned(ctx, userID, debtID)
	if err != nil {
		return err
	}

	debt.IsDeleted = true
	debt.UpdatedAt = s.now()
	return s.repo.Update(ctx, debt, debt.CurrentBalance)
}

// MarkOverdueDebts flips Active debts whose due date has passed to Overdue
// and refreshes the expiry flag for debts past their projected end date. It
// returns how many debts were marked. Conflicting updates are skipped; the
// next sweep re-evaluates them.
func (s *DebtService) MarkOverdueDebts(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.ListActiveDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, debt := range due {
		debt.Status = domain.StatusOverdue
		if !debt.EndDate.IsZero() && now.After(debt.EndDate) {
			debt.IsExpired = true
		}
		debt.UpdatedAt = now
		if err := s.repo.Update(ctx, debt, debt.CurrentBalance); err != nil {
			log.Printf("warning: could not mark debt %s overdue: %v", debt.ID, err)
			continue
		}
		marked++
	}
	return marked, nil
}

func (s *DebtService) getOwned(ctx context.Context, userID, debtID string) (domain.Debt, error) {
	debt, err := s.repo.GetByID(ctx, debtID)
	if err != nil {
		return domain.Debt{}, err
	}
	// debts of other users look like missing debts, not forbidden ones
	if debt.IsDeleted || debt.UserID != userID {
		return domain.Debt{}, fmt.Errorf("%w: debt %s", domain.ErrNotFound, debtID)
	}
	return debt, nil
}

func paymentKey(debtID, idempotencyKey string) string {
	return "debt:" + debtID + ":payment:" + idempotencyKey
}
