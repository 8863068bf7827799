package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"debt-tracker/domain"
	"debt-tracker/repository"
)

type testEnv struct {
	service *DebtService
	repo    *repository.DebtRepositoryMemory
	now     time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo: repository.NewDebtRepositoryMemory(),
		now:  time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
	}
	env.service = NewDebtService(env.repo, repository.NewMockCache()).
		WithClock(func() time.Time { return env.now })
	return env
}

func (e *testEnv) createDebt(t *testing.T, input domain.NewDebtInput) domain.Debt {
	t.Helper()
	debt, err := e.service.CreateDebt(context.Background(), "user-1", input)
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	return debt
}

func standardLoan() domain.NewDebtInput {
	return domain.NewDebtInput{
		Name:          "Education Loan",
		InitialAmount: dec("120000"),
		InterestRate:  12,
		InterestType:  domain.InterestDiminishing,
		TenureMonths:  12,
	}
}

func TestCreateDebt_Defaults(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	if debt.Status != domain.StatusActive {
		t.Errorf("status = %s, want Active", debt.Status)
	}
	if debt.Currency != DefaultCurrency {
		t.Errorf("currency = %s, want %s", debt.Currency, DefaultCurrency)
	}
	if !debt.CurrentBalance.Equal(debt.InitialAmount) {
		t.Errorf("balance = %s, want %s", debt.CurrentBalance, debt.InitialAmount)
	}
	if !debt.IsGoodDebt {
		t.Error("Education Loan should classify as good debt")
	}
	wantDue := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)
	if !debt.NextDueDate.Equal(wantDue) {
		t.Errorf("next due date = %v, want %v", debt.NextDueDate, wantDue)
	}
	wantEnd := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	if !debt.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", debt.EndDate, wantEnd)
	}
	if !debt.MonthlyPayment.Equal(dec("10661.85")) {
		t.Errorf("monthly payment = %s, want 10661.85", debt.MonthlyPayment)
	}
	if !debt.MonthlyInterest.Equal(dec("1200")) {
		t.Errorf("monthly interest = %s, want 1200", debt.MonthlyInterest)
	}
}

func TestCreateDebt_Validation(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name   string
		mutate func(*domain.NewDebtInput)
	}{
		{"name too short", func(in *domain.NewDebtInput) { in.Name = "ab" }},
		{"negative amount", func(in *domain.NewDebtInput) { in.InitialAmount = dec("-1") }},
		{"zero tenure", func(in *domain.NewDebtInput) { in.TenureMonths = 0 }},
		{"negative rate", func(in *domain.NewDebtInput) { in.InterestRate = -1 }},
		{"unknown interest type", func(in *domain.NewDebtInput) { in.InterestType = "Annuity" }},
		{"negative charges", func(in *domain.NewDebtInput) { in.AdditionalCharges = dec("-5") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := standardLoan()
			tc.mutate(&input)
			_, err := env.service.CreateDebt(context.Background(), "user-1", input)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestApplyPayment_ReducesBalanceAndAdvancesSchedule(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	updated, payment, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, domain.PaymentInput{
		AmountPaid:      dec("10661.85"),
		PrincipalAmount: dec("9461.85"),
		InterestAmount:  dec("1200"),
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if !updated.CurrentBalance.Equal(dec("110538.15")) {
		t.Errorf("balance = %s, want 110538.15", updated.CurrentBalance)
	}
	if updated.Status != domain.StatusActive {
		t.Errorf("status = %s, want Active", updated.Status)
	}
	if !updated.TotalPrincipalPaid.Equal(dec("9461.85")) {
		t.Errorf("total principal paid = %s, want 9461.85", updated.TotalPrincipalPaid)
	}
	if !updated.TotalInterestPaid.Equal(dec("1200")) {
		t.Errorf("total interest paid = %s, want 1200", updated.TotalInterestPaid)
	}
	// principal paid plus remaining balance must reproduce the principal
	if !updated.TotalPrincipalPaid.Add(updated.CurrentBalance).Equal(updated.InitialAmount) {
		t.Error("principal paid + balance no longer equals the initial amount")
	}
	wantDue := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	if !updated.NextDueDate.Equal(wantDue) {
		t.Errorf("next due date = %v, want %v", updated.NextDueDate, wantDue)
	}
	if payment.IsLate {
		t.Error("on-time payment flagged late")
	}

	ledger, err := env.service.ListPayments(context.Background(), "user-1", debt.ID)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(ledger) != 1 || ledger[0].ID != payment.ID {
		t.Errorf("expected one ledger entry for payment %s, got %+v", payment.ID, ledger)
	}
}

func TestApplyPayment_LateFlag(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	_, payment, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, domain.PaymentInput{
		AmountPaid:      dec("10661.85"),
		PrincipalAmount: dec("9461.85"),
		InterestAmount:  dec("1200"),
		PaymentDate:     debt.NextDueDate.AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if !payment.IsLate {
		t.Error("payment after the due date should be flagged late")
	}
}

func TestApplyPayment_FinalPaymentClampsAndCompletes(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, domain.NewDebtInput{
		Name:          "Personal Loan (for consumption)",
		InitialAmount: dec("100"),
		InterestRate:  0,
		InterestType:  domain.InterestFlat,
		TenureMonths:  1,
	})

	paymentDate := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	// principal overshoots the balance by 5 paise; the balance clamps to 0
	updated, _, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, domain.PaymentInput{
		AmountPaid:      dec("100.05"),
		PrincipalAmount: dec("100.05"),
		InterestAmount:  dec("0"),
		PaymentDate:     paymentDate,
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if !updated.CurrentBalance.IsZero() {
		t.Errorf("balance = %s, want 0", updated.CurrentBalance)
	}
	if updated.Status != domain.StatusPaid {
		t.Errorf("status = %s, want Paid", updated.Status)
	}
	if !updated.IsCompleted {
		t.Error("paid debt should be marked completed")
	}
	if !updated.EndDate.Equal(paymentDate) {
		t.Errorf("end date = %v, want the final payment date %v", updated.EndDate, paymentDate)
	}

	// terminal: no further payments accepted
	_, _, err = env.service.ApplyPayment(context.Background(), "user-1", debt.ID, domain.PaymentInput{
		AmountPaid:      dec("1"),
		PrincipalAmount: dec("1"),
		InterestAmount:  dec("0"),
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument on paid debt, got %v", err)
	}
}

func TestApplyPayment_Idempotent(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	input := domain.PaymentInput{
		AmountPaid:      dec("10661.85"),
		PrincipalAmount: dec("9461.85"),
		InterestAmount:  dec("1200"),
		IdempotencyKey:  "req-42",
	}

	first, firstPayment, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, input)
	if err != nil {
		t.Fatalf("first ApplyPayment: %v", err)
	}
	second, secondPayment, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, input)
	if err != nil {
		t.Fatalf("replayed ApplyPayment: %v", err)
	}

	if secondPayment.ID != firstPayment.ID {
		t.Errorf("replay created a new payment %s, want %s", secondPayment.ID, firstPayment.ID)
	}
	if !second.CurrentBalance.Equal(first.CurrentBalance) {
		t.Errorf("replay moved the balance from %s to %s", first.CurrentBalance, second.CurrentBalance)
	}
	ledger, _ := env.service.ListPayments(context.Background(), "user-1", debt.ID)
	if len(ledger) != 1 {
		t.Errorf("expected one ledger entry after replay, got %d", len(ledger))
	}
}

func TestApplyPayment_Validation(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	cases := []struct {
		name  string
		input domain.PaymentInput
	}{
		{"zero amount", domain.PaymentInput{
			AmountPaid: dec("0"), PrincipalAmount: dec("0"), InterestAmount: dec("0"),
		}},
		{"negative amount", domain.PaymentInput{
			AmountPaid: dec("-10"), PrincipalAmount: dec("-10"), InterestAmount: dec("0"),
		}},
		{"split mismatch", domain.PaymentInput{
			AmountPaid: dec("100"), PrincipalAmount: dec("50"), InterestAmount: dec("30"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, tc.input)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestApplyPayment_UnknownDebt(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.service.ApplyPayment(context.Background(), "user-1", "missing", domain.PaymentInput{
		AmountPaid: dec("10"), PrincipalAmount: dec("10"), InterestAmount: dec("0"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyPayment_OtherUsersDebtLooksMissing(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	_, _, err := env.service.ApplyPayment(context.Background(), "user-2", debt.ID, domain.PaymentInput{
		AmountPaid: dec("10"), PrincipalAmount: dec("10"), InterestAmount: dec("0"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelDebt(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	cancelled, err := env.service.CancelDebt(context.Background(), "user-1", debt.ID)
	if err != nil {
		t.Fatalf("CancelDebt: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want Cancelled", cancelled.Status)
	}

	if _, err := env.service.CancelDebt(context.Background(), "user-1", debt.ID); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("cancelling a cancelled debt: expected ErrInvalidArgument, got %v", err)
	}
}

func TestDeleteDebt_HidesDebt(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	if err := env.service.DeleteDebt(context.Background(), "user-1", debt.ID); err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}
	if _, err := env.service.GetDebt(context.Background(), "user-1", debt.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after soft delete, got %v", err)
	}
	debts, err := env.service.ListDebts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 0 {
		t.Errorf("deleted debt still listed: %+v", debts)
	}
}

func TestMarkOverdueDebts(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, standardLoan())

	// nothing due yet
	marked, err := env.service.MarkOverdueDebts(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdueDebts: %v", err)
	}
	if marked != 0 {
		t.Errorf("marked %d debts before the due date", marked)
	}

	env.now = debt.NextDueDate.AddDate(0, 0, 1)
	marked, err = env.service.MarkOverdueDebts(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdueDebts: %v", err)
	}
	if marked != 1 {
		t.Fatalf("marked %d debts, want 1", marked)
	}

	overdue, err := env.service.GetDebt(context.Background(), "user-1", debt.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if overdue.Status != domain.StatusOverdue {
		t.Errorf("status = %s, want Overdue", overdue.Status)
	}

	// a payment on an overdue debt with balance left returns it to Active
	updated, payment, err := env.service.ApplyPayment(context.Background(), "user-1", debt.ID, domain.PaymentInput{
		AmountPaid:      dec("10661.85"),
		PrincipalAmount: dec("9461.85"),
		InterestAmount:  dec("1200"),
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Errorf("status after payment = %s, want Active", updated.Status)
	}
	if !payment.IsLate {
		t.Error("payment past the due date should be flagged late")
	}
}

func TestMarkOverdueDebts_SetsExpiredPastEndDate(t *testing.T) {
	env := newTestEnv()
	debt := env.createDebt(t, domain.NewDebtInput{
		Name:          "Credit Card Debt",
		InitialAmount: dec("5000"),
		InterestRate:  36,
		InterestType:  domain.InterestFlat,
		TenureMonths:  2,
	})

	env.now = debt.EndDate.AddDate(0, 1, 0)
	if _, err := env.service.MarkOverdueDebts(context.Background()); err != nil {
		t.Fatalf("MarkOverdueDebts: %v", err)
	}

	got, err := env.service.GetDebt(context.Background(), "user-1", debt.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if !got.IsExpired {
		t.Error("debt past its projected end date should be flagged expired")
	}
}
