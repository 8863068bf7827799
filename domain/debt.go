package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestFlat        InterestType = "Flat"
	InterestDiminishing InterestType = "Diminishing"
)

type DebtStatus string

const (
	StatusActive    DebtStatus = "Active"
	StatusPaid      DebtStatus = "Paid"
	StatusCancelled DebtStatus = "Cancelled"
	StatusOverdue   DebtStatus = "Overdue"
)

// Terminal reports whether the status accepts no further transitions.
func (s DebtStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Debt is the aggregate tracked by the repayment engine. CurrentBalance never
// leaves [0, InitialAmount]; TotalPrincipalPaid + CurrentBalance stays equal
// to InitialAmount across payments.
type Debt struct {
	ID        string
	UserID    string
	AccountID string `json:",omitempty"`

	Name     string
	Notes    string
	Currency string

	InitialAmount decimal.Decimal
	InterestRate  float64
	InterestType  InterestType
	TenureMonths  int

	StartDate        time.Time
	NextDueDate      time.Time
	EndDate          time.Time
	MonthlyPayment   decimal.Decimal
	MonthlyPrincipal decimal.Decimal
	MonthlyInterest  decimal.Decimal

	CurrentBalance     decimal.Decimal
	TotalInterestPaid  decimal.Decimal
	TotalPrincipalPaid decimal.Decimal
	AdditionalCharges  decimal.Decimal

	Status      DebtStatus
	IsGoodDebt  bool
	IsCompleted bool
	IsExpired   bool
	IsDeleted   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DebtPayment is one entry of a debt's append-only repayment ledger. Records
// are never updated or deleted once written.
type DebtPayment struct {
	ID              string
	DebtID          string
	AmountPaid      decimal.Decimal
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	PaymentDate     time.Time
	IsLate          bool
}

// NewDebtInput carries the caller-supplied fields for opening a debt.
// Zero StartDate means "now"; empty Currency falls back to the default.
type NewDebtInput struct {
	Name              string
	Notes             string
	Currency          string
	AccountID         string
	InitialAmount     decimal.Decimal
	InterestRate      float64
	InterestType      InterestType
	TenureMonths      int
	StartDate         time.Time
	AdditionalCharges decimal.Decimal
}

// PaymentInput carries one repayment. PrincipalAmount and InterestAmount must
// sum to AmountPaid within a cent. A repeated IdempotencyKey replays the
// original payment instead of applying a second one.
type PaymentInput struct {
	AmountPaid      decimal.Decimal
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	PaymentDate     time.Time
	IdempotencyKey  string
}

type BreakdownInput struct {
	InitialAmount decimal.Decimal
	TenureMonths  int
	InterestRate  float64
	InterestType  InterestType
	TargetMonth   int
}

// LoanBreakdown is the installment split for a single month,
// with Principal + Interest == EMI.
type LoanBreakdown struct {
	EMI       decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
}
