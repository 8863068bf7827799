package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// CalculateLoanBreakdown returns the EMI and its principal/interest split for
// one month of a loan.
//
// Flat interest charges the original principal once for the whole tenure, so
// every month splits identically and TargetMonth is ignored. Diminishing
// (reducing-balance) interest is simulated month by month from month 1; the
// returned pair is the split for TargetMonth itself, with interest computed
// on the balance entering that month.
//
// Monetary results are rounded half-up to 2 decimals in a fixed order: EMI
// first, interest second, principal derived as rounded EMI minus rounded
// interest. Keeping that order is what makes schedules reproducible.
func CalculateLoanBreakdown(input domain.BreakdownInput) (domain.LoanBreakdown, error) {
	if input.TenureMonths < MinTenureMonths {
		return domain.LoanBreakdown{}, fmt.Errorf(
			"%w: tenure must be at least %d month(s), got %d",
			domain.ErrInvalidArgument, MinTenureMonths, input.TenureMonths,
		)
	}
	if input.InitialAmount.IsNegative() {
		return domain.LoanBreakdown{}, fmt.Errorf(
			"%w: initial amount must not be negative", domain.ErrInvalidArgument,
		)
	}
	if input.InterestRate < 0 {
		return domain.LoanBreakdown{}, fmt.Errorf(
			"%w: interest rate must not be negative", domain.ErrInvalidArgument,
		)
	}

	switch input.InterestType {
	case domain.InterestFlat:
		return flatBreakdown(input), nil
	case domain.InterestDiminishing:
		return diminishingBreakdown(input)
	default:
		return domain.LoanBreakdown{}, fmt.Errorf(
			"%w: unknown interest type %q, must be %q or %q",
			domain.ErrInvalidArgument, input.InterestType,
			domain.InterestFlat, domain.InterestDiminishing,
		)
	}
}

func flatBreakdown(in domain.BreakdownInput) domain.LoanBreakdown {
	months := decimal.NewFromInt(int64(in.TenureMonths))
	rate := decimal.NewFromFloat(in.InterestRate).Div(hundred)
	years := months.Div(twelve)

	totalInterest := in.InitialAmount.Mul(rate).Mul(years)
	emi := in.InitialAmount.Add(totalInterest).Div(months).Round(2)
	interest := totalInterest.Div(months).Round(2)

	return domain.LoanBreakdown{
		EMI:       emi,
		Interest:  interest,
		Principal: emi.Sub(interest),
	}
}

func diminishingBreakdown(in domain.BreakdownInput) (domain.LoanBreakdown, error) {
	if in.TargetMonth < 1 || in.TargetMonth > in.TenureMonths {
		return domain.LoanBreakdown{}, fmt.Errorf(
			"%w: target month %d is outside the loan tenure of %d month(s)",
			domain.ErrInvalidArgument, in.TargetMonth, in.TenureMonths,
		)
	}

	months := decimal.NewFromInt(int64(in.TenureMonths))
	monthlyRate := in.InterestRate / 100 / 12
	if monthlyRate == 0 {
		emi := in.InitialAmount.Div(months).Round(2)
		return domain.LoanBreakdown{EMI: emi, Interest: decimal.Zero, Principal: emi}, nil
	}

	// Only the annuity power term runs in floating point; the result is
	// rounded into a decimal before any further arithmetic.
	amount, _ := in.InitialAmount.Float64()
	factor := math.Pow(1+monthlyRate, float64(in.TenureMonths))
	emi := decimal.NewFromFloat(amount * monthlyRate * factor / (factor - 1)).Round(2)

	rate := decimal.NewFromFloat(monthlyRate)
	balance := in.InitialAmount
	var interest, principal decimal.Decimal
	for month := 1; month <= in.TargetMonth; month++ {
		interest = balance.Mul(rate).Round(2)
		principal = emi.Sub(interest)
		balance = balance.Sub(principal)
	}

	return domain.LoanBreakdown{EMI: emi, Interest: interest, Principal: principal}, nil
}
