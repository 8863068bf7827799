package domain

import "github.com/shopspring/decimal"

// TermRecommendationInput asks for the best tenure in [MinTermMonths,
// MaxTermMonths] whose installment stays under MaxMonthlyPayment.
// Preference is "minimize_interest", "minimize_payment" or "balanced".
// Empty InterestType defaults to Diminishing.
type TermRecommendationInput struct {
	Amount            decimal.Decimal
	InterestRate      float64
	InterestType      InterestType
	MinTermMonths     int
	MaxTermMonths     int
	MaxMonthlyPayment decimal.Decimal
	Preference        string
}

type TermOption struct {
	TermMonths     int
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	Score          float64
}

type TermRecommendationResult struct {
	RecommendedTerm int
	Options         []TermOption
}
