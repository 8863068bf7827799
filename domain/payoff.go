package domain

import "github.com/shopspring/decimal"

// PayoffInput selects a payoff strategy for the caller's open debts.
// Strategy is "snowball", "avalanche" or "compare".
type PayoffInput struct {
	Strategy                string
	AvailableMonthlyPayment decimal.Decimal
}

type PayoffPayment struct {
	DebtID           string
	DebtName         string
	Payment          decimal.Decimal
	RemainingBalance decimal.Decimal
}

type PayoffMonth struct {
	Month     int
	Payments  []PayoffPayment
	TotalPaid decimal.Decimal
}

type StrategyOutcome struct {
	TotalInterestPaid decimal.Decimal
	MonthsToPayoff    int
}

type PayoffComparison struct {
	Snowball  StrategyOutcome
	Avalanche StrategyOutcome
	Savings   struct {
		InterestSaved decimal.Decimal
		MonthsSaved   int
	}
}

type PayoffPlan struct {
	Strategy          string
	TotalDebt         decimal.Decimal
	TotalInterestPaid decimal.Decimal
	MonthsToPayoff    int
	MonthlyPlan       []PayoffMonth
	Comparison        *PayoffComparison `json:",omitempty"`
}
