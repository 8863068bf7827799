package service

import "github.com/shopspring/decimal"

const (
	MaxDebtAmount   = 1_000_000_000.0 // per-debt principal ceiling
	MaxInterestRate = 1000.0          // percent per year
	MaxTenureMonths = 600             // 50 years
	MinTenureMonths = 1

	MinDebtNameLen = 3
	MaxDebtNameLen = 100
	MaxNotesLen    = 500

	DefaultCurrency = "INR"

	MaxPayoffMonths    = 600 // safety cap for payoff simulations
	MaxTermRangeMonths = 120 // widest term range a recommendation will scan
)

var (
	// balanceTolerance is the residual below which a balance counts as paid
	// off; it also absorbs sub-cent negative remainders before clamping.
	balanceTolerance = decimal.RequireFromString("0.01")

	// splitTolerance is the allowed gap between a payment amount and its
	// declared principal + interest split.
	splitTolerance = decimal.RequireFromString("0.01")
)
