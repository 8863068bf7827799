package service

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
)

const (
	PreferMinimizeInterest = "minimize_interest"
	PreferMinimizePayment  = "minimize_payment"
	PreferBalanced         = "balanced"
)

// TermService scans a tenure range with the breakdown calculator and scores
// each feasible term against the caller's preference.
type TermService struct{}

func NewTermService() *TermService {
	return &TermService{}
}

// RecommendTerm evaluates every term in [MinTermMonths, MaxTermMonths],
// keeps those whose installment fits under MaxMonthlyPayment, and ranks them.
// Scores are 0-10, normalized across the feasible options.
func (s *TermService) RecommendTerm(input domain.TermRecommendationInput) (domain.TermRecommendationResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.TermRecommendationResult{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}
	if input.InterestRate < 0 || input.InterestRate > MaxInterestRate {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: interest rate must be between 0 and %.2f", domain.ErrInvalidArgument, MaxInterestRate,
		)
	}
	if input.MinTermMonths < MinTenureMonths || input.MaxTermMonths > MaxTenureMonths {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: terms must be between %d and %d months",
			domain.ErrInvalidArgument, MinTenureMonths, MaxTenureMonths,
		)
	}
	if input.MinTermMonths > input.MaxTermMonths {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: minimum term is greater than maximum term", domain.ErrInvalidArgument,
		)
	}
	if input.MaxTermMonths-input.MinTermMonths > MaxTermRangeMonths {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: term range exceeds the maximum of %d months", domain.ErrInvalidArgument, MaxTermRangeMonths,
		)
	}
	if input.MaxMonthlyPayment.LessThanOrEqual(decimal.Zero) {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: maximum monthly payment must be positive", domain.ErrInvalidArgument,
		)
	}
	switch input.Preference {
	case PreferMinimizeInterest, PreferMinimizePayment, PreferBalanced:
	default:
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: preference must be %q, %q or %q",
			domain.ErrInvalidArgument, PreferMinimizeInterest, PreferMinimizePayment, PreferBalanced,
		)
	}

	interestType := input.InterestType
	if interestType == "" {
		interestType = domain.InterestDiminishing
	}

	options := []domain.TermOption{}
	for term := input.MinTermMonths; term <= input.MaxTermMonths; term++ {
		breakdown, err := CalculateLoanBreakdown(domain.BreakdownInput{
			InitialAmount: input.Amount,
			TenureMonths:  term,
			InterestRate:  input.InterestRate,
			InterestType:  interestType,
			TargetMonth:   1,
		})
		if err != nil {
			log.Printf("warning: skipping term %d: %v", term, err)
			continue
		}
		if breakdown.EMI.GreaterThan(input.MaxMonthlyPayment) {
			continue
		}

		months := decimal.NewFromInt(int64(term))
		totalInterest := breakdown.EMI.Mul(months).Sub(input.Amount).Round(2)
		options = append(options, domain.TermOption{
			TermMonths:     term,
			MonthlyPayment: breakdown.EMI,
			TotalInterest:  totalInterest,
		})
	}
	if len(options) == 0 {
		return domain.TermRecommendationResult{}, fmt.Errorf(
			"%w: no term in range keeps the installment under %s",
			domain.ErrInvalidArgument, input.MaxMonthlyPayment.Round(2),
		)
	}

	scoreOptions(options, input.Preference)
	sort.Slice(options, func(i, j int) bool {
		if options[i].Score != options[j].Score {
			return options[i].Score > options[j].Score
		}
		return options[i].TermMonths < options[j].TermMonths
	})

	return domain.TermRecommendationResult{
		RecommendedTerm: options[0].TermMonths,
		Options:         options,
	}, nil
}

// scoreOptions normalizes interest cost and installment size to 0-10 across
// the feasible options and blends them by preference weights.
func scoreOptions(options []domain.TermOption, preference string) {
	minInterest, maxInterest := options[0].TotalInterest, options[0].TotalInterest
	minPayment, maxPayment := options[0].MonthlyPayment, options[0].MonthlyPayment
	for _, opt := range options[1:] {
		minInterest = decimal.Min(minInterest, opt.TotalInterest)
		maxInterest = decimal.Max(maxInterest, opt.TotalInterest)
		minPayment = decimal.Min(minPayment, opt.MonthlyPayment)
		maxPayment = decimal.Max(maxPayment, opt.MonthlyPayment)
	}

	interestRange, _ := maxInterest.Sub(minInterest).Float64()
	paymentRange, _ := maxPayment.Sub(minPayment).Float64()

	for i := range options {
		interestScore, paymentScore := 10.0, 10.0
		if interestRange > 0 {
			over, _ := options[i].TotalInterest.Sub(minInterest).Float64()
			interestScore = 10.0 * (1.0 - over/interestRange)
		}
		if paymentRange > 0 {
			over, _ := options[i].MonthlyPayment.Sub(minPayment).Float64()
			paymentScore = 10.0 * (1.0 - over/paymentRange)
		}

		var score float64
		switch preference {
		case PreferMinimizeInterest:
			score = 0.7*interestScore + 0.3*paymentScore
		case PreferMinimizePayment:
			score = 0.3*interestScore + 0.7*paymentScore
		case PreferBalanced:
			score = 0.5*interestScore + 0.5*paymentScore
		}
		options[i].Score = math.Round(score*100) / 100
	}
}
