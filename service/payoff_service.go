package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
	"debt-tracker/repository"
)

const (
	PayoffSnowball  = "snowball"
	PayoffAvalanche = "avalanche"
	PayoffCompare   = "compare"
)

// PayoffService simulates paying down a user's open debts with a fixed
// monthly budget. Snowball clears the smallest balance first, avalanche the
// highest interest rate first; compare runs both and reports the savings.
type PayoffService struct {
	repo repository.DebtRepository
}

func NewPayoffService(repo repository.DebtRepository) *PayoffService {
	return &PayoffService{repo: repo}
}

// PlanPayoff builds a month-by-month plan over the caller's Active and
// Overdue debts. Each debt's recorded EMI acts as its minimum payment; the
// budget must cover all minimums combined.
func (s *PayoffService) PlanPayoff(ctx context.Context, userID string, input domain.PayoffInput) (domain.PayoffPlan, error) {
	if input.AvailableMonthlyPayment.LessThanOrEqual(decimal.Zero) {
		return domain.PayoffPlan{}, fmt.Errorf(
			"%w: available monthly payment must be positive", domain.ErrInvalidArgument,
		)
	}
	switch input.Strategy {
	case PayoffSnowball, PayoffAvalanche, PayoffCompare:
	default:
		return domain.PayoffPlan{}, fmt.Errorf(
			"%w: strategy must be %q, %q or %q",
			domain.ErrInvalidArgument, PayoffSnowball, PayoffAvalanche, PayoffCompare,
		)
	}

	debts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return domain.PayoffPlan{}, err
	}

	open := make([]domain.Debt, 0, len(debts))
	minimums := decimal.Zero
	for _, debt := range debts {
		if debt.Status != domain.StatusActive && debt.Status != domain.StatusOverdue {
			continue
		}
		if debt.CurrentBalance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		open = append(open, debt)
		minimums = minimums.Add(debt.MonthlyPayment)
	}
	if len(open) == 0 {
		return domain.PayoffPlan{}, fmt.Errorf("%w: no open debts to plan for", domain.ErrInvalidArgument)
	}
	if minimums.GreaterThan(input.AvailableMonthlyPayment) {
		return domain.PayoffPlan{}, fmt.Errorf(
			"%w: monthly budget %s does not cover the combined minimum payments of %s",
			domain.ErrInvalidArgument, input.AvailableMonthlyPayment.Round(2), minimums.Round(2),
		)
	}

	if input.Strategy == PayoffCompare {
		snowball := simulatePayoff(open, input.AvailableMonthlyPayment, PayoffSnowball)
		avalanche := simulatePayoff(open, input.AvailableMonthlyPayment, PayoffAvalanche)

		plan := snowball
		if avalanche.TotalInterestPaid.LessThan(snowball.TotalInterestPaid) {
			plan = avalanche
		}

		comparison := &domain.PayoffComparison{
			Snowball: domain.StrategyOutcome{
				TotalInterestPaid: snowball.TotalInterestPaid,
				MonthsToPayoff:    snowball.MonthsToPayoff,
			},
			Avalanche: domain.StrategyOutcome{
				TotalInterestPaid: avalanche.TotalInterestPaid,
				MonthsToPayoff:    avalanche.MonthsToPayoff,
			},
		}
		saved := snowball.TotalInterestPaid.Sub(avalanche.TotalInterestPaid)
		if saved.IsNegative() {
			saved = decimal.Zero
		}
		comparison.Savings.InterestSaved = saved.Round(2)
		comparison.Savings.MonthsSaved = snowball.MonthsToPayoff - avalanche.MonthsToPayoff
		plan.Comparison = comparison
		return plan, nil
	}

	return simulatePayoff(open, input.AvailableMonthlyPayment, input.Strategy), nil
}

func simulatePayoff(source []domain.Debt, budget decimal.Decimal, strategy string) domain.PayoffPlan {
	debts := make([]domain.Debt, len(source))
	copy(debts, source)

	if strategy == PayoffSnowball {
		sort.Slice(debts, func(i, j int) bool {
			return debts[i].CurrentBalance.LessThan(debts[j].CurrentBalance)
		})
	} else {
		sort.Slice(debts, func(i, j int) bool {
			return debts[i].InterestRate > debts[j].InterestRate
		})
	}

	balances := make(map[string]decimal.Decimal, len(debts))
	totalDebt := decimal.Zero
	for _, debt := range debts {
		balances[debt.ID] = debt.CurrentBalance
		totalDebt = totalDebt.Add(debt.CurrentBalance)
	}

	var monthlyPlan []domain.PayoffMonth
	totalInterestPaid := decimal.Zero
	month := 0

	for {
		month++
		available := budget
		totalPaid := decimal.Zero
		var payments []domain.PayoffPayment

		// interest accrues on the balance entering the month
		interestByDebt := make(map[string]decimal.Decimal, len(debts))
		for _, debt := range debts {
			balance := balances[debt.ID]
			if balance.LessThanOrEqual(decimal.Zero) {
				continue
			}
			interest := balance.Mul(monthlyRateOf(debt)).Round(2)
			interestByDebt[debt.ID] = interest
			totalInterestPaid = totalInterestPaid.Add(interest)
		}

		// first pass: minimums, at least covering the month's interest
		for _, debt := range debts {
			balance := balances[debt.ID]
			if balance.LessThanOrEqual(decimal.Zero) {
				continue
			}
			interest := interestByDebt[debt.ID]

			payment := debt.MonthlyPayment
			if payment.LessThan(interest) {
				payment = interest
			}
			if maxPayable := balance.Add(interest); payment.GreaterThan(maxPayable) {
				payment = maxPayable
			}
			if payment.GreaterThan(available) {
				payment = available
			}
			if payment.LessThanOrEqual(decimal.Zero) {
				continue
			}

			principal := payment.Sub(interest)
			if principal.IsNegative() {
				principal = decimal.Zero
			}
			balance = balance.Sub(principal)
			if balance.IsNegative() {
				balance = decimal.Zero
			}
			balances[debt.ID] = balance

			payments = append(payments, domain.PayoffPayment{
				DebtID:           debt.ID,
				DebtName:         debt.Name,
				Payment:          payment.Round(2),
				RemainingBalance: balance.Round(2),
			})
			available = available.Sub(payment)
			totalPaid = totalPaid.Add(payment)
		}

		// second pass: surplus goes to the first open debt in strategy order
		if available.GreaterThan(decimal.Zero) {
			for _, debt := range debts {
				balance := balances[debt.ID]
				if balance.LessThanOrEqual(decimal.Zero) {
					continue
				}
				extra := available
				if extra.GreaterThan(balance) {
					extra = balance
				}
				balance = balance.Sub(extra)
				balances[debt.ID] = balance
				totalPaid = totalPaid.Add(extra)

				applied := false
				for i := range payments {
					if payments[i].DebtID != debt.ID {
						continue
					}
					payments[i].Payment = payments[i].Payment.Add(extra).Round(2)
					payments[i].RemainingBalance = balance.Round(2)
					applied = true
					break
				}
				if !applied {
					payments = append(payments, domain.PayoffPayment{
						DebtID:           debt.ID,
						DebtName:         debt.Name,
						Payment:          extra.Round(2),
						RemainingBalance: balance.Round(2),
					})
				}
				break
			}
		}

		monthlyPlan = append(monthlyPlan, domain.PayoffMonth{
			Month:     month,
			Payments:  payments,
			TotalPaid: totalPaid.Round(2),
		})

		allPaid := true
		for _, debt := range debts {
			if balances[debt.ID].GreaterThan(balanceTolerance) {
				allPaid = false
				break
			}
		}
		if allPaid {
			break
		}
		if month >= MaxPayoffMonths {
			log.Printf("warning: payoff simulation hit the %d month cap", MaxPayoffMonths)
			break
		}
	}

	return domain.PayoffPlan{
		Strategy:          strategy,
		TotalDebt:         totalDebt.Round(2),
		TotalInterestPaid: totalInterestPaid.Round(2),
		MonthsToPayoff:    month,
		MonthlyPlan:       monthlyPlan,
	}
}

func monthlyRateOf(debt domain.Debt) decimal.Decimal {
	return decimal.NewFromFloat(debt.InterestRate).Div(decimal.NewFromInt(1200))
}
