package service

// Fixed classification tables for debt names. Matching is exact, no case
// folding: "education loan" is not "Education Loan".
var goodDebtNames = map[string]bool{
	"Mortgage Loan":                 true,
	"Education Loan":                true,
	"Business Loan":                 true,
	"Student Loan":                  true,
	"Investment Loan":               true,
	"Rental Property Loan":          true,
	"Vehicle Loan (commercial use)": true,
	"Low-interest loan for appreciating assets": true,
}

var badDebtNames = map[string]bool{
	"Credit Card Debt":                true,
	"Personal Loan (for consumption)": true,
	"Payday Loan":                     true,
	"Entertainment Loan":              true,
	"Medical Debt (non-essential)":    true,
	"High-interest financing (appliances, furniture)": true,
	"Luxury Item Financing":              true,
	"Gambling Debt":                      true,
	"Vehicle Loan (personal use)":        true,
	"Home Maintenance Loan":              true,
	"Medical Debt (emergency treatment)": true,
	"Lend From Others":                   true,
}

// CategorizeDebt reports whether the named debt counts as good debt.
// Unrecognized names are treated as bad debt rather than as an error.
func CategorizeDebt(name string) bool {
	switch {
	case goodDebtNames[name]:
		return true
	case badDebtNames[name]:
		return false
	default:
		return false
	}
}
