package service

import "testing"

func TestCategorizeDebt(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Education Loan", true},
		{"Mortgage Loan", true},
		{"Vehicle Loan (commercial use)", true},
		{"Credit Card Debt", false},
		{"Payday Loan", false},
		{"Vehicle Loan (personal use)", false},
		{"Lend From Others", false},
		{"Completely Unknown Loan Type", false},
	}

	for _, tc := range cases {
		if got := CategorizeDebt(tc.name); got != tc.want {
			t.Errorf("CategorizeDebt(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// Matching is exact: no case folding or trimming.
func TestCategorizeDebt_CaseSensitive(t *testing.T) {
	if CategorizeDebt("education loan") {
		t.Error("lower-cased name should not match the good-debt table")
	}
	if CategorizeDebt("Education Loan ") {
		t.Error("padded name should not match the good-debt table")
	}
}
