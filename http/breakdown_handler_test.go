package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"debt-tracker/domain"
	"debt-tracker/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBreakdownHandler_OK(t *testing.T) {
	handler := NewBreakdownHandler()

	body := []byte(`{
		"initialAmount": 120000,
		"tenureMonths": 12,
		"interestRate": 12,
		"interestType": "Diminishing",
		"targetMonth": 1
	}`)
	req := httptest.NewRequest(http.MethodPost, "/loans/breakdown", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	handler.Calculate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.LoanBreakdown
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.EMI.Equal(dec("10661.85")) {
		t.Errorf("emi = %s, want 10661.85", result.EMI)
	}
	if !result.Interest.Equal(dec("1200")) {
		t.Errorf("interest = %s, want 1200", result.Interest)
	}
}

func TestBreakdownHandler_UnknownInterestType(t *testing.T) {
	handler := NewBreakdownHandler()

	body := []byte(`{
		"initialAmount": 1000,
		"tenureMonths": 12,
		"interestRate": 10,
		"interestType": "Annuity",
		"targetMonth": 1
	}`)
	req := httptest.NewRequest(http.MethodPost, "/loans/breakdown", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	handler.Calculate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTermHandler_RequiresJSONContentType(t *testing.T) {
	handler := NewTermHandler(service.NewTermService())

	req := httptest.NewRequest(http.MethodPost, "/loans/recommend-term", bytes.NewBufferString("amount=1000"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handler.RecommendTerm(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestTermHandler_OK(t *testing.T) {
	handler := NewTermHandler(service.NewTermService())

	body := []byte(`{
		"amount": 10000,
		"interestRate": 12,
		"minTermMonths": 6,
		"maxTermMonths": 24,
		"maxMonthlyPayment": 2000,
		"preference": "balanced"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/loans/recommend-term", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.RecommendTerm(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.TermRecommendationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.RecommendedTerm < 6 || result.RecommendedTerm > 24 {
		t.Errorf("recommended term %d outside requested range", result.RecommendedTerm)
	}
}
