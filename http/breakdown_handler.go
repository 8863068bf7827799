package http

import (
	"encoding/json"
	"net/http"

	"debt-tracker/domain"
	"debt-tracker/service"
)

// BreakdownHandler exposes the stateless EMI calculator.
type BreakdownHandler struct{}

func NewBreakdownHandler() *BreakdownHandler {
	return &BreakdownHandler{}
}

func (h *BreakdownHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input domain.BreakdownInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := service.CalculateLoanBreakdown(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
