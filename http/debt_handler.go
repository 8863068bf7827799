package http

import (
	"encoding/json"
	"net/http"

	"debt-tracker/domain"
	"debt-tracker/service"
)

type DebtHandler struct {
	service *service.DebtService
}

func NewDebtHandler(service *service.DebtService) *DebtHandler {
	return &DebtHandler{service: service}
}

func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.NewDebtInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	debt, err := h.service.CreateDebt(r.Context(), UserID(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	debt, err := h.service.GetDebt(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	debts, err := h.service.ListDebts(r.Context(), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

// paymentResponse pairs the updated aggregate with the ledger entry the
// payment created.
type paymentResponse struct {
	Debt    domain.Debt
	Payment domain.DebtPayment
}

func (h *DebtHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var input domain.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		input.IdempotencyKey = key
	}

	debt, payment, err := h.service.ApplyPayment(r.Context(), UserID(r), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{Debt: debt, Payment: payment})
}

func (h *DebtHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *DebtHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	debt, err := h.service.CancelDebt(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDebt(r.Context(), UserID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
