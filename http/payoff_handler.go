package http

import (
	"encoding/json"
	"net/http"

	"debt-tracker/domain"
	"debt-tracker/service"
)

type PayoffHandler struct {
	service *service.PayoffService
}

func NewPayoffHandler(service *service.PayoffService) *PayoffHandler {
	return &PayoffHandler{service: service}
}

func (h *PayoffHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var input domain.PayoffInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.service.PlanPayoff(r.Context(), UserID(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
