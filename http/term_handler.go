package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"debt-tracker/domain"
	"debt-tracker/service"
)

type TermHandler struct {
	service *service.TermService
}

func NewTermHandler(service *service.TermService) *TermHandler {
	return &TermHandler{service: service}
}

func (h *TermHandler) RecommendTerm(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var input domain.TermRecommendationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("error decoding request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.RecommendTerm(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
