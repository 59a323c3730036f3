package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hiddenday/planner/pkg/domain"
)

type PlanHandler struct {
	service domain.PlanService
}

func NewPlanHandler(service domain.PlanService) *PlanHandler {
	return &PlanHandler{
		service: service,
	}
}

func (h *PlanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/plan", h.CreatePlan).Methods("POST")
}

func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// The plan owns its own freshness via the TTL cache; the HTTP layer
	// must not add a second one.
	w.Header().Set("Cache-Control", "no-store")

	var req domain.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to decode plan request: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Message)
		}
		h.respondWithError(w, http.StatusUnprocessableEntity, strings.Join(messages, "; "))
		return
	}

	response, err := h.service.CreatePlan(ctx, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.respondWithError(w, http.StatusUnprocessableEntity, "invalid request")
			return
		}
		log.Printf("failed to create plan: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

func (h *PlanHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *PlanHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
