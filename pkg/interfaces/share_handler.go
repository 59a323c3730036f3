package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hiddenday/planner/pkg/domain"
)

// ShareHandler persists finished plans so they can be reopened from a
// short URL.
type ShareHandler struct {
	repository domain.PlanRepository
}

func NewShareHandler(repository domain.PlanRepository) *ShareHandler {
	return &ShareHandler{
		repository: repository,
	}
}

func (h *ShareHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/plans", h.SharePlan).Methods("POST")
	router.HandleFunc("/api/plans/recent", h.RecentPlans).Methods("GET")
	router.HandleFunc("/api/plans/{id}", h.GetPlan).Methods("GET")
}

func (h *ShareHandler) SharePlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var response domain.PlanResponse
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "request body must be a plan response")
		return
	}
	if response.Location == "" {
		h.respondWithError(w, http.StatusUnprocessableEntity, "plan location is required")
		return
	}

	plan := &domain.SharedPlan{Response: response}
	if err := h.repository.Save(ctx, plan); err != nil {
		log.Printf("failed to share plan: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]string{"id": plan.ID})
}

func (h *ShareHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	id := vars["id"]

	plan, err := h.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			h.respondWithError(w, http.StatusNotFound, "plan not found")
			return
		}
		log.Printf("failed to get plan %s: %v", id, err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondWithJSON(w, http.StatusOK, plan)
}

func (h *ShareHandler) RecentPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	plans, err := h.repository.Recent(ctx, limit)
	if err != nil {
		log.Printf("failed to list recent plans: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if plans == nil {
		plans = []domain.SharedPlan{}
	}

	h.respondWithJSON(w, http.StatusOK, plans)
}

func (h *ShareHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *ShareHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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
