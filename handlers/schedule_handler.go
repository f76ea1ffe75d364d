package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var schedule models.MatchSchedule
	if err := readJSON(w, r, &schedule); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.scheduleService.Create(r.Context(), &schedule)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created, nil)
}

func (h *ScheduleHandler) GetByMatchID(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	schedule, err := h.scheduleService.GetByMatchID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule, nil)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.scheduleService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules, nil)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	if err := h.scheduleService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
