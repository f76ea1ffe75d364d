package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// Initialize seeds the live match from its stored schedule.
func (h *MatchHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	state, err := h.matchService.Initialize(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, state, nil)
}

func (h *MatchHandler) GetState(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	state, err := h.matchService.GetState(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

func (h *MatchHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req services.TurnRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.SubmitTurn(r.Context(), matchID, req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

func (h *MatchHandler) AdvanceToNextSong(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	state, err := h.matchService.AdvanceToNextSong(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

func (h *MatchHandler) ResolveDraw(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req struct {
		Winner models.Side `json:"winner"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.ResolveDraw(r.Context(), matchID, req.Winner)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

func (h *MatchHandler) SelectTiebreakerSong(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req struct {
		SongID     int    `json:"song_id"`
		Difficulty string `json:"difficulty"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.SelectTiebreakerSong(r.Context(), matchID, req.SongID, req.Difficulty)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

// History serves the persisted snapshot and round summaries, including for
// matches already archived and evicted from memory.
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	history, err := h.matchService.History(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history, nil)
}

func (h *MatchHandler) Archive(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	state, err := h.matchService.Archive(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}
