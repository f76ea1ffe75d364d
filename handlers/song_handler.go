package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yerassyl04/rhythm-duel/services"
)

type SongHandler struct {
	songService services.SongService
}

func NewSongHandler(songService services.SongService) *SongHandler {
	return &SongHandler{songService: songService}
}

func (h *SongHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		Difficulty string `json:"difficulty"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	song, err := h.songService.Create(r.Context(), req.Title, req.Difficulty)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song, nil)
}

func (h *SongHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "songID"))
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	song, err := h.songService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song, nil)
}

func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs, nil)
}

func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "songID"))
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	if err := h.songService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SongHandler) UploadJacket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "songID"))
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	contentType := r.Header.Get("Content-Type")
	song, err := h.songService.UploadJacket(r.Context(), id, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song, nil)
}

func (h *SongHandler) RemoveJacket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "songID"))
	if err != nil {
		notFoundResponse(w, r)
		return
	}

	song, err := h.songService.RemoveJacket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song, nil)
}
