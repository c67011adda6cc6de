package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/service"
)

// FilmHandler содержит зависимости для HTTP обработчиков фильмов.
type FilmHandler struct {
	responder
	films *service.FilmService
}

func NewFilmHandler(films *service.FilmService, logger *slog.Logger) *FilmHandler {
	return &FilmHandler{responder: responder{logger: logger}, films: films}
}

// CreateFilm - POST /films, полная валидация.
func (h *FilmHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateFilm request received", slog.String("path", r.URL.Path))

	var film domain.Film
	if !h.decode(w, r, &film) {
		return
	}
	created, err := h.films.Create(ctx, film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, created)
}

// UpdateFilm - PUT /films, частичное обновление.
func (h *FilmHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP UpdateFilm request received", slog.String("path", r.URL.Path))

	var upd domain.FilmUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	updated, err := h.films.Update(ctx, upd)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

func (h *FilmHandler) GetFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *FilmHandler) GetFilmByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	film, err := h.films.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *FilmHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *FilmHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.films.RemoveLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetPopular - GET /films/popular?count=N, по умолчанию 10.
func (h *FilmHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	count := service.DefaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}
	films, err := h.films.Popular(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}
