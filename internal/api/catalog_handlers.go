package api

import (
	"context"
	"log/slog"
	"net/http"

	"filmorate-service/internal/service"
)

// CatalogHandler отдает справочники и проверку здоровья сервиса.
type CatalogHandler struct {
	responder
	catalog *service.CatalogService
	ping    func(ctx context.Context) error
}

func NewCatalogHandler(catalog *service.CatalogService, ping func(ctx context.Context) error, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{responder: responder{logger: logger}, catalog: catalog, ping: ping}
}

func (h *CatalogHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

func (h *CatalogHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	genre, err := h.catalog.Genre(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *CatalogHandler) GetMpaRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.catalog.MpaRatings(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

func (h *CatalogHandler) GetMpaByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	mpa, err := h.catalog.Mpa(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, mpa)
}

// Health проверяет доступность хранилища.
func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "Health check failed", slog.String("error", err.Error()))
			h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
