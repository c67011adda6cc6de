package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filmorate-service/internal/service"
)

// responder - общие помощники ответа для всех обработчиков.
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h responder) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError отображает вид ошибки сервиса на HTTP-статус.
func (h responder) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.logger.WarnContext(ctx, "Requested entity not found", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusNotFound, messageOf(err))
	case errors.Is(err, service.ErrValidation):
		h.logger.WarnContext(ctx, "Request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, messageOf(err))
	case errors.Is(err, service.ErrConflict):
		h.logger.WarnContext(ctx, "Request conflicts with stored state", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusConflict, messageOf(err))
	default:
		h.logger.ErrorContext(ctx, "Request failed", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func messageOf(err error) string {
	var target *service.Error
	if errors.As(err, &target) {
		return target.Message
	}
	return err.Error()
}

func (h responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// pathID читает положительный целый параметр пути.
func (h responder) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}
