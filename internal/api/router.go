package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers собирает обработчики всех ресурсов.
type Handlers struct {
	Films   *FilmHandler
	Users   *UserHandler
	Catalog *CatalogHandler
}

func NewRouter(h Handlers, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware(logger), recoveryMiddleware(logger))

	// Эндпоинты для фильмов. /popular регистрируется раньше /{id}
	filmsRouter := router.PathPrefix("/films").Subrouter()
	filmsRouter.HandleFunc("", h.Films.CreateFilm).Methods(http.MethodPost)
	filmsRouter.HandleFunc("", h.Films.UpdateFilm).Methods(http.MethodPut)
	filmsRouter.HandleFunc("", h.Films.GetFilms).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/popular", h.Films.GetPopular).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id}", h.Films.GetFilmByID).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id}/like/{userId}", h.Films.AddLike).Methods(http.MethodPut)
	filmsRouter.HandleFunc("/{id}/like/{userId}", h.Films.RemoveLike).Methods(http.MethodDelete)

	// Эндпоинты для пользователей и дружбы
	usersRouter := router.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("", h.Users.CreateUser).Methods(http.MethodPost)
	usersRouter.HandleFunc("", h.Users.UpdateUser).Methods(http.MethodPut)
	usersRouter.HandleFunc("", h.Users.GetUsers).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}", h.Users.GetUserByID).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/friends", h.Users.GetFriends).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/friends/common/{otherId}", h.Users.GetCommonFriends).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/friends/{friendId}", h.Users.AddFriend).Methods(http.MethodPut)
	usersRouter.HandleFunc("/{id}/friends/{friendId}", h.Users.RemoveFriend).Methods(http.MethodDelete)

	// Справочники
	router.HandleFunc("/genres", h.Catalog.GetGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id}", h.Catalog.GetGenreByID).Methods(http.MethodGet)
	router.HandleFunc("/mpa", h.Catalog.GetMpaRatings).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id}", h.Catalog.GetMpaByID).Methods(http.MethodGet)

	router.HandleFunc("/health", h.Catalog.Health).Methods(http.MethodGet)

	return router
}
