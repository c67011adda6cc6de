package store

import (
	"context"
	"errors"

	"filmorate-service/internal/domain"
)

// Кастомные ошибки хранилища
var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrMpaNotFound   = errors.New("mpa rating not found")
	ErrIDConflict    = errors.New("identifier is already in use")
)

// FilmStore определяет интерфейс хранилища фильмов и лайков.
// Все методы принимают и возвращают значения: изменение результата не влияет на хранилище.
type FilmStore interface {
	Create(ctx context.Context, film domain.Film) (domain.Film, error)
	// Update заменяет поля, рейтинг и жанры фильма. Лайки не трогаются.
	Update(ctx context.Context, film domain.Film) (domain.Film, error)
	GetByID(ctx context.Context, id int64) (domain.Film, error)
	List(ctx context.Context) ([]domain.Film, error)
	Exists(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) error
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
}

// UserStore определяет интерфейс хранилища пользователей и связей «подписан на».
type UserStore interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	// Update заменяет поля пользователя. Список друзей не трогается.
	Update(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// DeleteAll удаляет пользователей вместе с их связями дружбы и лайками.
	DeleteAll(ctx context.Context) error
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
}

// GenreStore - справочник жанров.
type GenreStore interface {
	List(ctx context.Context) ([]domain.Genre, error)
	GetByID(ctx context.Context, id int64) (domain.Genre, error)
}

// MpaStore - справочник рейтингов MPA.
type MpaStore interface {
	List(ctx context.Context) ([]domain.Mpa, error)
	GetByID(ctx context.Context, id int64) (domain.Mpa, error)
}

// Stores объединяет хранилища одного бэкенда.
type Stores struct {
	Films  FilmStore
	Users  UserStore
	Genres GenreStore
	Mpa    MpaStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping проверяет доступность бэкенда.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close освобождает ресурсы бэкенда.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
