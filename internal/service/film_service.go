package service

import (
	"context"
	"log/slog"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// FilmService - операции над фильмами, лайками и рейтингом популярности.
type FilmService struct {
	films    store.FilmStore
	refs     *ReferenceValidator
	validate *Validator
	merger   *Merger
	logger   *slog.Logger
}

func NewFilmService(stores *store.Stores, v *Validator, logger *slog.Logger) *FilmService {
	return &FilmService{
		films:    stores.Films,
		refs:     NewReferenceValidator(stores.Genres, stores.Mpa),
		validate: v,
		merger:   NewMerger(v),
		logger:   logger,
	}
}

// Create проверяет фильм целиком и сохраняет его под новым ID.
// При любой ошибке хранилище не меняется.
func (s *FilmService) Create(ctx context.Context, film domain.Film) (domain.Film, error) {
	const op = "Create"

	if err := s.validate.Struct(ctx, film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.String("error", err.Error()))
		return domain.Film{}, invalid("film", op, describe(err), err)
	}
	film.ID = 0
	film.Likes = nil
	film.Genres = uniqueGenres(film.Genres)

	if err := s.refs.CheckMpa(ctx, op, film.Mpa); err != nil {
		return domain.Film{}, err
	}
	if err := s.refs.CheckGenres(ctx, op, film.Genres); err != nil {
		return domain.Film{}, err
	}

	created, err := s.films.Create(ctx, film)
	if err != nil {
		return domain.Film{}, fromStore("film", op, err, ids{})
	}
	s.logger.InfoContext(ctx, "Film created", slog.Int64("filmID", created.ID), slog.String("name", created.Name))
	return created, nil
}

// Update применяет частичное обновление. Рейтинг и жанры, если переданы,
// сначала проверяются по справочникам и заменяются целиком.
func (s *FilmService) Update(ctx context.Context, upd domain.FilmUpdate) (domain.Film, error) {
	const op = "Update"

	if upd.ID <= 0 {
		return domain.Film{}, invalid("film", op, "film id must be set for update", nil)
	}
	current, err := s.films.GetByID(ctx, upd.ID)
	if err != nil {
		return domain.Film{}, fromStore("film", op, err, ids{film: upd.ID})
	}

	if upd.Mpa != nil {
		if err := s.refs.CheckMpa(ctx, op, upd.Mpa); err != nil {
			return domain.Film{}, err
		}
	}
	var genres []domain.Genre
	if upd.Genres != nil {
		genres = uniqueGenres(*upd.Genres)
		if err := s.refs.CheckGenres(ctx, op, genres); err != nil {
			return domain.Film{}, err
		}
	}

	next, skipped := s.merger.MergeFilm(ctx, current, upd)
	if len(skipped) > 0 {
		s.logger.InfoContext(ctx, "Invalid fields skipped in film update",
			slog.Int64("filmID", upd.ID), slog.Any("fields", skipped))
	}
	if upd.Mpa != nil {
		next.Mpa = &domain.Mpa{ID: upd.Mpa.ID}
	}
	if upd.Genres != nil {
		next.Genres = genres
	}

	updated, err := s.films.Update(ctx, next)
	if err != nil {
		return domain.Film{}, fromStore("film", op, err, ids{film: upd.ID})
	}
	s.logger.InfoContext(ctx, "Film updated", slog.Int64("filmID", updated.ID))
	return updated, nil
}

func (s *FilmService) GetByID(ctx context.Context, id int64) (domain.Film, error) {
	film, err := s.films.GetByID(ctx, id)
	if err != nil {
		return domain.Film{}, fromStore("film", "GetByID", err, ids{film: id})
	}
	return film, nil
}

func (s *FilmService) List(ctx context.Context) ([]domain.Film, error) {
	films, err := s.films.List(ctx)
	if err != nil {
		return nil, fromStore("film", "List", err, ids{})
	}
	return films, nil
}

func (s *FilmService) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := s.films.Exists(ctx, id)
	if err != nil {
		return false, fromStore("film", "Exists", err, ids{film: id})
	}
	return ok, nil
}

// DeleteAll удаляет все фильмы вместе с их жанрами и лайками.
func (s *FilmService) DeleteAll(ctx context.Context) error {
	if err := s.films.DeleteAll(ctx); err != nil {
		return fromStore("film", "DeleteAll", err, ids{})
	}
	s.logger.InfoContext(ctx, "All films deleted")
	return nil
}

// AddLike требует существования и фильма, и пользователя.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.films.AddLike(ctx, filmID, userID); err != nil {
		return fromStore("film", "AddLike", err, ids{film: filmID, user: userID})
	}
	s.logger.InfoContext(ctx, "Like added", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// RemoveLike требует только существования фильма: удаление лайка
// несуществующего пользователя не ошибка.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.films.RemoveLike(ctx, filmID, userID); err != nil {
		return fromStore("film", "RemoveLike", err, ids{film: filmID, user: userID})
	}
	s.logger.InfoContext(ctx, "Like removed", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// Popular возвращает не более count фильмов с наибольшим числом лайков.
func (s *FilmService) Popular(ctx context.Context, count int) ([]domain.Film, error) {
	films, err := s.films.List(ctx)
	if err != nil {
		return nil, fromStore("film", "Popular", err, ids{})
	}
	return RankByLikes(films, count), nil
}
