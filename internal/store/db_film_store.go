package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"filmorate-service/internal/domain"
)

// DBFilmStore реализует FilmStore поверх PostgreSQL или SQLite.
type DBFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// filmRow - строка films, соединенная с mpa.
type filmRow struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	ReleaseDate domain.Date `db:"release_date"`
	Duration    int         `db:"duration"`
	MpaID       int64       `db:"mpa_id"`
	MpaName     string      `db:"mpa_name"`
}

func (r filmRow) toDomain() domain.Film {
	return domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
		Mpa:         &domain.Mpa{ID: r.MpaID, Name: r.MpaName},
		Genres:      []domain.Genre{},
		Likes:       []int64{},
	}
}

type filmGenreRow struct {
	FilmID int64  `db:"film_id"`
	ID     int64  `db:"id"`
	Name   string `db:"name"`
}

type filmLikeRow struct {
	FilmID int64 `db:"film_id"`
	UserID int64 `db:"user_id"`
}

const selectFilms = `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name AS mpa_name
	FROM films f JOIN mpa m ON m.id = f.mpa_id`

const selectFilmGenres = `SELECT fg.film_id, g.id, g.name
	FROM film_genres fg JOIN genres g ON g.id = fg.genre_id`

// checkRefs проверяет существование рейтинга и жанров внутри транзакции.
func (s *DBFilmStore) checkRefs(ctx context.Context, tx *sqlx.Tx, film domain.Film) error {
	if film.Mpa == nil {
		return ErrMpaNotFound
	}
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM mpa WHERE id = ?`), film.Mpa.ID); err != nil {
		return fmt.Errorf("failed to check mpa rating: %w", err)
	}
	if n == 0 {
		return ErrMpaNotFound
	}

	ids := film.GenreIDs()
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`SELECT id FROM genres WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build genre query: %w", err)
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to check genres: %w", err)
	}
	known := make(map[int64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return ErrGenreNotFound
		}
	}
	return nil
}

func (s *DBFilmStore) insertGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genres []domain.Genre) error {
	query := tx.Rebind(`INSERT INTO film_genres (film_id, genre_id, sort_order) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`)
	for i, g := range genres {
		if _, err := tx.ExecContext(ctx, query, filmID, g.ID, i); err != nil {
			return fmt.Errorf("failed to link genre %d: %w", g.ID, err)
		}
	}
	return nil
}

// Create сохраняет фильм и его жанры под новым ID.
func (s *DBFilmStore) Create(ctx context.Context, film domain.Film) (domain.Film, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.checkRefs(ctx, tx, film); err != nil {
			return err
		}
		var err error
		id, err = nextID(ctx, tx, filmSequence)
		if err != nil {
			return err
		}

		s.logger.DebugContext(ctx, "Executing Create film query", slog.Int64("filmID", id), slog.String("name", film.Name))
		query := tx.Rebind(`INSERT INTO films (id, name, description, release_date, duration, mpa_id) VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, query,
			id, film.Name, film.Description, film.ReleaseDate, film.Duration, film.Mpa.ID,
		); err != nil {
			return err
		}
		return s.insertGenres(ctx, tx, id, film.Genres)
	})
	if err != nil {
		return domain.Film{}, s.mapWriteError(ctx, "create", err)
	}

	s.logger.InfoContext(ctx, "Film created successfully in DB", slog.Int64("filmID", id))
	return s.GetByID(ctx, id)
}

// Update перезаписывает поля и жанры фильма.
func (s *DBFilmStore) Update(ctx context.Context, film domain.Film) (domain.Film, error) {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ? WHERE id = ?`)
		var mpaID int64
		if film.Mpa != nil {
			mpaID = film.Mpa.ID
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM films WHERE id = ?`), film.ID); err != nil {
			return err
		}
		if exists == 0 {
			return ErrFilmNotFound
		}
		if err := s.checkRefs(ctx, tx, film); err != nil {
			return err
		}

		s.logger.DebugContext(ctx, "Executing Update film query", slog.Int64("filmID", film.ID))
		if _, err := tx.ExecContext(ctx, query,
			film.Name, film.Description, film.ReleaseDate, film.Duration, mpaID, film.ID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM film_genres WHERE film_id = ?`), film.ID); err != nil {
			return err
		}
		return s.insertGenres(ctx, tx, film.ID, film.Genres)
	})
	if err != nil {
		return domain.Film{}, s.mapWriteError(ctx, "update", err)
	}

	s.logger.InfoContext(ctx, "Film updated successfully in DB", slog.Int64("filmID", film.ID))
	return s.GetByID(ctx, film.ID)
}

// mapWriteError переводит ошибки драйвера в ошибки хранилища.
func (s *DBFilmStore) mapWriteError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrFilmNotFound), errors.Is(err, ErrMpaNotFound), errors.Is(err, ErrGenreNotFound):
		s.logger.WarnContext(ctx, "Film "+op+" rejected", slog.String("error", err.Error()))
		return err
	case isForeignKeyViolation(err):
		s.logger.WarnContext(ctx, "Film references a missing row", slog.String("error", err.Error()))
		return ErrGenreNotFound
	case isUniqueViolation(err):
		s.logger.WarnContext(ctx, "Film id already taken", slog.String("error", err.Error()))
		return ErrIDConflict
	}
	s.logger.ErrorContext(ctx, "Failed to "+op+" film in DB", slog.String("error", err.Error()))
	return fmt.Errorf("failed to %s film: %w", op, err)
}

// GetByID находит фильм по ID вместе с жанрами и лайками.
func (s *DBFilmStore) GetByID(ctx context.Context, id int64) (domain.Film, error) {
	var row filmRow
	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int64("filmID", id))
	err := s.db.GetContext(ctx, &row, s.db.Rebind(selectFilms+` WHERE f.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Film not found by ID in DB", slog.Int64("filmID", id))
			return domain.Film{}, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return domain.Film{}, fmt.Errorf("failed to get film by ID: %w", err)
	}
	film := row.toDomain()

	var genres []filmGenreRow
	if err := s.db.SelectContext(ctx, &genres,
		s.db.Rebind(selectFilmGenres+` WHERE fg.film_id = ? ORDER BY fg.sort_order`), id); err != nil {
		return domain.Film{}, fmt.Errorf("failed to load film genres: %w", err)
	}
	for _, g := range genres {
		film.Genres = append(film.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}

	if err := s.db.SelectContext(ctx, &film.Likes,
		s.db.Rebind(`SELECT user_id FROM film_likes WHERE film_id = ? ORDER BY user_id`), id); err != nil {
		return domain.Film{}, fmt.Errorf("failed to load film likes: %w", err)
	}
	return film, nil
}

// List возвращает все фильмы по возрастанию ID. Жанры и лайки подгружаются
// двумя запросами на весь список.
func (s *DBFilmStore) List(ctx context.Context) ([]domain.Film, error) {
	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing List films query")
	if err := s.db.SelectContext(ctx, &rows, selectFilms+` ORDER BY f.id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}

	films := make([]domain.Film, 0, len(rows))
	index := make(map[int64]int, len(rows))
	for i, r := range rows {
		films = append(films, r.toDomain())
		index[r.ID] = i
	}
	if len(films) == 0 {
		return films, nil
	}

	var genres []filmGenreRow
	if err := s.db.SelectContext(ctx, &genres, selectFilmGenres+` ORDER BY fg.film_id, fg.sort_order`); err != nil {
		return nil, fmt.Errorf("failed to load film genres: %w", err)
	}
	for _, g := range genres {
		if i, ok := index[g.FilmID]; ok {
			films[i].Genres = append(films[i].Genres, domain.Genre{ID: g.ID, Name: g.Name})
		}
	}

	var likes []filmLikeRow
	if err := s.db.SelectContext(ctx, &likes, `SELECT film_id, user_id FROM film_likes ORDER BY film_id, user_id`); err != nil {
		return nil, fmt.Errorf("failed to load film likes: %w", err)
	}
	for _, l := range likes {
		if i, ok := index[l.FilmID]; ok {
			films[i].Likes = append(films[i].Likes, l.UserID)
		}
	}
	return films, nil
}

func (s *DBFilmStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM films WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("failed to check film existence: %w", err)
	}
	return n > 0, nil
}

// DeleteAll удаляет фильмы, их жанры и лайки и сбрасывает последовательность ID.
func (s *DBFilmStore) DeleteAll(ctx context.Context) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM film_likes`,
			`DELETE FROM film_genres`,
			`DELETE FROM films`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return resetSequence(ctx, tx, filmSequence)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete films from DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete films: %w", err)
	}
	s.logger.InfoContext(ctx, "All films deleted from DB")
	return nil
}

// AddLike идемпотентен: повторная вставка игнорируется.
func (s *DBFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilm(ctx, filmID); err != nil {
		return err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`), userID); err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}

	query := s.db.Rebind(`INSERT INTO film_likes (film_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		if isForeignKeyViolation(err) {
			// строку удалили между проверкой и вставкой
			return ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to add like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add like: %w", err)
	}
	s.logger.DebugContext(ctx, "Like stored in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *DBFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilm(ctx, filmID); err != nil {
		return err
	}
	query := s.db.Rebind(`DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove like: %w", err)
	}
	s.logger.DebugContext(ctx, "Like removed in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *DBFilmStore) requireFilm(ctx context.Context, id int64) error {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFilmNotFound
	}
	return nil
}
