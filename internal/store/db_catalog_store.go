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

type DBGenreStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (s *DBGenreStore) List(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *DBGenreStore) GetByID(ctx context.Context, id int64) (domain.Genre, error) {
	var g domain.Genre
	err := s.db.GetContext(ctx, &g, s.db.Rebind(`SELECT id, name FROM genres WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Genre{}, ErrGenreNotFound
	}
	if err != nil {
		return domain.Genre{}, fmt.Errorf("failed to get genre: %w", err)
	}
	return g, nil
}

type DBMpaStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (s *DBMpaStore) List(ctx context.Context) ([]domain.Mpa, error) {
	ratings := []domain.Mpa{}
	if err := s.db.SelectContext(ctx, &ratings, `SELECT id, name FROM mpa ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list mpa ratings from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list mpa ratings: %w", err)
	}
	return ratings, nil
}

func (s *DBMpaStore) GetByID(ctx context.Context, id int64) (domain.Mpa, error) {
	var m domain.Mpa
	err := s.db.GetContext(ctx, &m, s.db.Rebind(`SELECT id, name FROM mpa WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mpa{}, ErrMpaNotFound
	}
	if err != nil {
		return domain.Mpa{}, fmt.Errorf("failed to get mpa rating: %w", err)
	}
	return m, nil
}
