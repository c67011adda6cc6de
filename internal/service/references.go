package service

import (
	"context"
	"errors"
	"fmt"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// ReferenceValidator проверяет, что рейтинг и жанры фильма есть в справочниках.
type ReferenceValidator struct {
	genres store.GenreStore
	mpa    store.MpaStore
}

func NewReferenceValidator(genres store.GenreStore, mpa store.MpaStore) *ReferenceValidator {
	return &ReferenceValidator{genres: genres, mpa: mpa}
}

// CheckMpa возвращает ErrNotFound, если рейтинга нет в справочнике.
func (r *ReferenceValidator) CheckMpa(ctx context.Context, op string, mpa *domain.Mpa) error {
	if mpa == nil {
		return invalid("film", op, "mpa is required", nil)
	}
	if _, err := r.mpa.GetByID(ctx, mpa.ID); err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return notFound("mpa", op, "mpa rating with id %d not found", mpa.ID)
		}
		return fmt.Errorf("film.%s: check mpa: %w", op, err)
	}
	return nil
}

// CheckGenres останавливается на первом отсутствующем жанре.
func (r *ReferenceValidator) CheckGenres(ctx context.Context, op string, genres []domain.Genre) error {
	for _, g := range genres {
		if _, err := r.genres.GetByID(ctx, g.ID); err != nil {
			if errors.Is(err, store.ErrGenreNotFound) {
				return notFound("genre", op, "genre with id %d not found", g.ID)
			}
			return fmt.Errorf("film.%s: check genre: %w", op, err)
		}
	}
	return nil
}

// uniqueGenres убирает повторы, сохраняя первое вхождение.
func uniqueGenres(genres []domain.Genre) []domain.Genre {
	seen := make(map[int64]struct{}, len(genres))
	out := make([]domain.Genre, 0, len(genres))
	for _, g := range genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		out = append(out, domain.Genre{ID: g.ID})
	}
	return out
}
