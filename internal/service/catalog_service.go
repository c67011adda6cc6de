package service

import (
	"context"
	"errors"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// CatalogService отдает справочники жанров и рейтингов MPA.
type CatalogService struct {
	genres store.GenreStore
	mpa    store.MpaStore
}

func NewCatalogService(stores *store.Stores) *CatalogService {
	return &CatalogService{genres: stores.Genres, mpa: stores.Mpa}
}

func (s *CatalogService) Genres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.genres.List(ctx)
	if err != nil {
		return nil, fromStore("genre", "List", err, ids{})
	}
	return genres, nil
}

func (s *CatalogService) Genre(ctx context.Context, id int64) (domain.Genre, error) {
	g, err := s.genres.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrGenreNotFound) {
			return domain.Genre{}, notFound("genre", "GetByID", "genre with id %d not found", id)
		}
		return domain.Genre{}, fromStore("genre", "GetByID", err, ids{})
	}
	return g, nil
}

func (s *CatalogService) MpaRatings(ctx context.Context) ([]domain.Mpa, error) {
	ratings, err := s.mpa.List(ctx)
	if err != nil {
		return nil, fromStore("mpa", "List", err, ids{})
	}
	return ratings, nil
}

func (s *CatalogService) Mpa(ctx context.Context, id int64) (domain.Mpa, error) {
	m, err := s.mpa.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return domain.Mpa{}, notFound("mpa", "GetByID", "mpa rating with id %d not found", id)
		}
		return domain.Mpa{}, fromStore("mpa", "GetByID", err, ids{})
	}
	return m, nil
}
