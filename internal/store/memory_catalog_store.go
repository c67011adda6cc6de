package store

import (
	"context"

	"filmorate-service/internal/domain"
)

type MemoryGenreStore struct {
	db *memoryDB
}

func (s *MemoryGenreStore) List(_ context.Context) ([]domain.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	genres := make([]domain.Genre, 0, len(s.db.genres))
	for _, id := range sortedKeys(s.db.genres) {
		genres = append(genres, s.db.genres[id])
	}
	return genres, nil
}

func (s *MemoryGenreStore) GetByID(_ context.Context, id int64) (domain.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	g, ok := s.db.genres[id]
	if !ok {
		return domain.Genre{}, ErrGenreNotFound
	}
	return g, nil
}

type MemoryMpaStore struct {
	db *memoryDB
}

func (s *MemoryMpaStore) List(_ context.Context) ([]domain.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	ratings := make([]domain.Mpa, 0, len(s.db.mpa))
	for _, id := range sortedKeys(s.db.mpa) {
		ratings = append(ratings, s.db.mpa[id])
	}
	return ratings, nil
}

func (s *MemoryMpaStore) GetByID(_ context.Context, id int64) (domain.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	m, ok := s.db.mpa[id]
	if !ok {
		return domain.Mpa{}, ErrMpaNotFound
	}
	return m, nil
}
