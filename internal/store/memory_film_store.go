package store

import (
	"context"
	"log/slog"

	"filmorate-service/internal/domain"
)

// MemoryFilmStore - in-memory реализация FilmStore.
type MemoryFilmStore struct {
	db     *memoryDB
	logger *slog.Logger
}

// Create сохраняет фильм под новым ID. Переданные лайки игнорируются.
func (s *MemoryFilmStore) Create(ctx context.Context, film domain.Film) (domain.Film, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.db.checkRefs(film); err != nil {
		return domain.Film{}, err
	}

	s.db.lastFilmID++
	stored := film.Clone()
	stored.ID = s.db.lastFilmID
	stored.Likes = nil
	rec := &memoryFilm{film: stored, likes: make(map[int64]struct{})}
	s.db.films[stored.ID] = rec

	s.logger.DebugContext(ctx, "Film created in memory store", slog.Int64("filmID", stored.ID))
	return s.db.projectFilm(rec), nil
}

func (s *MemoryFilmStore) Update(ctx context.Context, film domain.Film) (domain.Film, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.films[film.ID]
	if !ok {
		return domain.Film{}, ErrFilmNotFound
	}
	if err := s.db.checkRefs(film); err != nil {
		return domain.Film{}, err
	}

	stored := film.Clone()
	stored.Likes = nil
	rec.film = stored

	s.logger.DebugContext(ctx, "Film updated in memory store", slog.Int64("filmID", film.ID))
	return s.db.projectFilm(rec), nil
}

func (s *MemoryFilmStore) GetByID(_ context.Context, id int64) (domain.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.films[id]
	if !ok {
		return domain.Film{}, ErrFilmNotFound
	}
	return s.db.projectFilm(rec), nil
}

// List возвращает фильмы в порядке создания.
func (s *MemoryFilmStore) List(_ context.Context) ([]domain.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	films := make([]domain.Film, 0, len(s.db.films))
	for _, id := range sortedKeys(s.db.films) {
		films = append(films, s.db.projectFilm(s.db.films[id]))
	}
	return films, nil
}

func (s *MemoryFilmStore) Exists(_ context.Context, id int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	_, ok := s.db.films[id]
	return ok, nil
}

// DeleteAll удаляет все фильмы и сбрасывает счетчик ID.
func (s *MemoryFilmStore) DeleteAll(ctx context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.films = make(map[int64]*memoryFilm)
	s.db.lastFilmID = 0

	s.logger.DebugContext(ctx, "All films removed from memory store")
	return nil
}

// AddLike идемпотентен: повторный лайк не меняет состояние.
func (s *MemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.films[filmID]
	if !ok {
		return ErrFilmNotFound
	}
	if _, ok := s.db.users[userID]; !ok {
		return ErrUserNotFound
	}
	rec.likes[userID] = struct{}{}

	s.logger.DebugContext(ctx, "Like added in memory store",
		slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *MemoryFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.films[filmID]
	if !ok {
		return ErrFilmNotFound
	}
	delete(rec.likes, userID)

	s.logger.DebugContext(ctx, "Like removed in memory store",
		slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}
