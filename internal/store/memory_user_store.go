package store

import (
	"context"
	"log/slog"

	"filmorate-service/internal/domain"
)

// MemoryUserStore - in-memory реализация UserStore.
type MemoryUserStore struct {
	db     *memoryDB
	logger *slog.Logger
}

func (s *MemoryUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.lastUserID++
	stored := user.Clone()
	stored.ID = s.db.lastUserID
	stored.Friends = nil
	rec := &memoryUser{user: stored, friends: make(map[int64]struct{})}
	s.db.users[stored.ID] = rec

	s.logger.DebugContext(ctx, "User created in memory store", slog.Int64("userID", stored.ID))
	return s.db.projectUser(rec), nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user domain.User) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.users[user.ID]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	stored := user.Clone()
	stored.Friends = nil
	rec.user = stored

	s.logger.DebugContext(ctx, "User updated in memory store", slog.Int64("userID", user.ID))
	return s.db.projectUser(rec), nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id int64) (domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return s.db.projectUser(rec), nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]domain.User, 0, len(s.db.users))
	for _, id := range sortedKeys(s.db.users) {
		users = append(users, s.db.projectUser(s.db.users[id]))
	}
	return users, nil
}

func (s *MemoryUserStore) Exists(_ context.Context, id int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	_, ok := s.db.users[id]
	return ok, nil
}

// DeleteAll удаляет всех пользователей. Лайки фильмов ставили только они,
// поэтому лайки очищаются целиком.
func (s *MemoryUserStore) DeleteAll(ctx context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.users = make(map[int64]*memoryUser)
	s.db.lastUserID = 0
	for _, rec := range s.db.films {
		rec.likes = make(map[int64]struct{})
	}

	s.logger.DebugContext(ctx, "All users removed from memory store")
	return nil
}

// AddFriend добавляет однонаправленную связь userID -> friendID.
func (s *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if _, ok := s.db.users[friendID]; !ok {
		return ErrUserNotFound
	}
	rec.friends[friendID] = struct{}{}

	s.logger.DebugContext(ctx, "Friend added in memory store",
		slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *MemoryUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if _, ok := s.db.users[friendID]; !ok {
		return ErrUserNotFound
	}
	delete(rec.friends, friendID)

	s.logger.DebugContext(ctx, "Friend removed in memory store",
		slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}
