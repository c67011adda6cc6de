package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// UserService - операции над пользователями и графом дружбы.
// Дружба однонаправленная: взаимность - это два вызова AddFriend.
type UserService struct {
	users    store.UserStore
	validate *Validator
	merger   *Merger
	logger   *slog.Logger
}

func NewUserService(stores *store.Stores, v *Validator, logger *slog.Logger) *UserService {
	return &UserService{
		users:    stores.Users,
		validate: v,
		merger:   NewMerger(v),
		logger:   logger,
	}
}

// Create проверяет пользователя целиком. Пустое имя заменяется логином.
func (s *UserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const op = "Create"

	if err := s.validate.Struct(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.String("error", err.Error()))
		return domain.User{}, invalid("user", op, describe(err), err)
	}
	user.ID = 0
	user.Friends = nil
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.User{}, fromStore("user", op, err, ids{})
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", created.ID), slog.String("login", created.Login))
	return created, nil
}

func (s *UserService) Update(ctx context.Context, upd domain.UserUpdate) (domain.User, error) {
	const op = "Update"

	if upd.ID <= 0 {
		return domain.User{}, invalid("user", op, "user id must be set for update", nil)
	}
	current, err := s.users.GetByID(ctx, upd.ID)
	if err != nil {
		return domain.User{}, fromStore("user", op, err, ids{user: upd.ID})
	}

	next, skipped := s.merger.MergeUser(ctx, current, upd)
	if len(skipped) > 0 {
		s.logger.InfoContext(ctx, "Invalid fields skipped in user update",
			slog.Int64("userID", upd.ID), slog.Any("fields", skipped))
	}

	updated, err := s.users.Update(ctx, next)
	if err != nil {
		return domain.User{}, fromStore("user", op, err, ids{user: upd.ID})
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", updated.ID))
	return updated, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fromStore("user", "GetByID", err, ids{user: id})
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fromStore("user", "List", err, ids{})
	}
	return users, nil
}

func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return false, fromStore("user", "Exists", err, ids{user: id})
	}
	return ok, nil
}

// DeleteAll удаляет пользователей, их дружбу и лайки; следующий ID снова 1.
func (s *UserService) DeleteAll(ctx context.Context) error {
	if err := s.users.DeleteAll(ctx); err != nil {
		return fromStore("user", "DeleteAll", err, ids{})
	}
	s.logger.InfoContext(ctx, "All users deleted")
	return nil
}

func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return fromStore("user", "AddFriend", err, ids{user: userID, friend: friendID})
	}
	s.logger.InfoContext(ctx, "Friend added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// RemoveFriend идемпотентен, но оба пользователя должны существовать.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return fromStore("user", "RemoveFriend", err, ids{user: userID, friend: friendID})
	}
	s.logger.InfoContext(ctx, "Friend removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// Friends возвращает пользователей, на которых подписан userID, по возрастанию ID.
func (s *UserService) Friends(ctx context.Context, userID int64) ([]domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore("user", "Friends", err, ids{user: userID})
	}
	return s.resolve(ctx, "Friends", user.Friends)
}

// CommonFriends возвращает пересечение списков друзей двух пользователей.
func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	const op = "CommonFriends"

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore("user", op, err, ids{user: userID})
	}
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, fromStore("user", op, err, ids{user: otherID})
	}
	return s.resolve(ctx, op, intersect(user.Friends, other.Friends))
}

// resolve загружает пользователей по ID. Висячая ссылка - ошибка NotFound.
func (s *UserService) resolve(ctx context.Context, op string, friendIDs []int64) ([]domain.User, error) {
	friends := make([]domain.User, 0, len(friendIDs))
	for _, id := range friendIDs {
		friend, err := s.users.GetByID(ctx, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "Friend list references a missing user",
				slog.Int64("friendID", id), slog.String("error", err.Error()))
			return nil, fromStore("user", op, err, ids{user: id})
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

// intersect возвращает общие ID по возрастанию.
func intersect(a, b []int64) []int64 {
	inA := make(map[int64]struct{}, len(a))
	for _, id := range a {
		inA[id] = struct{}{}
	}
	common := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, id := range b {
		if _, ok := inA[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		common = append(common, id)
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	return common
}
