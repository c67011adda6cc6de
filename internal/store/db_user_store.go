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

// DBUserStore реализует UserStore поверх PostgreSQL или SQLite.
type DBUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

type friendshipRow struct {
	UserID   int64 `db:"user_id"`
	FriendID int64 `db:"friend_id"`
}

const selectUsers = `SELECT id, email, login, name, birthday FROM users`

func (s *DBUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var id int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = nextID(ctx, tx, userSequence)
		if err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "Executing Create user query", slog.Int64("userID", id), slog.String("login", user.Login))
		query := tx.Rebind(`INSERT INTO users (id, email, login, name, birthday) VALUES (?, ?, ?, ?, ?)`)
		_, err = tx.ExecContext(ctx, query, id, user.Email, user.Login, user.Name, user.Birthday)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "User id already taken", slog.String("error", err.Error()))
			return domain.User{}, ErrIDConflict
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", id))
	return s.GetByID(ctx, id)
}

func (s *DBUserStore) Update(ctx context.Context, user domain.User) (domain.User, error) {
	query := s.db.Rebind(`UPDATE users SET email = ?, login = ?, name = ?, birthday = ? WHERE id = ?`)
	s.logger.DebugContext(ctx, "Executing Update user query", slog.Int64("userID", user.ID))
	res, err := s.db.ExecContext(ctx, query, user.Email, user.Login, user.Name, user.Birthday, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.String("error", err.Error()))
		return domain.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		s.logger.WarnContext(ctx, "User not found for update in DB", slog.Int64("userID", user.ID))
		return domain.User{}, ErrUserNotFound
	}

	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return s.GetByID(ctx, user.ID)
}

func (s *DBUserStore) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", id))
	err := s.db.GetContext(ctx, &user, s.db.Rebind(selectUsers+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", id))
			return domain.User{}, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return domain.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	user.Friends = []int64{}
	if err := s.db.SelectContext(ctx, &user.Friends,
		s.db.Rebind(`SELECT friend_id FROM friendships WHERE user_id = ? ORDER BY friend_id`), id); err != nil {
		return domain.User{}, fmt.Errorf("failed to load friends: %w", err)
	}
	return user, nil
}

func (s *DBUserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	s.logger.DebugContext(ctx, "Executing List users query")
	if err := s.db.SelectContext(ctx, &users, selectUsers+` ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return []domain.User{}, nil
	}

	index := make(map[int64]int, len(users))
	for i := range users {
		users[i].Friends = []int64{}
		index[users[i].ID] = i
	}

	var edges []friendshipRow
	if err := s.db.SelectContext(ctx, &edges,
		`SELECT user_id, friend_id FROM friendships ORDER BY user_id, friend_id`); err != nil {
		return nil, fmt.Errorf("failed to load friendships: %w", err)
	}
	for _, e := range edges {
		if i, ok := index[e.UserID]; ok {
			users[i].Friends = append(users[i].Friends, e.FriendID)
		}
	}
	return users, nil
}

func (s *DBUserStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

// DeleteAll удаляет пользователей, их лайки и дружбу и сбрасывает последовательность ID.
func (s *DBUserStore) DeleteAll(ctx context.Context) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM film_likes`,
			`DELETE FROM friendships`,
			`DELETE FROM users`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return resetSequence(ctx, tx, userSequence)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete users from DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete users: %w", err)
	}
	s.logger.InfoContext(ctx, "All users deleted from DB")
	return nil
}

// AddFriend добавляет однонаправленную связь userID -> friendID.
func (s *DBUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}
	query := s.db.Rebind(`INSERT INTO friendships (user_id, friend_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, userID, friendID); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to add friend in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add friend: %w", err)
	}
	s.logger.DebugContext(ctx, "Friendship stored in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *DBUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}
	query := s.db.Rebind(`DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friend in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	s.logger.DebugContext(ctx, "Friendship removed in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *DBUserStore) requireUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		ok, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	return nil
}
