package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"filmorate-service/internal/domain"
)

// schema использует подмножество SQL, общее для PostgreSQL и SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name  VARCHAR(32) PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id   BIGINT PRIMARY KEY,
		name VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mpa (
		id   BIGINT PRIMARY KEY,
		name VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS films (
		id           BIGINT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  VARCHAR(200) NOT NULL DEFAULT '',
		release_date DATE NOT NULL,
		duration     INTEGER NOT NULL CHECK (duration > 0),
		mpa_id       BIGINT NOT NULL REFERENCES mpa (id)
	)`,
	`CREATE TABLE IF NOT EXISTS film_genres (
		film_id    BIGINT NOT NULL REFERENCES films (id) ON DELETE CASCADE,
		genre_id   BIGINT NOT NULL REFERENCES genres (id),
		sort_order INTEGER NOT NULL,
		PRIMARY KEY (film_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id       BIGINT PRIMARY KEY,
		email    TEXT NOT NULL,
		login    TEXT NOT NULL,
		name     TEXT NOT NULL,
		birthday DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id   BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		friend_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS film_likes (
		film_id BIGINT NOT NULL REFERENCES films (id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		PRIMARY KEY (film_id, user_id)
	)`,
}

const (
	filmSequence = "films"
	userSequence = "users"
)

// Migrate создает таблицы и заполняет справочники. Повторный запуск безопасен.
func Migrate(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}

		seqQuery := tx.Rebind(`INSERT INTO id_sequences (name, value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`)
		for _, name := range []string{filmSequence, userSequence} {
			if _, err := tx.ExecContext(ctx, seqQuery, name); err != nil {
				return fmt.Errorf("failed to seed sequence %s: %w", name, err)
			}
		}

		genreQuery := tx.Rebind(`INSERT INTO genres (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`)
		for _, g := range domain.DefaultGenres {
			if _, err := tx.ExecContext(ctx, genreQuery, g.ID, g.Name); err != nil {
				return fmt.Errorf("failed to seed genre %d: %w", g.ID, err)
			}
		}

		mpaQuery := tx.Rebind(`INSERT INTO mpa (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`)
		for _, m := range domain.DefaultMpa {
			if _, err := tx.ExecContext(ctx, mpaQuery, m.ID, m.Name); err != nil {
				return fmt.Errorf("failed to seed mpa rating %d: %w", m.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "Database migration failed", slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "Database schema is up to date")
	return nil
}
