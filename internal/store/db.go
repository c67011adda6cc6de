package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // регистрирует драйвер "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Поддерживаемые драйверы database/sql.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
)

// DBConfig описывает подключение к базе данных.
type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect открывает пул соединений и проверяет доступность базы.
func Connect(ctx context.Context, cfg DBConfig, logger *slog.Logger) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite допускает одного писателя
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	logger.InfoContext(ctx, "Successfully connected to the database", slog.String("driver", cfg.Driver))
	return db, nil
}

// NewDBStores создает набор хранилищ поверх базы данных. Схема должна быть
// применена заранее через Migrate.
func NewDBStores(db *sqlx.DB, logger *slog.Logger) (*Stores, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &Stores{
		Films:  &DBFilmStore{db: db, logger: logger},
		Users:  &DBUserStore{db: db, logger: logger},
		Genres: &DBGenreStore{db: db, logger: logger},
		Mpa:    &DBMpaStore{db: db, logger: logger},
		ping:   db.PingContext,
		close:  db.Close,
	}, nil
}

// nextID выдает следующий идентификатор последовательности внутри транзакции.
func nextID(ctx context.Context, tx *sqlx.Tx, sequence string) (int64, error) {
	var id int64
	query := tx.Rebind(`UPDATE id_sequences SET value = value + 1 WHERE name = ? RETURNING value`)
	if err := tx.GetContext(ctx, &id, query, sequence); err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", sequence, err)
	}
	return id, nil
}

// resetSequence возвращает последовательность к нулю.
func resetSequence(ctx context.Context, tx *sqlx.Tx, sequence string) error {
	query := tx.Rebind(`UPDATE id_sequences SET value = 0 WHERE name = ?`)
	if _, err := tx.ExecContext(ctx, query, sequence); err != nil {
		return fmt.Errorf("failed to reset %s sequence: %w", sequence, err)
	}
	return nil
}

// withTx выполняет fn в транзакции и откатывает ее при ошибке.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Коды ошибок ограничений PostgreSQL
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgForeignKeyViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
