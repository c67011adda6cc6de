package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteStores(t *testing.T) *Stores {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "filmorate.db") + "?_foreign_keys=on"

	db, err := Connect(ctx, DBConfig{Driver: DriverSQLite, DSN: dsn}, testLogger())
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db, testLogger()))

	stores, err := NewDBStores(db, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

func newPostgresStores(t *testing.T) *Stores {
	t.Helper()
	dsn := os.Getenv("FILMORATE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FILMORATE_TEST_POSTGRES_URL is not set")
	}
	ctx := context.Background()

	db, err := Connect(ctx, DBConfig{Driver: DriverPgx, DSN: dsn}, testLogger())
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db, testLogger()))

	stores, err := NewDBStores(db, testLogger())
	require.NoError(t, err)
	require.NoError(t, stores.Films.DeleteAll(ctx))
	require.NoError(t, stores.Users.DeleteAll(ctx))
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

// forEachBackend прогоняет один и тот же сценарий на всех бэкендах.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Stores)) {
	backends := map[string]func(t *testing.T) *Stores{
		"memory":   func(*testing.T) *Stores { return NewMemoryStores(testLogger()) },
		"sqlite":   newSQLiteStores,
		"postgres": newPostgresStores,
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func sampleFilm(name string, genres ...int64) domain.Film {
	f := domain.Film{
		Name:        name,
		Description: "описание",
		ReleaseDate: domain.NewDate(1999, time.March, 31),
		Duration:    136,
		Mpa:         &domain.Mpa{ID: 4},
	}
	for _, id := range genres {
		f.Genres = append(f.Genres, domain.Genre{ID: id})
	}
	return f
}

func sampleUser(login string) domain.User {
	return domain.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     login,
		Birthday: domain.NewDate(1990, time.January, 1),
	}
}

func TestFilmStore_CreateAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		first, err := s.Films.Create(ctx, sampleFilm("Матрица", 6, 4))
		require.NoError(t, err)
		second, err := s.Films.Create(ctx, sampleFilm("Шрек", 3))
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.Equal(t, "R", first.Mpa.Name)
		assert.Equal(t, []domain.Genre{{ID: 6, Name: "Боевик"}, {ID: 4, Name: "Триллер"}}, first.Genres)
		assert.Empty(t, first.Likes)

		got, err := s.Films.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		assert.Equal(t, domain.NewDate(1999, time.March, 31), got.ReleaseDate)

		list, err := s.Films.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Матрица", list[0].Name)
		assert.Equal(t, "Шрек", list[1].Name)
	})
}

func TestFilmStore_CreateRejectsUnknownReferences(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		bad := sampleFilm("Без рейтинга")
		bad.Mpa = &domain.Mpa{ID: 99}
		_, err := s.Films.Create(ctx, bad)
		assert.ErrorIs(t, err, ErrMpaNotFound)

		_, err = s.Films.Create(ctx, sampleFilm("Неизвестный жанр", 1, 42))
		assert.ErrorIs(t, err, ErrGenreNotFound)

		list, err := s.Films.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestFilmStore_GetMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		_, err := s.Films.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrFilmNotFound)

		ok, err := s.Films.Exists(context.Background(), 404)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFilmStore_UpdateKeepsLikes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		film, err := s.Films.Create(ctx, sampleFilm("Старое", 1, 2))
		require.NoError(t, err)
		user, err := s.Users.Create(ctx, sampleUser("fan"))
		require.NoError(t, err)
		require.NoError(t, s.Films.AddLike(ctx, film.ID, user.ID))

		film.Name = "Новое"
		film.Mpa = &domain.Mpa{ID: 1}
		film.Genres = []domain.Genre{{ID: 5}}
		film.Likes = nil
		updated, err := s.Films.Update(ctx, film)
		require.NoError(t, err)

		assert.Equal(t, "Новое", updated.Name)
		assert.Equal(t, "G", updated.Mpa.Name)
		assert.Equal(t, []domain.Genre{{ID: 5, Name: "Документальный"}}, updated.Genres)
		assert.Equal(t, []int64{user.ID}, updated.Likes)
	})
}

func TestFilmStore_UpdateMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		f := sampleFilm("Призрак")
		f.ID = 77
		_, err := s.Films.Update(context.Background(), f)
		assert.ErrorIs(t, err, ErrFilmNotFound)
	})
}

func TestFilmStore_Likes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		film, err := s.Films.Create(ctx, sampleFilm("Популярный"))
		require.NoError(t, err)
		u1, err := s.Users.Create(ctx, sampleUser("u1"))
		require.NoError(t, err)
		u2, err := s.Users.Create(ctx, sampleUser("u2"))
		require.NoError(t, err)

		require.NoError(t, s.Films.AddLike(ctx, film.ID, u2.ID))
		require.NoError(t, s.Films.AddLike(ctx, film.ID, u1.ID))
		require.NoError(t, s.Films.AddLike(ctx, film.ID, u1.ID))

		got, err := s.Films.GetByID(ctx, film.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{u1.ID, u2.ID}, got.Likes)

		assert.ErrorIs(t, s.Films.AddLike(ctx, film.ID, 999), ErrUserNotFound)
		assert.ErrorIs(t, s.Films.AddLike(ctx, 999, u1.ID), ErrFilmNotFound)
		assert.ErrorIs(t, s.Films.RemoveLike(ctx, 999, u1.ID), ErrFilmNotFound)

		require.NoError(t, s.Films.RemoveLike(ctx, film.ID, u2.ID))
		require.NoError(t, s.Films.RemoveLike(ctx, film.ID, u2.ID))

		got, err = s.Films.GetByID(ctx, film.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{u1.ID}, got.Likes)
	})
}

func TestFilmStore_DeleteAllResetsIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		_, err := s.Films.Create(ctx, sampleFilm("Раз", 1))
		require.NoError(t, err)
		_, err = s.Films.Create(ctx, sampleFilm("Два"))
		require.NoError(t, err)

		require.NoError(t, s.Films.DeleteAll(ctx))
		list, err := s.Films.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		again, err := s.Films.Create(ctx, sampleFilm("Снова"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), again.ID)
	})
}

func TestFilmStore_ReturnsCopies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		film, err := s.Films.Create(ctx, sampleFilm("Оригинал", 2))
		require.NoError(t, err)
		film.Name = "Изменено снаружи"
		film.Genres[0].ID = 3
		film.Mpa.ID = 1

		got, err := s.Films.GetByID(ctx, film.ID)
		require.NoError(t, err)
		assert.Equal(t, "Оригинал", got.Name)
		assert.Equal(t, int64(2), got.Genres[0].ID)
		assert.Equal(t, int64(4), got.Mpa.ID)
	})
}

func TestUserStore_CreateUpdateGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		user, err := s.Users.Create(ctx, sampleUser("neo"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Empty(t, user.Friends)

		user.Name = "Thomas Anderson"
		user.Email = "neo@matrix.io"
		updated, err := s.Users.Update(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "Thomas Anderson", updated.Name)

		got, err := s.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
		assert.Equal(t, domain.NewDate(1990, time.January, 1), got.Birthday)

		_, err = s.Users.GetByID(ctx, 404)
		assert.ErrorIs(t, err, ErrUserNotFound)

		ghost := sampleUser("ghost")
		ghost.ID = 404
		_, err = s.Users.Update(ctx, ghost)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserStore_FriendsAreOneDirectional(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		a, err := s.Users.Create(ctx, sampleUser("a"))
		require.NoError(t, err)
		b, err := s.Users.Create(ctx, sampleUser("b"))
		require.NoError(t, err)
		c, err := s.Users.Create(ctx, sampleUser("c"))
		require.NoError(t, err)

		require.NoError(t, s.Users.AddFriend(ctx, a.ID, c.ID))
		require.NoError(t, s.Users.AddFriend(ctx, a.ID, b.ID))
		require.NoError(t, s.Users.AddFriend(ctx, a.ID, b.ID))

		gotA, err := s.Users.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID, c.ID}, gotA.Friends)

		gotB, err := s.Users.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, gotB.Friends)

		assert.ErrorIs(t, s.Users.AddFriend(ctx, a.ID, 999), ErrUserNotFound)
		assert.ErrorIs(t, s.Users.AddFriend(ctx, 999, a.ID), ErrUserNotFound)
		assert.ErrorIs(t, s.Users.RemoveFriend(ctx, a.ID, 999), ErrUserNotFound)

		require.NoError(t, s.Users.RemoveFriend(ctx, a.ID, c.ID))
		require.NoError(t, s.Users.RemoveFriend(ctx, b.ID, a.ID))

		users, err := s.Users.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, []int64{b.ID}, users[0].Friends)
	})
}

func TestUserStore_UpdateKeepsFriends(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		a, err := s.Users.Create(ctx, sampleUser("a"))
		require.NoError(t, err)
		b, err := s.Users.Create(ctx, sampleUser("b"))
		require.NoError(t, err)
		require.NoError(t, s.Users.AddFriend(ctx, a.ID, b.ID))

		a.Friends = nil
		a.Login = "alpha"
		updated, err := s.Users.Update(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID}, updated.Friends)
	})
}

func TestUserStore_DeleteAllDropsLikesAndFriends(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		film, err := s.Films.Create(ctx, sampleFilm("Любимый"))
		require.NoError(t, err)
		a, err := s.Users.Create(ctx, sampleUser("a"))
		require.NoError(t, err)
		b, err := s.Users.Create(ctx, sampleUser("b"))
		require.NoError(t, err)
		require.NoError(t, s.Users.AddFriend(ctx, a.ID, b.ID))
		require.NoError(t, s.Films.AddLike(ctx, film.ID, a.ID))

		require.NoError(t, s.Users.DeleteAll(ctx))

		users, err := s.Users.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		got, err := s.Films.GetByID(ctx, film.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Likes)

		fresh, err := s.Users.Create(ctx, sampleUser("fresh"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), fresh.ID)
		assert.Empty(t, fresh.Friends)
	})
}

func TestCatalogStores(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		genres, err := s.Genres.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultGenres, genres)

		ratings, err := s.Mpa.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMpa, ratings)

		g, err := s.Genres.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Драма", g.Name)

		_, err = s.Genres.GetByID(ctx, 100)
		assert.ErrorIs(t, err, ErrGenreNotFound)

		m, err := s.Mpa.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "PG-13", m.Name)

		_, err = s.Mpa.GetByID(ctx, 100)
		assert.ErrorIs(t, err, ErrMpaNotFound)

		require.NoError(t, s.Ping(ctx))
	})
}

func TestConnect_RejectsUnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), DBConfig{Driver: "mysql"}, testLogger())
	assert.Error(t, err)
}
