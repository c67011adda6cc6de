package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

type fixture struct {
	films   *FilmService
	users   *UserService
	catalog *CatalogService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores := store.NewMemoryStores(logger)
	v := NewValidator()
	return fixture{
		films:   NewFilmService(stores, v, logger),
		users:   NewUserService(stores, v, logger),
		catalog: NewCatalogService(stores),
	}
}

func validFilm(name string) domain.Film {
	return domain.Film{
		Name:        name,
		Description: "описание",
		ReleaseDate: domain.NewDate(2001, time.May, 18),
		Duration:    90,
		Mpa:         &domain.Mpa{ID: 1},
	}
}

func validUser(login string) domain.User {
	return domain.User{
		Email:    login + "@x.com",
		Login:    login,
		Birthday: domain.NewDate(1990, time.January, 1),
	}
}

func ptr[T any](v T) *T { return &v }

func (f fixture) mustFilm(t *testing.T, name string) domain.Film {
	t.Helper()
	film, err := f.films.Create(context.Background(), validFilm(name))
	require.NoError(t, err)
	return film
}

func (f fixture) mustUser(t *testing.T, login string) domain.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), validUser(login))
	require.NoError(t, err)
	return user
}

func TestFilmService_CreateAssignsFreshIDs(t *testing.T) {
	f := newFixture(t)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		film := validFilm("Фильм")
		film.ID = 42
		created, err := f.films.Create(context.Background(), film)
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.False(t, seen[created.ID], "id %d issued twice", created.ID)
		seen[created.ID] = true
	}
}

func TestFilmService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.Film)
	}{
		{"blank name", func(film *domain.Film) { film.Name = "   " }},
		{"long description", func(film *domain.Film) { film.Description = strings.Repeat("ы", 201) }},
		{"before cinema era", func(film *domain.Film) { film.ReleaseDate = domain.NewDate(1895, time.December, 27) }},
		{"missing release date", func(film *domain.Film) { film.ReleaseDate = domain.Date{} }},
		{"zero duration", func(film *domain.Film) { film.Duration = 0 }},
		{"negative duration", func(film *domain.Film) { film.Duration = -1 }},
		{"missing mpa", func(film *domain.Film) { film.Mpa = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			film := validFilm("Фильм")
			tt.mutate(&film)
			_, err := f.films.Create(ctx, film)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	films, err := f.films.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, films)
}

func TestFilmService_CreateBoundaryValues(t *testing.T) {
	f := newFixture(t)

	film := validFilm("Прибытие поезда")
	film.ReleaseDate = domain.CinemaBirthday
	film.Description = strings.Repeat("ж", 200)
	film.Duration = 1
	_, err := f.films.Create(context.Background(), film)
	assert.NoError(t, err)
}

func TestFilmService_CreateUnknownMpaLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustFilm(t, "Первый")

	film := validFilm("С плохим рейтингом")
	film.Mpa = &domain.Mpa{ID: 99}
	_, err := f.films.Create(ctx, film)
	assert.ErrorIs(t, err, ErrNotFound)

	film = validFilm("С плохим жанром")
	film.Genres = []domain.Genre{{ID: 1}, {ID: 77}}
	_, err = f.films.Create(ctx, film)
	assert.ErrorIs(t, err, ErrNotFound)

	films, err := f.films.List(ctx)
	require.NoError(t, err)
	assert.Len(t, films, 1)
}

func TestFilmService_CreateDeduplicatesGenres(t *testing.T) {
	f := newFixture(t)

	film := validFilm("Жанры")
	film.Genres = []domain.Genre{{ID: 2}, {ID: 1}, {ID: 2}}
	created, err := f.films.Create(context.Background(), film)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 2, Name: "Драма"}, {ID: 1, Name: "Комедия"}}, created.Genres)
	assert.Equal(t, "G", created.Mpa.Name)
}

func TestFilmService_PartialUpdateSkipsInvalidFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	film := f.mustFilm(t, "Старое имя")

	updated, err := f.films.Update(ctx, domain.FilmUpdate{
		ID:       film.ID,
		Name:     ptr("Новое имя"),
		Duration: ptr(-5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", updated.Name)
	assert.Equal(t, 90, updated.Duration)

	updated, err = f.films.Update(ctx, domain.FilmUpdate{
		ID:          film.ID,
		Name:        ptr(" "),
		ReleaseDate: ptr(domain.NewDate(1800, time.January, 1)),
		Description: ptr("новое описание"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", updated.Name)
	assert.Equal(t, film.ReleaseDate, updated.ReleaseDate)
	assert.Equal(t, "новое описание", updated.Description)
}

func TestFilmService_UpdateReplacesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	film := validFilm("Жанры")
	film.Genres = []domain.Genre{{ID: 1}}
	created, err := f.films.Create(ctx, film)
	require.NoError(t, err)

	// без mpa и genres в запросе они не меняются
	updated, err := f.films.Update(ctx, domain.FilmUpdate{ID: created.ID, Name: ptr("Другое")})
	require.NoError(t, err)
	assert.Equal(t, created.Genres, updated.Genres)
	assert.Equal(t, created.Mpa, updated.Mpa)

	updated, err = f.films.Update(ctx, domain.FilmUpdate{
		ID:     created.ID,
		Mpa:    &domain.Mpa{ID: 5},
		Genres: &[]domain.Genre{{ID: 3}, {ID: 3}, {ID: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NC-17", updated.Mpa.Name)
	assert.Equal(t, []int64{3, 4}, updated.GenreIDs())

	updated, err = f.films.Update(ctx, domain.FilmUpdate{ID: created.ID, Genres: &[]domain.Genre{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Genres)

	_, err = f.films.Update(ctx, domain.FilmUpdate{ID: created.ID, Mpa: &domain.Mpa{ID: 6}})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.films.Update(ctx, domain.FilmUpdate{ID: created.ID, Genres: &[]domain.Genre{{ID: 60}}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilmService_UpdateRequiresID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.films.Update(ctx, domain.FilmUpdate{Name: ptr("Без ID")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.films.Update(ctx, domain.FilmUpdate{ID: 404, Name: ptr("Нет такого")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilmService_LikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	film := f.mustFilm(t, "Лайки")
	user := f.mustUser(t, "fan")

	before, err := f.films.GetByID(ctx, film.ID)
	require.NoError(t, err)

	require.NoError(t, f.films.AddLike(ctx, film.ID, user.ID))
	require.NoError(t, f.films.AddLike(ctx, film.ID, user.ID))
	liked, err := f.films.GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{user.ID}, liked.Likes)

	require.NoError(t, f.films.RemoveLike(ctx, film.ID, user.ID))
	after, err := f.films.GetByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFilmService_LikeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	film := f.mustFilm(t, "Лайки")
	user := f.mustUser(t, "fan")

	assert.ErrorIs(t, f.films.AddLike(ctx, film.ID, 999), ErrNotFound)
	assert.ErrorIs(t, f.films.AddLike(ctx, 999, user.ID), ErrNotFound)
	assert.ErrorIs(t, f.films.RemoveLike(ctx, 999, user.ID), ErrNotFound)
	// лайк несуществующего пользователя удаляется без ошибки
	assert.NoError(t, f.films.RemoveLike(ctx, film.ID, 999))
}

func TestFilmService_Popular(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustFilm(t, "A")
	b := f.mustFilm(t, "B")
	c := f.mustFilm(t, "C")
	d := f.mustFilm(t, "D")
	u1 := f.mustUser(t, "u1")
	u2 := f.mustUser(t, "u2")

	require.NoError(t, f.films.AddLike(ctx, c.ID, u1.ID))
	require.NoError(t, f.films.AddLike(ctx, c.ID, u2.ID))
	require.NoError(t, f.films.AddLike(ctx, d.ID, u1.ID))
	require.NoError(t, f.films.AddLike(ctx, b.ID, u2.ID))

	top, err := f.films.Popular(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, b.ID, d.ID, a.ID}, filmIDs(top))

	top, err = f.films.Popular(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, b.ID}, filmIDs(top))

	again, err := f.films.Popular(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, top, again)

	all, err := f.films.Popular(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func filmIDs(films []domain.Film) []int64 {
	out := make([]int64, 0, len(films))
	for _, film := range films {
		out = append(out, film.ID)
	}
	return out
}

func TestRankByLikes_DefaultCountAndInputUntouched(t *testing.T) {
	var films []domain.Film
	for i := int64(1); i <= 12; i++ {
		films = append(films, domain.Film{ID: i, Likes: make([]int64, i%3)})
	}

	ranked := RankByLikes(films, -1)
	require.Len(t, ranked, DefaultPopularCount)
	assert.Equal(t, []int64{2, 5, 8, 11, 1, 4, 7, 10, 3, 6}, filmIDs(ranked))
	assert.Equal(t, int64(1), films[0].ID)
}

func TestUserService_CreateDefaultsNameToLogin(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.Create(context.Background(), domain.User{
		Email:    "a@x.com",
		Login:    "alice",
		Birthday: domain.NewDate(1990, time.January, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)

	blank := validUser("bob")
	blank.Name = "  "
	user, err = f.users.Create(context.Background(), blank)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Name)
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*domain.User)
	}{
		{"blank email", func(u *domain.User) { u.Email = "" }},
		{"bad email", func(u *domain.User) { u.Email = "not-an-email" }},
		{"blank login", func(u *domain.User) { u.Login = " " }},
		{"login with space", func(u *domain.User) { u.Login = "dolore ullamco" }},
		{"future birthday", func(u *domain.User) { u.Birthday = domain.Date{Time: domain.Today().AddDate(0, 0, 1)} }},
		{"missing birthday", func(u *domain.User) { u.Birthday = domain.Date{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := validUser("user")
			tt.mutate(&user)
			_, err := f.users.Create(context.Background(), user)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.mustUser(t, "neo")

	updated, err := f.users.Update(ctx, domain.UserUpdate{
		ID:       user.ID,
		Email:    ptr("broken"),
		Login:    ptr("thomas"),
		Birthday: ptr(domain.Date{Time: domain.Today().AddDate(0, 0, 10)}),
	})
	require.NoError(t, err)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, "thomas", updated.Login)
	assert.Equal(t, user.Birthday, updated.Birthday)
	assert.Equal(t, "neo", updated.Name)

	updated, err = f.users.Update(ctx, domain.UserUpdate{ID: user.ID, Name: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "thomas", updated.Name)

	_, err = f.users.Update(ctx, domain.UserUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.users.Update(ctx, domain.UserUpdate{ID: 404, Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DeleteAllResetsIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustUser(t, "a")
	f.mustUser(t, "b")

	require.NoError(t, f.users.DeleteAll(ctx))
	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	next := f.mustUser(t, "c")
	assert.Equal(t, int64(1), next.ID)
}

func TestUserService_FriendsAreOneDirectional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustUser(t, "a")
	b := f.mustUser(t, "b")

	require.NoError(t, f.users.AddFriend(ctx, a.ID, b.ID))

	friendsA, err := f.users.Friends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friendsA, 1)
	assert.Equal(t, b.ID, friendsA[0].ID)
	assert.Equal(t, "b", friendsA[0].Login)

	friendsB, err := f.users.Friends(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, friendsB)

	require.NoError(t, f.users.RemoveFriend(ctx, a.ID, b.ID))
	require.NoError(t, f.users.RemoveFriend(ctx, a.ID, b.ID))
	friendsA, err = f.users.Friends(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, friendsA)
}

func TestUserService_FriendErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustUser(t, "a")

	assert.ErrorIs(t, f.users.AddFriend(ctx, a.ID, 999), ErrNotFound)
	assert.ErrorIs(t, f.users.AddFriend(ctx, 999, a.ID), ErrNotFound)
	assert.ErrorIs(t, f.users.RemoveFriend(ctx, a.ID, 999), ErrNotFound)

	_, err := f.users.Friends(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.CommonFriends(ctx, a.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_CommonFriends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustUser(t, "a")
	b := f.mustUser(t, "b")
	c := f.mustUser(t, "c")
	d := f.mustUser(t, "d")
	e := f.mustUser(t, "e")

	for _, id := range []int64{e.ID, c.ID, d.ID} {
		require.NoError(t, f.users.AddFriend(ctx, a.ID, id))
	}
	for _, id := range []int64{c.ID, e.ID} {
		require.NoError(t, f.users.AddFriend(ctx, b.ID, id))
	}

	common, err := f.users.CommonFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, e.ID}, userIDs(common))

	common, err = f.users.CommonFriends(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, common)
}

func userIDs(users []domain.User) []int64 {
	out := make([]int64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestCatalogService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genres, err := f.catalog.Genres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, len(domain.DefaultGenres))

	g, err := f.catalog.Genre(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Мультфильм", g.Name)

	_, err = f.catalog.Genre(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := f.catalog.Mpa(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "PG", m.Name)

	_, err = f.catalog.Mpa(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
