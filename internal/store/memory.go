package store

import (
	"log/slog"
	"sort"
	"sync"

	"filmorate-service/internal/domain"
)

// memoryDB - общее состояние in-memory бэкенда. Один мьютекс защищает все
// четыре набора записей, поэтому связи между фильмами и пользователями
// проверяются и изменяются атомарно.
type memoryDB struct {
	mu         sync.RWMutex
	films      map[int64]*memoryFilm
	users      map[int64]*memoryUser
	genres     map[int64]domain.Genre
	mpa        map[int64]domain.Mpa
	lastFilmID int64
	lastUserID int64
}

type memoryFilm struct {
	film  domain.Film // без лайков, жанры и рейтинг только с ID
	likes map[int64]struct{}
}

type memoryUser struct {
	user    domain.User // без друзей
	friends map[int64]struct{}
}

// NewMemoryStores создает набор хранилищ, живущих в памяти процесса.
// Справочники жанров и рейтингов заполняются значениями по умолчанию.
func NewMemoryStores(logger *slog.Logger) *Stores {
	db := &memoryDB{
		films:  make(map[int64]*memoryFilm),
		users:  make(map[int64]*memoryUser),
		genres: make(map[int64]domain.Genre),
		mpa:    make(map[int64]domain.Mpa),
	}
	for _, g := range domain.DefaultGenres {
		db.genres[g.ID] = g
	}
	for _, m := range domain.DefaultMpa {
		db.mpa[m.ID] = m
	}

	return &Stores{
		Films:  &MemoryFilmStore{db: db, logger: logger},
		Users:  &MemoryUserStore{db: db, logger: logger},
		Genres: &MemoryGenreStore{db: db},
		Mpa:    &MemoryMpaStore{db: db},
	}
}

// checkRefs проверяет, что рейтинг и жанры фильма существуют. Вызывать под блокировкой.
func (db *memoryDB) checkRefs(film domain.Film) error {
	if film.Mpa == nil {
		return ErrMpaNotFound
	}
	if _, ok := db.mpa[film.Mpa.ID]; !ok {
		return ErrMpaNotFound
	}
	for _, g := range film.Genres {
		if _, ok := db.genres[g.ID]; !ok {
			return ErrGenreNotFound
		}
	}
	return nil
}

// projectFilm собирает снимок фильма: имена из справочников и отсортированные лайки.
func (db *memoryDB) projectFilm(rec *memoryFilm) domain.Film {
	film := rec.film.Clone()
	if film.Mpa != nil {
		if m, ok := db.mpa[film.Mpa.ID]; ok {
			film.Mpa = &m
		}
	}
	for i, g := range film.Genres {
		if full, ok := db.genres[g.ID]; ok {
			film.Genres[i] = full
		}
	}
	film.Likes = sortedIDs(rec.likes)
	return film
}

func (db *memoryDB) projectUser(rec *memoryUser) domain.User {
	user := rec.user.Clone()
	user.Friends = sortedIDs(rec.friends)
	return user
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
