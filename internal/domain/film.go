package domain

import "time"

// CinemaBirthday - дата первого киносеанса. Релиз не может быть раньше неё.
var CinemaBirthday = NewDate(1895, time.December, 28)

// Film представляет основную доменную модель фильма.
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate" validate:"required,cinemaera"`
	Duration    int     `json:"duration" validate:"gt=0"`
	Mpa         *Mpa    `json:"mpa" validate:"required"`
	Genres      []Genre `json:"genres"`
	Likes       []int64 `json:"likes"` // ID пользователей, по возрастанию
}

// FilmUpdate - тело частичного обновления фильма. nil означает, что поле не передано.
type FilmUpdate struct {
	ID          int64    `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	ReleaseDate *Date    `json:"releaseDate,omitempty"`
	Duration    *int     `json:"duration,omitempty"`
	Mpa         *Mpa     `json:"mpa,omitempty"`
	Genres      *[]Genre `json:"genres,omitempty"`
}

// Clone возвращает копию фильма, не разделяющую слайсы и указатели с оригиналом.
func (f Film) Clone() Film {
	c := f
	if f.Mpa != nil {
		mpa := *f.Mpa
		c.Mpa = &mpa
	}
	c.Genres = append([]Genre{}, f.Genres...)
	c.Likes = append([]int64{}, f.Likes...)
	return c
}

// LikeCount возвращает число лайков фильма.
func (f Film) LikeCount() int {
	return len(f.Likes)
}

// GenreIDs возвращает ID жанров в порядке добавления.
func (f Film) GenreIDs() []int64 {
	ids := make([]int64, 0, len(f.Genres))
	for _, g := range f.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}
