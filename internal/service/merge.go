package service

import (
	"context"
	"strings"

	"filmorate-service/internal/domain"
)

// Merger накладывает частичное обновление на текущее значение. Поле
// применяется, только если оно передано и само по себе проходит проверку;
// невалидные поля пропускаются без ошибки.
type Merger struct {
	validate *Validator
}

func NewMerger(v *Validator) *Merger {
	return &Merger{validate: v}
}

// apply проверяет поле на кандидате и возвращает кандидата при успехе.
func apply[T any](ctx context.Context, m *Merger, current T, field string, set func(*T), skipped *[]string) T {
	candidate := current
	set(&candidate)
	if err := m.validate.Fields(ctx, candidate, field); err != nil {
		*skipped = append(*skipped, field)
		return current
	}
	return candidate
}

// MergeFilm возвращает новый фильм и список пропущенных полей. Рейтинг и жанры
// здесь не трогаются: их заменяет сервис после проверки справочников.
func (m *Merger) MergeFilm(ctx context.Context, current domain.Film, upd domain.FilmUpdate) (domain.Film, []string) {
	var skipped []string
	film := current.Clone()

	if upd.Name != nil {
		film = apply(ctx, m, film, "Name", func(f *domain.Film) { f.Name = *upd.Name }, &skipped)
	}
	if upd.Description != nil {
		film = apply(ctx, m, film, "Description", func(f *domain.Film) { f.Description = *upd.Description }, &skipped)
	}
	if upd.ReleaseDate != nil {
		film = apply(ctx, m, film, "ReleaseDate", func(f *domain.Film) { f.ReleaseDate = *upd.ReleaseDate }, &skipped)
	}
	if upd.Duration != nil {
		film = apply(ctx, m, film, "Duration", func(f *domain.Film) { f.Duration = *upd.Duration }, &skipped)
	}
	return film, skipped
}

// MergeUser работает так же, как MergeFilm. Переданное пустое имя
// заменяется логином, как при создании.
func (m *Merger) MergeUser(ctx context.Context, current domain.User, upd domain.UserUpdate) (domain.User, []string) {
	var skipped []string
	user := current.Clone()

	if upd.Email != nil {
		user = apply(ctx, m, user, "Email", func(u *domain.User) { u.Email = *upd.Email }, &skipped)
	}
	if upd.Login != nil {
		user = apply(ctx, m, user, "Login", func(u *domain.User) { u.Login = *upd.Login }, &skipped)
	}
	if upd.Birthday != nil {
		user = apply(ctx, m, user, "Birthday", func(u *domain.User) { u.Birthday = *upd.Birthday }, &skipped)
	}
	if upd.Name != nil {
		user.Name = *upd.Name
		if strings.TrimSpace(user.Name) == "" {
			user.Name = user.Login
		}
	}
	return user, skipped
}
