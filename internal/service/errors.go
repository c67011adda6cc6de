package service

import (
	"errors"
	"fmt"

	"filmorate-service/internal/store"
)

// Базовые виды ошибок сервиса. Проверяются через errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Error - ошибка операции сервиса с контекстом.
type Error struct {
	Entity  string // "film", "user", "genre", "mpa"
	Op      string // операция, например "Create"
	Kind    error  // ErrNotFound, ErrValidation или ErrConflict
	Message string // сообщение для клиента
	Err     error  // исходная ошибка, может отсутствовать
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Entity, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func notFound(entity, op, format string, args ...any) *Error {
	return &Error{Entity: entity, Op: op, Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalid(entity, op, message string, err error) *Error {
	return &Error{Entity: entity, Op: op, Kind: ErrValidation, Message: message, Err: err}
}

// ids - идентификаторы участников операции для текста ошибки.
type ids struct {
	film, user, friend int64
}

// fromStore переводит ошибку хранилища в ошибку сервиса. Неизвестные ошибки
// оборачиваются без вида и приводят к внутренней ошибке на транспорте.
func fromStore(entity, op string, err error, ref ids) error {
	switch {
	case errors.Is(err, store.ErrFilmNotFound):
		return &Error{Entity: entity, Op: op, Kind: ErrNotFound,
			Message: fmt.Sprintf("film with id %d not found", ref.film), Err: err}
	case errors.Is(err, store.ErrUserNotFound):
		msg := fmt.Sprintf("user with id %d not found", ref.user)
		if ref.friend != 0 {
			msg = fmt.Sprintf("user with id %d or %d not found", ref.user, ref.friend)
		}
		return &Error{Entity: entity, Op: op, Kind: ErrNotFound, Message: msg, Err: err}
	case errors.Is(err, store.ErrGenreNotFound):
		return &Error{Entity: entity, Op: op, Kind: ErrNotFound, Message: "genre not found", Err: err}
	case errors.Is(err, store.ErrMpaNotFound):
		return &Error{Entity: entity, Op: op, Kind: ErrNotFound, Message: "mpa rating not found", Err: err}
	case errors.Is(err, store.ErrIDConflict):
		return &Error{Entity: entity, Op: op, Kind: ErrConflict, Message: "identifier is already in use", Err: err}
	}
	return fmt.Errorf("%s.%s: %w", entity, op, err)
}
