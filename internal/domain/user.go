package domain

// User представляет модель пользователя.
type User struct {
	ID       int64   `json:"id" db:"id"`
	Email    string  `json:"email" db:"email" validate:"notblank,email"`
	Login    string  `json:"login" db:"login" validate:"notblank,nowhitespace"`
	Name     string  `json:"name" db:"name"`
	Birthday Date    `json:"birthday" db:"birthday" validate:"required,past"`
	Friends  []int64 `json:"friends" db:"-"` // на кого подписан пользователь
}

// UserUpdate - тело частичного обновления пользователя.
type UserUpdate struct {
	ID       int64   `json:"id"`
	Email    *string `json:"email,omitempty"`
	Login    *string `json:"login,omitempty"`
	Name     *string `json:"name,omitempty"`
	Birthday *Date   `json:"birthday,omitempty"`
}

// Clone возвращает копию пользователя с собственным списком друзей.
func (u User) Clone() User {
	c := u
	c.Friends = append([]int64{}, u.Friends...)
	return c
}
