package models

import "time"

// User представляет пользователя в системе.
// На клиенте это профиль текущей сессии, на сервере - запись в таблице users.
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	UpdatedAt    time.Time `json:"updated_at"` // время последнего обновления
	Email        string    `json:"email"`      // email, используется как login
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля (только на сервере)
	ID           int64     `json:"id"`         // идентификатор пользователя
	IsActive     bool      `json:"is_active"`  // отключенный пользователь не может войти
}

// Clone возвращает независимую копию пользователя
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
