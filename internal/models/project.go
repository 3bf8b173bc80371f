package models

import (
	"strconv"
	"time"
)

// Project представляет исследовательский проект пользователя
type Project struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	PaperCount  int       `json:"paper_count"`
}

// Clone возвращает независимую копию проекта
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Pointer возвращает ссылку на проект, которая сохраняется локально
func (p *Project) Pointer() ProjectPointer {
	return ProjectPointer{ID: p.ID, Name: p.Name}
}

// ProjectPointer - сохраняемая ссылка на активный проект.
// Полный объект проекта в локальном хранилище не хранится.
type ProjectPointer struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// IDString возвращает id в том виде, в котором он хранится
func (p ProjectPointer) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}
