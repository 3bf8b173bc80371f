package models

import "time"

// Paper представляет научную статью (найденную поиском или загруженную PDF)
type Paper struct {
	CreatedAt  time.Time `json:"created_at"`
	ProjectID  *int64    `json:"project_id,omitempty"` // проект, в который загружена статья
	Title      string    `json:"title"`
	Authors    string    `json:"authors,omitempty"`
	DOI        string    `json:"doi,omitempty"`
	Abstract   string    `json:"abstract,omitempty"`
	FileName   string    `json:"file_name,omitempty"` // исходное имя загруженного файла
	StoredAs   string    `json:"-"`                   // имя файла на диске сервера
	ID         int64     `json:"id"`
	UploadedBy int64     `json:"-"` // пользователь, загрузивший файл (0 для найденных статей)
	Year       int       `json:"year,omitempty"`
	FileSize   int64     `json:"file_size,omitempty"`
}
