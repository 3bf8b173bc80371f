package api

import "github.com/iudanet/metareview/internal/models"

// ProjectCreateRequest представляет запрос на создание проекта
type ProjectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProjectUpdateRequest представляет частичное обновление проекта.
// nil поля не изменяются.
type ProjectUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PaperSearchResponse представляет результат поиска статей
type PaperSearchResponse struct {
	Query   string         `json:"query"`
	Results []models.Paper `json:"results"`
	Total   int            `json:"total"`
}
