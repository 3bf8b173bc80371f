package storage

import (
	"context"

	"github.com/iudanet/metareview/internal/models"
)

// PaperStorage defines interface for paper persistence
type PaperStorage interface {
	// CreatePaper stores paper metadata and sets its ID
	CreatePaper(ctx context.Context, paper *models.Paper) error

	// GetPaper retrieves a paper by ID
	GetPaper(ctx context.Context, paperID int64) (*models.Paper, error)

	// SearchPapers finds papers whose title, authors or abstract contain query
	SearchPapers(ctx context.Context, query string, limit int) ([]models.Paper, error)
}
