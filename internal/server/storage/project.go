package storage

import (
	"context"

	"github.com/iudanet/metareview/internal/models"
)

// ProjectStorage defines interface for project persistence.
// Every lookup is scoped to the owner: a project of another user is
// reported as ErrProjectNotFound.
type ProjectStorage interface {
	// CreateProject creates a project and sets its ID and timestamps
	CreateProject(ctx context.Context, project *models.Project) error

	// GetProject retrieves a project of the owner with its paper count
	GetProject(ctx context.Context, ownerID, projectID int64) (*models.Project, error)

	// ListProjects returns the owner's projects ordered by ID
	ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error)

	// UpdateProject saves name and description
	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject deletes a project; its papers stay without a project
	DeleteProject(ctx context.Context, ownerID, projectID int64) error
}
