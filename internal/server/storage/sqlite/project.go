package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
)

const projectSelect = `
	SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
	       (SELECT COUNT(*) FROM papers WHERE papers.project_id = p.id)
	FROM projects p
`

// rowScanner - общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateProject creates a project for project.OwnerID
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC().Truncate(time.Second)
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (owner_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		project.OwnerID,
		project.Name,
		project.Description,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project id: %w", err)
	}
	project.ID = id

	return nil
}

// GetProject retrieves a project of the owner
func (s *Storage) GetProject(ctx context.Context, ownerID, projectID int64) (*models.Project, error) {
	query := projectSelect + ` WHERE p.id = ? AND p.owner_id = ?`

	project, err := scanProject(s.db.QueryRowContext(ctx, query, projectID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListProjects returns all projects of the owner
func (s *Storage) ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error) {
	query := projectSelect + ` WHERE p.owner_id = ? ORDER BY p.id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// UpdateProject saves name and description of an owned project
func (s *Storage) UpdateProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		UPDATE projects
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		project.Name,
		project.Description,
		project.UpdatedAt.Unix(),
		project.ID,
		project.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return expectOneRow(res, storage.ErrProjectNotFound)
}

// DeleteProject deletes an owned project
func (s *Storage) DeleteProject(ctx context.Context, ownerID, projectID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND owner_id = ?`, projectID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return expectOneRow(res, storage.ErrProjectNotFound)
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var createdAt, updatedAt int64

	if err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.Description,
		&createdAt,
		&updatedAt,
		&project.PaperCount,
	); err != nil {
		return nil, err
	}

	project.CreatedAt = time.Unix(createdAt, 0).UTC()
	project.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return project, nil
}

// expectOneRow возвращает notFound, если запрос не затронул ни одной строки
func expectOneRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
