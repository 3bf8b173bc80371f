package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
)

const paperColumns = `id, project_id, uploaded_by, title, authors, doi, abstract, year, file_name, stored_as, file_size, created_at`

// CreatePaper stores paper metadata
func (s *Storage) CreatePaper(ctx context.Context, paper *models.Paper) error {
	paper.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO papers (project_id, uploaded_by, title, authors, doi, abstract, year, file_name, stored_as, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var uploadedBy sql.NullInt64
	if paper.UploadedBy > 0 {
		uploadedBy = sql.NullInt64{Int64: paper.UploadedBy, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		nullableID(paper.ProjectID),
		uploadedBy,
		paper.Title,
		paper.Authors,
		paper.DOI,
		paper.Abstract,
		paper.Year,
		paper.FileName,
		paper.StoredAs,
		paper.FileSize,
		paper.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert paper: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get paper id: %w", err)
	}
	paper.ID = id

	return nil
}

// GetPaper retrieves a paper by ID
func (s *Storage) GetPaper(ctx context.Context, paperID int64) (*models.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE id = ?`

	paper, err := scanPaper(s.db.QueryRowContext(ctx, query, paperID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	return paper, nil
}

// SearchPapers finds papers by a case-insensitive substring match
func (s *Storage) SearchPapers(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	q := `SELECT ` + paperColumns + ` FROM papers
		WHERE lower(title) LIKE ? ESCAPE '\' OR lower(authors) LIKE ? ESCAPE '\' OR lower(abstract) LIKE ? ESCAPE '\'
		ORDER BY year DESC, id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search papers: %w", err)
	}
	defer rows.Close()

	papers := make([]models.Paper, 0)
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, *paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, nil
}

func scanPaper(row rowScanner) (*models.Paper, error) {
	paper := &models.Paper{}
	var (
		projectID  sql.NullInt64
		uploadedBy sql.NullInt64
		createdAt  int64
	)

	if err := row.Scan(
		&paper.ID,
		&projectID,
		&uploadedBy,
		&paper.Title,
		&paper.Authors,
		&paper.DOI,
		&paper.Abstract,
		&paper.Year,
		&paper.FileName,
		&paper.StoredAs,
		&paper.FileSize,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if projectID.Valid {
		id := projectID.Int64
		paper.ProjectID = &id
	}
	paper.UploadedBy = uploadedBy.Int64
	paper.CreatedAt = time.Unix(createdAt, 0).UTC()
	return paper, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil || *id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// escapeLike экранирует спецсимволы LIKE
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
