package papers

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/models"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

// MaxUploadSize - максимальный размер загружаемого файла (10MB)
const MaxUploadSize = 10 * 1024 * 1024

// DefaultSearchLimit is used when the caller passes no limit
const DefaultSearchLimit = 10

const (
	searchPath = "/search/papers"
	uploadPath = "/papers/upload"
)

// Requester sends requests through the gateway
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Upload(ctx context.Context, u api.Upload, out any) error
}

// UploadRequest describes a paper upload
type UploadRequest struct {
	Content   io.Reader
	Progress  api.ProgressFunc
	FileName  string
	Size      int64
	ProjectID int64
}

// Service определяет интерфейс клиентского сервиса статей
type Service interface {
	Search(ctx context.Context, query string, limit int) (*pkgapi.PaperSearchResponse, error)
	Upload(ctx context.Context, req UploadRequest) (*models.Paper, error)
}

type service struct {
	requester Requester
}

// NewService creates a new papers service
func NewService(requester Requester) Service {
	return &service{requester: requester}
}

// Search runs a public paper search. It works with or without a session.
func (s *service) Search(ctx context.Context, query string, limit int) (*pkgapi.PaperSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, api.NewValidationError("search query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp pkgapi.PaperSearchResponse
	if err := s.requester.Get(ctx, searchPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload sends a PDF, optionally into a project
func (s *service) Upload(ctx context.Context, req UploadRequest) (*models.Paper, error) {
	if req.Content == nil {
		return nil, api.NewValidationError("no file to upload")
	}
	if req.Size > MaxUploadSize {
		return nil, api.NewValidationError("file is too large: %d bytes, maximum is %d", req.Size, MaxUploadSize)
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return nil, api.NewValidationError("only PDF files can be uploaded")
	}

	fields := map[string]string{}
	if req.ProjectID > 0 {
		fields["project_id"] = strconv.FormatInt(req.ProjectID, 10)
	}

	var paper models.Paper
	err := s.requester.Upload(ctx, api.Upload{
		Path:     uploadPath,
		FileName: filepath.Base(req.FileName),
		// Ограничиваем чтение на случай, если размер не был известен заранее
		Content:  io.LimitReader(req.Content, MaxUploadSize+1),
		Fields:   fields,
		Progress: req.Progress,
	}, &paper)
	if err != nil {
		return nil, err
	}
	return &paper, nil
}
