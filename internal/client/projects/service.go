package projects

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/validation"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

// Requester sends authenticated requests. Implemented by *gateway.Gateway.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Service определяет интерфейс клиентского сервиса проектов
type Service interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, req pkgapi.ProjectCreateRequest) (*models.Project, error)
	Update(ctx context.Context, id int64, req pkgapi.ProjectUpdateRequest) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

const basePath = "/projects/"

// service работает с проектами через gateway
type service struct {
	requester Requester
}

// NewService creates a new projects service
func NewService(requester Requester) Service {
	return &service{requester: requester}
}

func projectPath(id int64) string {
	return fmt.Sprintf("%s%d/", basePath, id)
}

// List returns the user's projects
func (s *service) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.requester.Get(ctx, basePath, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get returns a project by id
func (s *service) Get(ctx context.Context, id int64) (*models.Project, error) {
	if id <= 0 {
		return nil, api.NewValidationError("invalid project id %d", id)
	}

	var project models.Project
	if err := s.requester.Get(ctx, projectPath(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a project
func (s *service) Create(ctx context.Context, req pkgapi.ProjectCreateRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateProjectName(req.Name); err != nil {
		return nil, api.NewValidationError("%v", err)
	}

	var project models.Project
	if err := s.requester.Post(ctx, basePath, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update changes the non-nil fields of a project
func (s *service) Update(ctx context.Context, id int64, req pkgapi.ProjectUpdateRequest) (*models.Project, error) {
	if id <= 0 {
		return nil, api.NewValidationError("invalid project id %d", id)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.ValidateProjectName(name); err != nil {
			return nil, api.NewValidationError("%v", err)
		}
		req.Name = &name
	}

	var project models.Project
	if err := s.requester.Put(ctx, projectPath(id), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete deletes a project
func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return api.NewValidationError("invalid project id %d", id)
	}
	return s.requester.Delete(ctx, projectPath(id), nil)
}
