// Package activeproject holds the project the user is currently working in.
//
// Only a pointer (id and display name) is persisted; the full project is
// kept in memory and fetched again after a restart by LoadFromStorage.
package activeproject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/client/storage"
	"github.com/iudanet/metareview/internal/models"
)

// Fetcher loads a project by id. Implemented by *projects.Service.
type Fetcher interface {
	Get(ctx context.Context, id int64) (*models.Project, error)
}

// Store is the active context store
type Store struct {
	storage storage.ProjectPointerStorage
	fetcher Fetcher
	logger  *slog.Logger
	group   singleflight.Group

	// persistMu упорядочивает записи указателя; берется до mu
	persistMu sync.Mutex
	mu        sync.Mutex
	project   *models.Project
	gen       uint64
}

// New создает хранилище активного проекта
func New(st storage.ProjectPointerStorage, fetcher Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		storage: st,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Current returns a copy of the active project, nil if none is loaded
func (s *Store) Current() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// Pointer returns the active project pointer: from memory when the project
// is loaded, otherwise from storage. Returns storage.ErrPointerNotFound if
// there is no active project.
func (s *Store) Pointer(ctx context.Context) (*models.ProjectPointer, error) {
	s.mu.Lock()
	if s.project != nil {
		p := s.project.Pointer()
		s.mu.Unlock()
		return &p, nil
	}
	s.mu.Unlock()

	return s.storage.GetPointer(ctx)
}

// Set makes project the active one. A nil project or one without an id is
// rejected: the active project is cleared and a validation error returned.
func (s *Store) Set(ctx context.Context, project *models.Project) error {
	if project == nil || project.ID <= 0 {
		s.logger.Warn("attempted to set invalid active project")
		if err := s.Clear(ctx); err != nil {
			return err
		}
		return api.NewValidationError("invalid project: an id is required")
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// Новое поколение сразу: незавершенная загрузка не должна перезаписать выбор
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	// Сначала указатель: объект в памяти без совпадающего указателя не держим
	if err := s.storage.SavePointer(ctx, project.Pointer()); err != nil {
		return fmt.Errorf("failed to save active project: %w", err)
	}

	s.mu.Lock()
	if gen == s.gen {
		s.project = project.Clone()
	}
	s.mu.Unlock()

	s.logger.Debug("active project set", "project_id", project.ID, "name", project.Name)
	return nil
}

// Clear drops the active project and its pointer. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	return s.clear(ctx, nil)
}

// clear сбрасывает проект; с onlyGen - только если поколение не изменилось
func (s *Store) clear(ctx context.Context, onlyGen *uint64) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if onlyGen != nil && *onlyGen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	s.project = nil
	s.mu.Unlock()

	if err := s.storage.DeletePointer(ctx); err != nil {
		return fmt.Errorf("failed to delete active project: %w", err)
	}

	s.logger.Debug("active project cleared")
	return nil
}

// LoadFromStorage rehydrates the active project from its persisted pointer.
//
// It does nothing when a project is already held or no pointer is stored.
// On any failure the pointer is cleared and the error returned. A Set or
// Clear issued while the fetch is in flight takes precedence over its result.
func (s *Store) LoadFromStorage(ctx context.Context) error {
	_, err, _ := s.group.Do("load", func() (any, error) {
		return nil, s.load(ctx)
	})
	return err
}

func (s *Store) load(ctx context.Context) error {
	s.mu.Lock()
	if s.project != nil {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	pointer, err := s.storage.GetPointer(ctx)
	switch {
	case errors.Is(err, storage.ErrPointerNotFound):
		return nil
	case errors.Is(err, storage.ErrInvalidPointer):
		s.logger.Warn("stored active project is invalid, clearing", "error", err)
		if cErr := s.clear(ctx, &gen); cErr != nil {
			s.logger.Error("failed to clear active project", "error", cErr)
		}
		return err
	case err != nil:
		return fmt.Errorf("failed to read active project: %w", err)
	}

	project, err := s.fetcher.Get(ctx, pointer.ID)
	if err == nil && (project == nil || project.ID != pointer.ID) {
		err = errors.New("server returned a different project")
	}
	if err != nil {
		s.logger.Warn("failed to load active project, clearing",
			"project_id", pointer.ID,
			"error", err,
		)
		if cErr := s.clear(ctx, &gen); cErr != nil {
			s.logger.Error("failed to clear active project", "error", cErr)
		}
		return fmt.Errorf("failed to load active project %d: %w", pointer.ID, err)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		// Пока шел запрос, проект сменили или сбросили
		s.mu.Unlock()
		return nil
	}
	s.gen++
	s.project = project.Clone()
	s.mu.Unlock()

	// Имя проекта могло измениться на сервере
	if project.Name != pointer.Name {
		if err := s.storage.SavePointer(ctx, project.Pointer()); err != nil {
			s.logger.Warn("failed to refresh active project name", "error", err)
		}
	}

	s.logger.Debug("active project loaded", "project_id", project.ID)
	return nil
}
