package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
	"github.com/iudanet/metareview/internal/validation"
	"github.com/iudanet/metareview/pkg/api"
)

// ProjectHandler handles per-user project CRUD
type ProjectHandler struct {
	logger   *slog.Logger
	projects storage.ProjectStorage
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(logger *slog.Logger, projects storage.ProjectStorage) *ProjectHandler {
	return &ProjectHandler{logger: logger, projects: projects}
}

// List обрабатывает GET /projects/
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjects(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list projects", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, projects, http.StatusOK)
}

// Create обрабатывает POST /projects/
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateProjectName(req.Name); err != nil {
		sendValidationError(h.logger, w, fieldError("name", err.Error()))
		return
	}

	project := &models.Project{
		OwnerID:     userID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.projects.CreateProject(ctx, project); err != nil {
		h.logger.ErrorContext(ctx, "failed to create project", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "project created",
		slog.Int64("user_id", userID),
		slog.Int64("project_id", project.ID))

	sendJSON(h.logger, w, project, http.StatusCreated)
}

// Get обрабатывает GET /projects/{id}/
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, ok := h.load(w, r, userID, projectID)
	if !ok {
		return
	}

	sendJSON(h.logger, w, project, http.StatusOK)
}

// Update обрабатывает PUT /projects/{id}/
// Поля, отсутствующие в запросе, не изменяются.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req api.ProjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	project, ok := h.load(w, r, userID, projectID)
	if !ok {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.ValidateProjectName(name); err != nil {
			sendValidationError(h.logger, w, fieldError("name", err.Error()))
			return
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}

	if err := h.projects.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			sendError(h.logger, w, DetailProjectNotFound, http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update project", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, project, http.StatusOK)
}

// Delete обрабатывает DELETE /projects/{id}/
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(ctx, userID, projectID); err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			sendError(h.logger, w, DetailProjectNotFound, http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete project", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "project deleted",
		slog.Int64("user_id", userID),
		slog.Int64("project_id", projectID))

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		SendUnauthorized(h.logger, w, DetailNotAuthenticated)
	}
	return userID, ok
}

func (h *ProjectHandler) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		sendError(h.logger, w, DetailProjectNotFound, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *ProjectHandler) load(w http.ResponseWriter, r *http.Request, userID, projectID int64) (*models.Project, bool) {
	project, err := h.projects.GetProject(r.Context(), userID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			sendError(h.logger, w, DetailProjectNotFound, http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "failed to get project", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return nil, false
	}
	return project, true
}
