package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
	"github.com/iudanet/metareview/pkg/api"
)

const (
	// MaxUploadSize - максимальный размер загружаемого PDF (10MB)
	MaxUploadSize = 10 << 20
	// DefaultSearchLimit - количество результатов поиска по умолчанию
	DefaultSearchLimit = 10
	// MaxSearchLimit - верхняя граница limit
	MaxSearchLimit = 100
)

var pdfMagic = []byte("%PDF-")

// PaperHandler handles paper search and upload
type PaperHandler struct {
	logger    *slog.Logger
	papers    storage.PaperStorage
	projects  storage.ProjectStorage
	uploadDir string
}

// NewPaperHandler creates a new paper handler. Uploaded files are stored in uploadDir.
func NewPaperHandler(logger *slog.Logger, papers storage.PaperStorage, projects storage.ProjectStorage, uploadDir string) *PaperHandler {
	return &PaperHandler{
		logger:    logger,
		papers:    papers,
		projects:  projects,
		uploadDir: uploadDir,
	}
}

// Search обрабатывает GET /search/papers?query=...&limit=...
// Публичный эндпоинт, авторизация не требуется.
func (h *PaperHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		sendValidationError(h.logger, w, FieldError{Loc: []string{"query", "query"}, Msg: "Field required", Type: "missing"})
		return
	}

	limit := DefaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			sendValidationError(h.logger, w, FieldError{Loc: []string{"query", "limit"}, Msg: "limit must be a positive integer", Type: "value_error"})
			return
		}
		limit = min(parsed, MaxSearchLimit)
	}

	papers, err := h.papers.SearchPapers(ctx, query, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to search papers", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}
	if papers == nil {
		papers = []models.Paper{}
	}

	sendJSON(h.logger, w, api.PaperSearchResponse{
		Query:   query,
		Results: papers,
		Total:   len(papers),
	}, http.StatusOK)
}

// Upload обрабатывает POST /papers/upload (multipart: file, project_id)
func (h *PaperHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		SendUnauthorized(h.logger, w, DetailNotAuthenticated)
		return
	}

	// Запас на служебные поля multipart
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(h.logger, w, "File is too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(h.logger, w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var projectID *int64
	if v := r.FormValue("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			sendValidationError(h.logger, w, fieldError("project_id", "project_id must be a positive integer"))
			return
		}
		if _, err := h.projects.GetProject(ctx, userID, id); err != nil {
			if errors.Is(err, storage.ErrProjectNotFound) {
				sendError(h.logger, w, DetailProjectNotFound, http.StatusNotFound)
				return
			}
			h.logger.ErrorContext(ctx, "failed to get project", slog.Any("error", err))
			sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
			return
		}
		projectID = &id
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendValidationError(h.logger, w, FieldError{Loc: []string{"body", "file"}, Msg: "Field required", Type: "missing"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		sendError(h.logger, w, "Only PDF files are allowed", http.StatusBadRequest)
		return
	}
	if header.Size > MaxUploadSize {
		sendError(h.logger, w, "File is too large", http.StatusRequestEntityTooLarge)
		return
	}

	storedAs := uuid.New().String() + ".pdf"
	size, err := h.save(file, storedAs)
	if err != nil {
		if errors.Is(err, errNotPDF) {
			sendError(h.logger, w, "File is not a valid PDF", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to save upload", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	paper := &models.Paper{
		ProjectID:  projectID,
		UploadedBy: userID,
		Title:      strings.TrimSuffix(name, filepath.Ext(name)),
		FileName:   name,
		StoredAs:   storedAs,
		FileSize:   size,
	}
	if err := h.papers.CreatePaper(ctx, paper); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, storedAs))
		h.logger.ErrorContext(ctx, "failed to create paper", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "paper uploaded",
		slog.Int64("user_id", userID),
		slog.Int64("paper_id", paper.ID),
		slog.Int64("size", size))

	sendJSON(h.logger, w, paper, http.StatusOK)
}

var errNotPDF = errors.New("not a pdf")

// save копирует файл в uploadDir, проверяя сигнатуру PDF
func (h *PaperHandler) save(src io.Reader, storedAs string) (int64, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(src, head)
	if err != nil || !bytes.Equal(head[:n], pdfMagic) {
		return 0, errNotPDF
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadDir, storedAs)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	if cErr := dst.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return size, nil
}
