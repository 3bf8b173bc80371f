package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iudanet/metareview/internal/models"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret123"
	testToken    = "tok-1"
)

// fakeBackend - минимальный сервер с эндпоинтами, которые использует клиент
type fakeBackend struct {
	server   *httptest.Server
	projects map[int64]*models.Project
	users    map[string]bool

	tokenCalls  atomic.Int32
	meCalls     atomic.Int32
	revoked     atomic.Bool
	lastProject atomic.Int64

	mu     sync.Mutex
	nextID int64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		projects: make(map[int64]*models.Project),
		users:    map[string]bool{testEmail: true},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", b.handleToken)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("GET /auth/users/me", b.authorized(b.handleMe))
	mux.HandleFunc("GET /projects/{$}", b.authorized(b.handleListProjects))
	mux.HandleFunc("POST /projects/{$}", b.authorized(b.handleCreateProject))
	mux.HandleFunc("GET /projects/{id}/", b.authorized(b.handleGetProject))
	mux.HandleFunc("DELETE /projects/{id}/", b.authorized(b.handleDeleteProject))
	mux.HandleFunc("GET /search/papers", b.handleSearch)
	mux.HandleFunc("POST /papers/upload", b.authorized(b.handleUpload))

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) URL() string { return b.server.URL }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (b *fakeBackend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.revoked.Load() || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	b.tokenCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad form")
		return
	}
	if r.PostForm.Get("username") != testEmail || r.PostForm.Get("password") != testPassword {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, pkgapi.TokenResponse{AccessToken: testToken, TokenType: pkgapi.TokenTypeBearer})
}

func (b *fakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req pkgapi.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad json")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.users[req.Email] {
		writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system.")
		return
	}
	b.users[req.Email] = true
	writeJSON(w, http.StatusOK, models.User{ID: 2, Email: req.Email, FullName: req.FullName, IsActive: true})
}

func (b *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.meCalls.Add(1)
	writeJSON(w, http.StatusOK, models.User{
		ID:        1,
		Email:     testEmail,
		FullName:  "Ada Lovelace",
		IsActive:  true,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
}

func (b *fakeBackend) handleListProjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := make([]models.Project, 0, len(b.projects))
	for id := int64(1); id <= b.nextID; id++ {
		if p, ok := b.projects[id]; ok {
			list = append(list, *p)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *fakeBackend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req pkgapi.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad json")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := &models.Project{ID: b.nextID, Name: req.Name, Description: req.Description, CreatedAt: time.Now()}
	b.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *fakeBackend) project(r *http.Request) (*models.Project, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	return p, ok
}

func (b *fakeBackend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := b.project(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *fakeBackend) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	p, ok := b.project(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	b.deleteProject(p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) deleteProject(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.projects, id)
}

func (b *fakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp := pkgapi.PaperSearchResponse{Query: query}
	for i := 1; i <= limit && i <= 3; i++ {
		resp.Results = append(resp.Results, models.Paper{
			ID:      int64(i),
			Title:   fmt.Sprintf("%s study %d", strings.ToUpper(query[:1])+query[1:], i),
			Authors: "Doe J.",
			Year:    2020 + i,
		})
	}
	resp.Total = len(resp.Results)
	writeJSON(w, http.StatusOK, resp)
}

func (b *fakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file is required")
		return
	}
	_ = file.Close()

	paper := models.Paper{ID: 42, Title: header.Filename, FileName: header.Filename, FileSize: header.Size}
	if v := r.FormValue("project_id"); v != "" {
		id, _ := strconv.ParseInt(v, 10, 64)
		b.lastProject.Store(id)
		paper.ProjectID = &id
	}
	writeJSON(w, http.StatusOK, paper)
}
