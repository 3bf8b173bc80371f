package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testJWTConfig = JWTConfig{
	Secret:         []byte("test-secret-key"),
	AccessTokenTTL: 15 * time.Minute,
}

// memoryStorage - in-memory реализация хранилищ для тестов handlers
type memoryStorage struct {
	users    map[int64]*models.User
	projects map[int64]*models.Project
	papers   map[int64]*models.Paper
	err      error
	nextID   int64
	mu       sync.Mutex
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		users:    make(map[int64]*models.User),
		projects: make(map[int64]*models.Project),
		papers:   make(map[int64]*models.Paper),
	}
}

func (m *memoryStorage) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return storage.ErrUserAlreadyExists
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memoryStorage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memoryStorage) SetUserActive(ctx context.Context, userID int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (m *memoryStorage) CreateProject(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	project.ID = m.id()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	c := *project
	m.projects[project.ID] = &c
	return nil
}

func (m *memoryStorage) GetProject(ctx context.Context, ownerID, projectID int64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, storage.ErrProjectNotFound
	}
	c := *p
	return &c, nil
}

func (m *memoryStorage) ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	list := make([]models.Project, 0)
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memoryStorage) UpdateProject(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[project.ID]
	if !ok || p.OwnerID != project.OwnerID {
		return storage.ErrProjectNotFound
	}
	c := *project
	m.projects[project.ID] = &c
	return nil
}

func (m *memoryStorage) DeleteProject(ctx context.Context, ownerID, projectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return storage.ErrProjectNotFound
	}
	delete(m.projects, projectID)
	return nil
}

func (m *memoryStorage) CreatePaper(ctx context.Context, paper *models.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	paper.ID = m.id()
	c := *paper
	m.papers[paper.ID] = &c
	return nil
}

func (m *memoryStorage) GetPaper(ctx context.Context, paperID int64) (*models.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.papers[paperID]
	if !ok {
		return nil, storage.ErrPaperNotFound
	}
	c := *p
	return &c, nil
}

func (m *memoryStorage) SearchPapers(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var found []models.Paper
	for id := int64(1); id <= m.nextID && len(found) < limit; id++ {
		if p, ok := m.papers[id]; ok && strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			found = append(found, *p)
		}
	}
	return found, nil
}

// addUser создает пользователя с паролем
func (m *memoryStorage) addUser(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: string(hash), IsActive: active}
	require.NoError(t, m.CreateUser(context.Background(), user))
	return user
}

// withUser добавляет в контекст запроса id пользователя, как это делает middleware
func withUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(WithUserID(r.Context(), userID))
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Detail
}
