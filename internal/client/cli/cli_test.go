package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/client/iocli"
	"github.com/iudanet/metareview/internal/config"
)

type testEnv struct {
	backend *fakeBackend
	db      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"SERVER", "STORAGE", "DB", "LOG_LEVEL", "TIMEOUT"} {
		t.Setenv(config.EnvPrefix+key, "")
	}
	t.Setenv(EnvPassword, "")

	return &testEnv{
		backend: newFakeBackend(t),
		db:      filepath.Join(t.TempDir(), "client.db"),
	}
}

// run выполняет одну команду как отдельный процесс клиента
func (e *testEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	full := append([]string{"--server", e.backend.URL(), "--db", e.db}, args...)
	err := Execute(context.Background(), full, iocli.New(strings.NewReader(input), &out), Options{LogOutput: io.Discard})
	return out.String(), err
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "", "login", "--email", testEmail, "--password", testPassword)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Ada Lovelace <"+testEmail+">")
}

func TestLogin_StatusLogout(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	env.login(t)

	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: authenticated")
	assert.Contains(t, out, "User: Ada Lovelace <"+testEmail+">")
	assert.Contains(t, out, "Active project: none")

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: "+testEmail)
	assert.Contains(t, out, "Member since: 2024-03-01")

	out, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	_, err = env.run(t, "", "whoami")
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestLogin_PromptsForCredentials(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, testEmail+"\n"+testPassword+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as")
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "login", "--email", testEmail, "--password", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Incorrect email or password")

	out, err := env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLogin_InvalidEmailNeverReachesServer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "login", "--email", "not-an-email", "--password", testPassword)
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Zero(t, env.backend.tokenCalls.Load())
}

func TestLogin_WhenAlreadyLoggedInShowsStatus(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out, err := env.run(t, "", "login", "--email", testEmail, "--password", testPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Already logged in as")
	assert.Contains(t, out, "Status: authenticated")
	assert.Equal(t, int32(1), env.backend.tokenCalls.Load())
}

func TestRevokedTokenIsRemoved(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.backend.revoked.Store(true)

	_, err := env.run(t, "", "projects")
	assert.ErrorIs(t, err, ErrLoginRequired)

	env.backend.revoked.Store(false)

	// Токен удален: повторный запуск не обращается к серверу
	before := env.backend.meCalls.Load()
	out, err := env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
	assert.Equal(t, before, env.backend.meCalls.Load())
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "register", "--email", "new@example.com", "--full-name", "New User", "--password", "longenough")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created")

	// Регистрация не создает сессию
	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	_, err = env.run(t, "", "register", "--email", "new@example.com", "--password", "longenough")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRequestRejected)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRegister_PromptedPasswordMustMatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "longenough\ndifferent1\n", "register", "--email", "new@example.com")
	assert.ErrorContains(t, err, "passwords do not match")

	out, err := env.run(t, "longenough\nlongenough\n", "register", "--email", "new@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Confirm password: ")
	assert.Contains(t, out, "Account created")
}

func TestRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"whoami"},
		{"projects"},
		{"projects", "create", "Alpha"},
		{"use", "1"},
		{"unuse"},
		{"upload", "paper.pdf"},
	} {
		_, err := env.run(t, "", args...)
		assert.ErrorIs(t, err, ErrLoginRequired, "%v", args)
	}
}

func TestProjects_ActiveProject(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out, err := env.run(t, "", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	out, err = env.run(t, "", "projects", "create", "Alpha", "--use")
	require.NoError(t, err)
	assert.Contains(t, out, "Project created: Alpha (#1)")

	_, err = env.run(t, "", "projects", "create", "Beta", "-d", "second")
	require.NoError(t, err)

	out, err = env.run(t, "", "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Beta")
	assert.Regexp(t, `\*\s+1\s+Alpha`, out)

	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: Alpha (#1)")

	out, err = env.run(t, "", "use", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: Beta (#2)")

	_, err = env.run(t, "", "unuse")
	require.NoError(t, err)

	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: none")

	_, err = env.run(t, "", "use", "abc")
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestProjects_DeleteActiveProjectClearsIt(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	_, err := env.run(t, "", "projects", "create", "Alpha", "--use")
	require.NoError(t, err)

	out, err := env.run(t, "n\n", "projects", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = env.run(t, "", "projects", "delete", "1", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Project #1 deleted")

	out, err = env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: none")
}

func TestActiveProject_RemovedOnServerIsCleared(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	_, err := env.run(t, "", "projects", "create", "Alpha", "--use")
	require.NoError(t, err)

	env.backend.deleteProject(1)

	// Команда с авторизацией восстанавливает проект и обнаруживает, что его нет
	_, err = env.run(t, "", "whoami")
	require.NoError(t, err)

	out, err := env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: none")
}

func TestLogout_ClearsActiveProject(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	_, err := env.run(t, "", "projects", "create", "Alpha", "--use")
	require.NoError(t, err)

	_, err = env.run(t, "", "logout")
	require.NoError(t, err)

	out, err := env.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active project: none")
}

func TestSearch_WorksWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "", "search", "graph", "neural", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Found 2 papers for "graph neural"`)
	assert.Contains(t, out, "1. Graph neural study 1 (2021)")
	assert.NotContains(t, out, "study 3")
}

func TestUpload_IntoActiveProject(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	_, err := env.run(t, "", "projects", "create", "Alpha", "--use")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))

	out, err := env.run(t, "", "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Uploaded paper.pdf as paper #42 into project #1")
	assert.Equal(t, int64(1), env.backend.lastProject.Load())

	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("notes"), 0o600))
	_, err = env.run(t, "", "upload", txt)
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestShell(t *testing.T) {
	env := newTestEnv(t)

	input := strings.Join([]string{
		"login --email " + testEmail + " --password " + testPassword,
		`projects create "Deep learning review" --use`,
		"",
		"status",
		"exit",
	}, "\n") + "\n"

	out, err := env.run(t, input, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as")
	assert.Contains(t, out, "Project created: Deep learning review (#1)")
	assert.Contains(t, out, "Active project: Deep learning review (#1)")
}

func TestShell_RedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	input := strings.Join([]string{
		"projects",
		testEmail,
		testPassword,
		"bogus",
	}, "\n") + "\n"

	out, err := env.run(t, input, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Login required.")
	assert.Contains(t, out, "Logged in as")
	assert.Contains(t, out, "No projects yet")
	assert.Contains(t, out, `Error: unknown command "bogus"`)
}

func TestDirectoryStorage(t *testing.T) {
	env := newTestEnv(t)
	env.db = t.TempDir()

	out, err := env.run(t, "", "--storage", "dir", "login", "--email", testEmail, "--password", testPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as")

	token, err := os.ReadFile(filepath.Join(env.db, "authToken"))
	require.NoError(t, err)
	assert.Equal(t, testToken, strings.TrimSpace(string(token)))

	out, err = env.run(t, "", "--storage", "dir", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: authenticated")
}
