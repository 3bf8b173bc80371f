package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/metareview/internal/client/api"
	"github.com/iudanet/metareview/internal/client/storage"
	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/validation"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

// state - изменяемое состояние сессии, защищено Service.mu
type state struct {
	user    *models.User
	token   string
	lastErr string
	status  Status
}

// Service owns the process-wide session.
//
// Every state-changing operation increments a generation counter and applies
// its result only if the generation is still the one it started with. Teardown
// also increments it, so a logout always wins over an in-flight login or fetch.
// Concurrent Initialize calls share one execution through a singleflight group.
type Service struct {
	api    API
	store  storage.TokenStorage
	logger *slog.Logger
	group  singleflight.Group

	// persistMu упорядочивает записи в хранилище; берется до mu
	persistMu sync.Mutex
	mu        sync.Mutex
	state     state
	gen       uint64
}

// NewService создает сервис сессии
func NewService(client API, store storage.TokenStorage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    client,
		store:  store,
		logger: logger,
	}
}

// Snapshot returns a copy of the current session state
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Token:     s.state.token,
		User:      s.state.user.Clone(),
		Status:    s.state.status,
		LastError: s.state.lastErr,
	}
}

// Token returns the bearer token held in memory, "" if none
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.token
}

// Status returns the current status
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.status
}

// HasPersistedToken reports whether the credential store holds a token
func (s *Service) HasPersistedToken(ctx context.Context) (bool, error) {
	_, err := s.store.GetToken(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read token: %w", err)
	}
	return true, nil
}

// beginLocked начинает новое поколение. Вызывается под mu.
func (s *Service) beginLocked() uint64 {
	s.gen++
	s.state.status = StatusLoading
	s.state.lastErr = ""
	return s.gen
}

// Login exchanges credentials for a token, persists it and validates it
// by fetching the user profile.
func (s *Service) Login(ctx context.Context, c Credentials) error {
	c.Email = strings.TrimSpace(c.Email)

	if err := validateLogin(c); err != nil {
		s.persistMu.Lock()
		s.mu.Lock()
		s.gen++
		s.state = state{status: StatusFailed, lastErr: err.Error()}
		s.mu.Unlock()
		s.deleteTokenLocked(ctx)
		s.persistMu.Unlock()
		return err
	}

	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()

	s.logger.Debug("logging in", "email", c.Email)

	resp, err := s.api.IssueToken(ctx, c.Email, c.Password)
	if err != nil {
		return s.failLogin(ctx, gen, err)
	}

	if err := s.adoptToken(ctx, gen, resp.AccessToken); err != nil {
		return err
	}

	return s.validate(ctx, gen, resp.AccessToken)
}

// adoptToken сохраняет выданный токен, если поколение еще актуально
func (s *Service) adoptToken(ctx context.Context, gen uint64, token string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.state.token = token
	s.state.user = nil
	s.mu.Unlock()

	if err := s.store.SaveToken(ctx, token); err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.gen++
			s.state = state{status: StatusFailed, lastErr: "failed to save token: " + err.Error()}
		}
		s.mu.Unlock()
		s.deleteTokenLocked(ctx)
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// failLogin переводит сессию в Failed и удаляет сохраненный токен
func (s *Service) failLogin(ctx context.Context, gen uint64, cause error) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.state = state{status: StatusFailed, lastErr: cause.Error()}
	s.mu.Unlock()

	s.deleteTokenLocked(ctx)
	s.logger.Info("login failed", "error", cause)
	return cause
}

// Register creates an account. It never establishes a session: on success the
// status returns to Idle and the user is expected to log in.
func (s *Service) Register(ctx context.Context, req pkgapi.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)

	s.mu.Lock()
	if s.state.status == StatusAuthenticated {
		s.mu.Unlock()
		return api.NewValidationError("already logged in, log out before registering a new account")
	}

	if err := validateRegister(req); err != nil {
		s.gen++
		s.state.status = StatusFailed
		s.state.lastErr = err.Error()
		s.mu.Unlock()
		return err
	}
	gen := s.beginLocked()
	s.mu.Unlock()

	_, err := s.api.Register(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrSuperseded
	}
	if err != nil {
		s.state.status = StatusFailed
		s.state.lastErr = err.Error()
		s.logger.Info("registration failed", "error", err)
		return err
	}

	s.state.status = StatusIdle
	s.state.lastErr = ""
	s.logger.Info("registered", "email", req.Email)
	return nil
}

// FetchUser validates the held token against the current-user endpoint.
// Without a token it does nothing.
func (s *Service) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.token
	if token == "" {
		s.mu.Unlock()
		return nil
	}
	gen := s.beginLocked()
	s.mu.Unlock()

	return s.validate(ctx, gen, token)
}

// validate загружает профиль владельца токена в рамках поколения gen
func (s *Service) validate(ctx context.Context, gen uint64, token string) error {
	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.logger.Warn("token rejected, logging out", "error", err)
			if tErr := s.teardown(ctx, &gen); tErr != nil {
				return tErr
			}
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return ErrSuperseded
		}
		// Токен сохраняем: ошибка может быть временной
		s.state.status = StatusFailed
		s.state.user = nil
		s.state.lastErr = "failed to fetch user data: " + err.Error()
		s.logger.Warn("failed to fetch user", "error", err)
		return fmt.Errorf("failed to fetch user data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrSuperseded
	}
	s.state.user = user
	s.state.status = StatusAuthenticated
	s.state.lastErr = ""
	s.logger.Debug("session validated", "user_id", user.ID)
	return nil
}

// Teardown clears the session and removes the persisted token.
// It is unconditional and idempotent.
func (s *Service) Teardown(ctx context.Context) error {
	return s.teardown(ctx, nil)
}

// Logout is Teardown under its user-facing name
func (s *Service) Logout(ctx context.Context) error {
	return s.Teardown(ctx)
}

// teardown сбрасывает сессию. Если onlyGen задан, сброс выполняется
// только пока поколение совпадает, иначе возвращается ErrSuperseded.
func (s *Service) teardown(ctx context.Context, onlyGen *uint64) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if onlyGen != nil && *onlyGen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.gen++
	s.state = state{status: StatusIdle}
	s.mu.Unlock()

	if err := s.store.DeleteToken(ctx); err != nil {
		s.logger.Error("failed to delete token", "error", err)
		return fmt.Errorf("failed to delete token: %w", err)
	}

	s.logger.Debug("session torn down")
	return nil
}

// deleteTokenLocked удаляет сохраненный токен. Вызывается под persistMu.
func (s *Service) deleteTokenLocked(ctx context.Context) {
	if err := s.store.DeleteToken(ctx); err != nil {
		s.logger.Error("failed to delete token", "error", err)
	}
}

// Forget resets the in-memory session without touching the store.
// Used when another process changed the persisted token.
func (s *Service) Forget(reason string) {
	s.mu.Lock()
	s.gen++
	s.state = state{status: StatusIdle}
	s.mu.Unlock()

	s.logger.Info("session reset", "reason", reason)
}

// Initialize restores the session from the credential store.
//
// A call made while the session is Loading or Authenticated is a no-op.
// Concurrent calls are coalesced: they share the execution (and the context)
// of the first caller, so a single validation request reaches the network.
func (s *Service) Initialize(ctx context.Context) error {
	_, err, shared := s.group.Do("initialize", func() (any, error) {
		return nil, s.initialize(ctx)
	})
	if shared {
		s.logger.Debug("initialize coalesced")
	}
	return err
}

func (s *Service) initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state.status == StatusLoading || s.state.status == StatusAuthenticated {
		s.mu.Unlock()
		return nil
	}
	gen := s.beginLocked()
	s.mu.Unlock()

	token, err := s.store.GetToken(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return nil
		}
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.state = state{status: StatusIdle}
			return nil
		}
		s.state = state{status: StatusFailed, lastErr: "failed to read token: " + err.Error()}
		return fmt.Errorf("failed to read token: %w", err)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.state.token = token
	s.state.user = nil
	s.mu.Unlock()

	err = s.validate(ctx, gen, token)
	if errors.Is(err, ErrSuperseded) {
		// Сессию уже изменила другая операция
		return nil
	}
	return err
}

func validateLogin(c Credentials) error {
	if err := validation.ValidateEmail(c.Email); err != nil {
		return api.NewValidationError("%v", err)
	}
	if err := validation.ValidateLoginPassword(c.Password); err != nil {
		return api.NewValidationError("%v", err)
	}
	return nil
}

func validateRegister(req pkgapi.RegisterRequest) error {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return api.NewValidationError("%v", err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return api.NewValidationError("%v", err)
	}
	return nil
}
