package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/metareview/internal/models"
	"github.com/iudanet/metareview/internal/server/storage"
	"github.com/iudanet/metareview/internal/validation"
	"github.com/iudanet/metareview/pkg/api"
)

// dummyHash сравнивается при неизвестном email, чтобы время ответа не выдавало наличие аккаунта
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("metareview-dummy-password"), bcrypt.DefaultCost)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	jwtConfig   JWTConfig
	bcryptCost  int
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		jwtConfig:   jwtConfig,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// Token обрабатывает POST /auth/token
// OAuth2 password grant: form поля username (email) и password
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "failed to parse token form", slog.Any("error", err))
		sendError(h.logger, w, "invalid form body", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	var missing []FieldError
	if email == "" {
		missing = append(missing, FieldError{Loc: []string{"body", "username"}, Msg: "Field required", Type: "missing"})
	}
	if password == "" {
		missing = append(missing, FieldError{Loc: []string{"body", "password"}, Msg: "Field required", Type: "missing"})
	}
	if len(missing) > 0 {
		sendValidationError(h.logger, w, missing...)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		h.logger.WarnContext(ctx, "login failed: invalid credentials")
		SendUnauthorized(h.logger, w, DetailIncorrectLogin)
		return
	}

	if !user.IsActive {
		h.logger.WarnContext(ctx, "login failed: inactive user", slog.Int64("user_id", user.ID))
		sendError(h.logger, w, DetailInactiveUser, http.StatusBadRequest)
		return
	}

	token, err := GenerateAccessToken(h.jwtConfig, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, api.TokenResponse{AccessToken: token, TokenType: api.TokenTypeBearer}, http.StatusOK)
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	var errs []FieldError
	if err := validation.ValidateEmail(req.Email); err != nil {
		errs = append(errs, fieldError("email", err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		errs = append(errs, fieldError("password", err.Error()))
	}
	if len(errs) > 0 {
		sendValidationError(h.logger, w, errs...)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists")
			sendError(h.logger, w, DetailUserExists, http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, user, http.StatusCreated)
}

// Me обрабатывает GET /auth/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		SendUnauthorized(h.logger, w, DetailNotAuthenticated)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Токен валиден, но пользователя больше нет
			SendUnauthorized(h.logger, w, DetailInvalidCredentials)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, DetailInternal, http.StatusInternalServerError)
		return
	}

	if !user.IsActive {
		sendError(h.logger, w, DetailInactiveUser, http.StatusBadRequest)
		return
	}

	sendJSON(h.logger, w, user, http.StatusOK)
}
