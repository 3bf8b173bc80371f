package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Сообщения об ошибках, которые клиент показывает пользователю как есть
const (
	DetailNotAuthenticated   = "Not authenticated"
	DetailInvalidCredentials = "Could not validate credentials"
	DetailIncorrectLogin     = "Incorrect email or password"
	DetailInactiveUser       = "Inactive user"
	DetailUserExists         = "The user with this email already exists in the system."
	DetailProjectNotFound    = "Project not found"
	DetailInternal           = "Internal server error"
)

// FieldError описывает ошибку валидации одного поля
type FieldError struct {
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
	Loc  []string `json:"loc"`
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет ошибку в виде {"detail": "..."}
func sendError(logger *slog.Logger, w http.ResponseWriter, detail string, statusCode int) {
	sendJSON(logger, w, map[string]string{"detail": detail}, statusCode)
}

// sendValidationError отправляет 422 со списком ошибок полей в "detail"
func sendValidationError(logger *slog.Logger, w http.ResponseWriter, errs ...FieldError) {
	sendJSON(logger, w, map[string][]FieldError{"detail": errs}, http.StatusUnprocessableEntity)
}

// SendUnauthorized отправляет 401 с заголовком WWW-Authenticate
func SendUnauthorized(logger *slog.Logger, w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	sendError(logger, w, detail, http.StatusUnauthorized)
}

// SendError is sendError for other server packages
func SendError(logger *slog.Logger, w http.ResponseWriter, detail string, statusCode int) {
	sendError(logger, w, detail, statusCode)
}

func fieldError(field, msg string) FieldError {
	return FieldError{Loc: []string{"body", field}, Msg: msg, Type: "value_error"}
}
