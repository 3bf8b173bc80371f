package auth

import "github.com/iudanet/metareview/internal/models"

// Status is the lifecycle state of the session
type Status int

const (
	// StatusIdle - сессии нет (начальное состояние, после выхода или регистрации)
	StatusIdle Status = iota
	// StatusLoading - идет вход или проверка токена
	StatusLoading
	// StatusAuthenticated - токен проверен, профиль загружен
	StatusAuthenticated
	// StatusFailed - последняя операция завершилась ошибкой
	StatusFailed
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	User      *models.User
	Token     string
	LastError string
	Status    Status
}

// IsAuthenticated reports whether the snapshot holds a validated session
func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.User != nil
}

// HasToken reports whether a token is held in memory
func (s Snapshot) HasToken() bool {
	return s.Token != ""
}
