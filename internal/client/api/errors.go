package api

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку запроса
type Kind int

const (
	// KindUnauthorized - сервер ответил 401, сессия недействительна
	KindUnauthorized Kind = iota + 1
	// KindRequestRejected - любой другой ответ вне диапазона 2xx
	KindRequestRejected
	// KindTransport - сеть недоступна, таймаут или тело ответа не разобрано
	KindTransport
	// KindValidation - запрос отклонен локально, до отправки
	KindValidation
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRequestRejected:
		return "request rejected"
	case KindTransport:
		return "transport failure"
	case KindValidation:
		return "validation failure"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by *Error through errors.Is
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRequestRejected = errors.New("request rejected")
	ErrTransport       = errors.New("transport failure")
	ErrValidation      = errors.New("validation failure")
)

// Error is a classified request failure.
type Error struct {
	Err        error
	Message    string
	Kind       Kind
	StatusCode int
}

// Error implements error
func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrRequestRejected:
		return e.Kind == KindRequestRejected
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// NewValidationError creates a local validation failure
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// newTransportError оборачивает сетевую ошибку
func newTransportError(err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// KindOf returns the kind of a classified error, 0 if err is not classified
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthorized reports whether err signals an invalid or expired session
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
