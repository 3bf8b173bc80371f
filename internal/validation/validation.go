package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	// MaxEmailLen максимальная длина email (RFC 5321)
	MaxEmailLen = 254
	// MinPasswordLen минимальная длина пароля при регистрации
	MinPasswordLen = 8
	// MaxProjectNameLen максимальная длина названия проекта
	MaxProjectNameLen = 200
)

// ValidateEmail проверяет, что email выглядит как адрес вида user@domain.
// Имя с отображаемым названием ("Alice <a@b.c>") не принимается.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	if !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("email %q must contain a domain", email)
	}

	return nil
}

// ValidateLoginPassword проверяет пароль при входе.
// Требования к сложности проверяет сервер, здесь только непустое значение.
func ValidateLoginPassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

// ValidatePassword проверяет минимальные требования к паролю при регистрации
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateProjectName проверяет название проекта
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	if len(name) > MaxProjectNameLen {
		return fmt.Errorf("project name must not exceed %d characters", MaxProjectNameLen)
	}

	return nil
}
