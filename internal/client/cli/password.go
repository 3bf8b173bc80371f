package cli

import (
	"fmt"
	"os"
	"strings"
)

// EnvPassword - переменная окружения с паролем для неинтерактивного входа
const EnvPassword = "METAREVIEW_PASSWORD"

// passwordSource описывает откуда брать пароль
type passwordSource struct {
	FromFile string
	FromArgs string
}

// readPassword reads the password with priority:
// 1. Environment variable METAREVIEW_PASSWORD
// 2. File given by --password-file
// 3. Command-line flag --password
// 4. Interactive prompt
func (r *runner) readPassword(src passwordSource, prompt string) (password string, prompted bool, err error) {
	if env := os.Getenv(EnvPassword); env != "" {
		return env, false, nil
	}

	if src.FromFile != "" {
		data, err := os.ReadFile(src.FromFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read password file: %w", err)
		}
		// Перевод строки в конце файла не часть пароля
		return strings.TrimRight(string(data), "\r\n"), false, nil
	}

	if src.FromArgs != "" {
		return src.FromArgs, false, nil
	}

	password, err = r.io.ReadPassword(prompt)
	if err != nil {
		return "", true, fmt.Errorf("failed to read password: %w", err)
	}
	return password, true, nil
}
