package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		errMsg  string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "x@y.com",
			wantErr: false,
		},
		{
			name:    "valid email - subdomain",
			email:   "alice.smith@lab.uni.edu",
			wantErr: false,
		},
		{
			name:    "invalid - empty",
			email:   "",
			wantErr: true,
			errMsg:  "email cannot be empty",
		},
		{
			name:    "invalid - no at sign",
			email:   "alice.example.com",
			wantErr: true,
			errMsg:  "is not a valid address",
		},
		{
			name:    "invalid - display name",
			email:   "Alice <alice@example.com>",
			wantErr: true,
			errMsg:  "is not a valid address",
		},
		{
			name:    "invalid - no domain dot",
			email:   "alice@localhost",
			wantErr: true,
			errMsg:  "must contain a domain",
		},
		{
			name:    "invalid - too long",
			email:   strings.Repeat("a", 250) + "@x.io",
			wantErr: true,
			errMsg:  "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long-enough"))
}

func TestValidateLoginPassword(t *testing.T) {
	// при входе короткий пароль допустим, решает сервер
	assert.NoError(t, ValidateLoginPassword("bad"))
	assert.Error(t, ValidateLoginPassword(""))
}

func TestValidateProjectName(t *testing.T) {
	assert.NoError(t, ValidateProjectName("Meta-analysis 2026"))
	assert.Error(t, ValidateProjectName("   "))
	assert.Error(t, ValidateProjectName(strings.Repeat("p", MaxProjectNameLen+1)))
}
