package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/metareview/internal/client/iocli"
)

func TestReadPassword_Priority(t *testing.T) {
	file := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))

	tests := []struct {
		name         string
		env          string
		src          passwordSource
		want         string
		wantPrompted bool
	}{
		{name: "env wins", env: "from-env", src: passwordSource{FromFile: file, FromArgs: "from-args"}, want: "from-env"},
		{name: "file before flag", src: passwordSource{FromFile: file, FromArgs: "from-args"}, want: "from-file"},
		{name: "flag", src: passwordSource{FromArgs: "from-args"}, want: "from-args"},
		{name: "prompt", want: "typed", wantPrompted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPassword, tt.env)

			var out bytes.Buffer
			r := &runner{io: iocli.New(strings.NewReader("typed\n"), &out)}

			got, prompted, err := r.readPassword(tt.src, "Password: ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompted, prompted)
			assert.Equal(t, tt.wantPrompted, strings.Contains(out.String(), "Password: "))
		})
	}
}

func TestReadPassword_MissingFile(t *testing.T) {
	t.Setenv(EnvPassword, "")
	r := &runner{io: iocli.New(strings.NewReader(""), &bytes.Buffer{})}

	_, _, err := r.readPassword(passwordSource{FromFile: filepath.Join(t.TempDir(), "nope")}, "Password: ")
	assert.ErrorContains(t, err, "failed to read password file")
}
