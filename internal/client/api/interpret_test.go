package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInterpret_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantKind    Kind
		status      int
	}{
		{
			name:        "401 with detail",
			status:      http.StatusUnauthorized,
			body:        `{"detail":"Could not validate credentials"}`,
			wantKind:    KindUnauthorized,
			wantMessage: "Could not validate credentials",
		},
		{
			name:        "401 without body",
			status:      http.StatusUnauthorized,
			wantKind:    KindUnauthorized,
			wantMessage: "HTTP error: 401",
		},
		{
			name:        "400 with detail",
			status:      http.StatusBadRequest,
			body:        `{"detail":"Inactive user"}`,
			wantKind:    KindRequestRejected,
			wantMessage: "Inactive user",
		},
		{
			name:        "422 with detail list",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail": [ {"loc": ["body","email"], "msg": "field required"} ]}`,
			wantKind:    KindRequestRejected,
			wantMessage: `[{"loc":["body","email"],"msg":"field required"}]`,
		},
		{
			name:        "message field",
			status:      http.StatusConflict,
			body:        `{"message":"already exists"}`,
			wantKind:    KindRequestRejected,
			wantMessage: "already exists",
		},
		{
			name:        "null detail falls back to message",
			status:      http.StatusBadRequest,
			body:        `{"detail":null,"message":"bad"}`,
			wantKind:    KindRequestRejected,
			wantMessage: "bad",
		},
		{
			name:        "html body",
			status:      http.StatusBadGateway,
			body:        `<html>Bad Gateway</html>`,
			wantKind:    KindRequestRejected,
			wantMessage: "HTTP error: 502",
		},
		{
			name:        "json array body",
			status:      http.StatusInternalServerError,
			body:        `[1,2,3]`,
			wantKind:    KindRequestRejected,
			wantMessage: "HTTP error: 500",
		},
		{
			// Текст ответа не влияет на классификацию
			name:        "403 mentioning unauthorized",
			status:      http.StatusForbidden,
			body:        `{"detail":"401 Unauthorized: could not validate credentials"}`,
			wantKind:    KindRequestRejected,
			wantMessage: "401 Unauthorized: could not validate credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Interpret(tt.status, []byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, result)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestInterpret_Success(t *testing.T) {
	result, err := Interpret(http.StatusOK, []byte(`{"id":1}`))
	require.NoError(t, err)
	assert.False(t, result.Empty)

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, result.Decode(&out))
	assert.Equal(t, 1, out.ID)

	result, err = Interpret(http.StatusNoContent, nil)
	require.NoError(t, err)
	assert.True(t, result.Empty)
	require.NoError(t, result.Decode(&out))

	result, err = Interpret(http.StatusOK, []byte("  \n"))
	require.NoError(t, err)
	assert.True(t, result.Empty)
}

func TestResult_DecodeMalformed(t *testing.T) {
	result, err := Interpret(http.StatusOK, []byte("invalid json {{{"))
	require.NoError(t, err)

	var out map[string]any
	err = result.Decode(&out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "failed to decode response")
}

// Интерпретатор не паникует на произвольных ответах и классифицирует строго по коду
func TestInterpret_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := rapid.IntRange(100, 599).Draw(rt, "status")
		body := rapid.SliceOf(rapid.Byte()).Draw(rt, "body")

		result, err := Interpret(status, body)
		switch {
		case status >= 200 && status < 300:
			if err != nil {
				rt.Fatalf("2xx must not fail: %v", err)
			}
			_ = result.Decode(&map[string]any{})
		case status == http.StatusUnauthorized:
			if !errors.Is(err, ErrUnauthorized) {
				rt.Fatalf("401 must be unauthorized, got %v", err)
			}
		default:
			if !errors.Is(err, ErrRequestRejected) {
				rt.Fatalf("%d must be rejected, got %v", status, err)
			}
			if KindOf(err) != KindRequestRejected {
				rt.Fatalf("unexpected kind %v", KindOf(err))
			}
		}
	})
}
