package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		err    error
		target error
		name   string
		want   bool
	}{
		{name: "unauthorized", err: &Error{Kind: KindUnauthorized}, target: ErrUnauthorized, want: true},
		{name: "rejected is not unauthorized", err: &Error{Kind: KindRequestRejected}, target: ErrUnauthorized, want: false},
		{name: "wrapped transport", err: fmt.Errorf("list projects: %w", &Error{Kind: KindTransport}), target: ErrTransport, want: true},
		{name: "validation", err: NewValidationError("bad %s", "input"), target: ErrValidation, want: true},
		{name: "cause is reachable", err: newTransportError(context.DeadlineExceeded, "request failed"), target: context.DeadlineExceeded, want: true},
		{name: "plain error", err: errors.New("boom"), target: ErrTransport, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "bad input", NewValidationError("bad %s", "input").Error())
	assert.Equal(t, "unauthorized", (&Error{Kind: KindUnauthorized}).Error())
	assert.Equal(t, "request failed: context deadline exceeded",
		newTransportError(context.DeadlineExceeded, "request failed").Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnauthorized, KindOf(fmt.Errorf("wrap: %w", &Error{Kind: KindUnauthorized})))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.True(t, IsUnauthorized(&Error{Kind: KindUnauthorized}))
	assert.False(t, IsUnauthorized(nil))
}
