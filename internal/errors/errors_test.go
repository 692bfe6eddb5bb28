package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(fmt.Errorf("rcpt: %w", ErrRecipientRejected)))
	assert.False(t, IsRejected(ErrParseFailed))
	assert.False(t, IsRejected(nil))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", ErrNotFound, CodeNotFound},
		{"wrapped not found", fmt.Errorf("email 7: %w", ErrNotFound), CodeNotFound},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"rejected", fmt.Errorf("%w: other@example.com", ErrRecipientRejected), CodeRecipientRejected},
		{"parse failed", fmt.Errorf("%w: bad boundary", ErrParseFailed), CodeParseFailed},
		{"schema missing", ErrSchemaMissing, CodeSchemaMissing},
		{"unauthorized", ErrUnauthorized, CodeUnauthorized},
		{"joined keeps first known", errors.Join(errors.New("io"), ErrParseFailed), CodeParseFailed},
		{"unknown", errors.New("disk full"), CodeInternalError},
		{"nil", nil, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}
