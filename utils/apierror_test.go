package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`), true},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKeyError(tt.err))
		})
	}
}

func TestSentinelWrapping(t *testing.T) {
	err := fmt.Errorf("%w: cannot move from completed to cancelled", ErrInvalidState)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrConflict)
}
