package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stackit/stackit-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "question not found", store.ErrQuestionNotFound.Error())
	assert.Nil(t, store.ErrQuestionNotFound.Unwrap())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrQuestionNotFound.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrEmailTaken.HTTPCode())
}

func TestError_VariantsMatchSentinel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"question not found", store.ErrQuestionNotFound, store.ErrNotFound, true},
		{"wrapped answer not found", fmt.Errorf("vote: %w", store.ErrAnswerNotFound), store.ErrNotFound, true},
		{"username taken", store.ErrUsernameTaken, store.ErrAlreadyExists, true},
		{"not found is not exists", store.ErrUserNotFound, store.ErrAlreadyExists, false},
		{"plain error", errors.New("boom"), store.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}
