package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"

	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/store"
)

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler(slog.New(slog.DiscardHandler))

	tests := []struct {
		name        string
		status      int
		message     string
		errs        []error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "domain error keeps its status",
			status:      http.StatusInternalServerError,
			errs:        []error{domainerrors.Forbidden("Only the question author can accept an answer")},
			wantStatus:  http.StatusForbidden,
			wantCode:    "FORBIDDEN",
			wantMessage: "Only the question author can accept an answer",
		},
		{
			name:        "wrapped domain error",
			status:      http.StatusInternalServerError,
			errs:        []error{fmt.Errorf("handler: %w", domainerrors.Conflict("User already exists"))},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "CONFLICT",
			wantMessage: "User already exists",
		},
		{
			name:        "internal domain error is hidden",
			status:      http.StatusInternalServerError,
			errs:        []error{domainerrors.Wrap(errors.New("disk full"), domainerrors.CodeInternal, "Failed to post answer")},
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "Internal server error",
		},
		{
			name:        "store not found",
			status:      http.StatusInternalServerError,
			errs:        []error{store.ErrQuestionNotFound},
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "question not found",
		},
		{
			name:        "unexpected error",
			status:      http.StatusInternalServerError,
			message:     "boom",
			errs:        []error{errors.New("boom")},
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "Internal server error",
		},
		{
			name:        "schema validation",
			status:      http.StatusUnprocessableEntity,
			message:     "validation failed",
			errs:        []error{&huma.ErrorDetail{Location: "body.password", Message: "expected required property password to be present"}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "VALIDATION",
			wantMessage: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := huma.NewError(tt.status, tt.message, tt.errs...)

			apiErr, ok := got.(*APIError)
			if !assert.True(t, ok) {
				return
			}
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}
