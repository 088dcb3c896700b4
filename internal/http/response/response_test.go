package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusCreated, map[string]string{"message": "test"}, logger)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(1), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"message": "test"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	NotFound(w, "Question not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Question not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.NotContains(t, body, "data")
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "domain error",
			err:        domainerrors.Forbidden("Only the question author can accept an answer"),
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantError:  "Only the question author can accept an answer",
		},
		{
			name:       "wrapped conflict",
			err:        fmt.Errorf("register: %w", domainerrors.Conflict("User already exists")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONFLICT",
			wantError:  "User already exists",
		},
		{
			name:       "store not found",
			err:        fmt.Errorf("get: %w", store.ErrQuestionNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantError:  store.ErrQuestionNotFound.Message,
		},
		{
			name:       "internal domain error hides its message",
			err:        domainerrors.Wrap(errors.New("disk full"), domainerrors.CodeInternal, "Failed to post answer"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantError:  "Internal server error",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
