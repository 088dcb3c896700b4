package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/service"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/validation"
)

// envelope mirrors response.Envelope with a typed data field.
type envelope[T any] struct {
	V       int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

// setupTestServer creates a server backed by a temporary badger store.
func setupTestServer(t *testing.T) (*Server, humatest.TestAPI) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(t.TempDir(), "db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	enricher := dto.NewEnricher(s)
	locks := service.NewQuestionLocks()

	services := &Services{
		Auth:          service.NewAuthService(s, tokens, v, logger),
		Questions:     service.NewQuestionService(s, enricher, v, locks, service.DefaultMaxTags, logger),
		Answers:       service.NewAnswerService(s, enricher, v, locks, logger),
		Notifications: service.NewNotificationService(s, logger),
		Tags:          service.NewTagSuggester(s, logger),
	}

	srv := NewServer(s, services, Options{Version: "test"}, logger)
	return srv, humatest.Wrap(t, srv.API())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, 1, env.V)
	return env
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// signUp registers and logs in a user, returning their token.
func signUp(t *testing.T, api humatest.TestAPI, username string) string {
	t.Helper()

	rec := api.Post("/api/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.Post("/api/auth/login", map[string]any{
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](t, rec).Data.Token
}

func askQuestion(t *testing.T, api humatest.TestAPI, token, title string, tags ...string) dto.Question {
	t.Helper()

	rec := api.Post("/api/questions", bearer(token), map[string]any{
		"title":       title,
		"description": "<p>" + title + "</p>",
		"tags":        tags,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Question](t, rec).Data
}

func postAnswer(t *testing.T, api humatest.TestAPI, token, questionID string) dto.Answer {
	t.Helper()

	rec := api.Post("/api/answers/"+questionID, bearer(token), map[string]any{
		"content": "<p>have you tried turning it off and on again</p>",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Answer](t, rec).Data
}

func TestServer_UnknownRouteUsesEnvelope(t *testing.T) {
	_, api := setupTestServer(t)

	rec := api.Get("/api/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[any](t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "Route not found", env.Error)
}

func TestServer_OpenAPIDocumentsBearerScheme(t *testing.T) {
	srv, _ := setupTestServer(t)

	openapi := srv.API().OpenAPI()
	require.NotNil(t, openapi.Components)
	scheme, ok := openapi.Components.SecuritySchemes["bearer"]
	require.True(t, ok)
	assert.Equal(t, "bearer", scheme.Scheme)

	assert.Contains(t, openapi.Paths, "/api/questions")
	assert.Contains(t, openapi.Paths, "/api/answers/accept/{answerId}")
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/questions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
