package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/validation"
)

// testServices wires every service against a temporary badger store.
type testServices struct {
	store         *store.Store
	locks         *QuestionLocks
	tokens        *auth.TokenService
	auth          *AuthService
	questions     *QuestionService
	answers       *AnswerService
	notifications *NotificationService
	tags          *TagSuggester
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	enricher := dto.NewEnricher(s)
	locks := NewQuestionLocks()

	return &testServices{
		store:         s,
		locks:         locks,
		tokens:        tokens,
		auth:          NewAuthService(s, tokens, v, nil),
		questions:     NewQuestionService(s, enricher, v, locks, DefaultMaxTags, nil),
		answers:       NewAnswerService(s, enricher, v, locks, nil),
		notifications: NewNotificationService(s, nil),
		tags:          NewTagSuggester(s, nil),
	}
}

// signUp registers a user and returns the identity carried by their token.
func (ts *testServices) signUp(t *testing.T, username string) domain.Identity {
	t.Helper()
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, LoginRequest{Email: username + "@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	identity, err := ts.auth.Verify(ctx, resp.Token)
	require.NoError(t, err)
	return identity
}

func (ts *testServices) ask(t *testing.T, actor domain.Identity, title string, tags ...string) *dto.Question {
	t.Helper()
	q, err := ts.questions.Create(context.Background(), actor, CreateQuestionRequest{
		Title:       title,
		Description: "<p>" + title + " in detail</p>",
		Tags:        tags,
	})
	require.NoError(t, err)
	return q
}

func (ts *testServices) reply(t *testing.T, actor domain.Identity, questionID string) *dto.Answer {
	t.Helper()
	a, err := ts.answers.Post(context.Background(), actor, questionID, PostAnswerRequest{Content: "<p>try this</p>"})
	require.NoError(t, err)
	return a
}
