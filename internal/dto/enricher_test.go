package dto

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/domain"
)

type fakeStore struct {
	users       map[string]*domain.User
	answers     map[string]*domain.Answer
	userCalls   int
	answerCalls int
	err         error
}

func (f *fakeStore) GetUsersByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	f.userCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAnswersByIDs(_ context.Context, ids []string) ([]*domain.Answer, error) {
	f.answerCalls++
	var out []*domain.Answer
	for _, id := range ids {
		if a, ok := f.answers[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func user(id, name string) *domain.User {
	u := &domain.User{Username: name}
	u.ID = id
	return u
}

func question(id, authorID string, answerIDs ...string) *domain.Question {
	q := &domain.Question{
		Title:       "How do I use Go generics?",
		Description: "<p>I have <strong>two</strong> functions.</p>",
		Tags:        []string{"go"},
		AuthorID:    authorID,
		AnswerIDs:   answerIDs,
	}
	q.ID = id
	return q
}

func answer(id, questionID, authorID string) *domain.Answer {
	a := &domain.Answer{QuestionID: questionID, AuthorID: authorID, Content: "<p>Use type parameters.</p>"}
	a.ID = id
	return a
}

func TestEnricher_Questions_BatchesAuthors(t *testing.T) {
	store := &fakeStore{users: map[string]*domain.User{
		"user-a": user("user-a", "alice"),
		"user-b": user("user-b", "bob"),
	}}
	e := NewEnricher(store)

	views, err := e.Questions(context.Background(), []*domain.Question{
		question("q1", "user-a"),
		question("q2", "user-b"),
		question("q3", "user-a"),
		question("q4", "user-gone"),
	})
	require.NoError(t, err)
	require.Len(t, views, 4)

	assert.Equal(t, 1, store.userCalls)
	assert.Equal(t, "alice", views[0].Author.Username)
	assert.Equal(t, "bob", views[1].Author.Username)
	assert.Equal(t, "alice", views[2].Author.Username)
	assert.Equal(t, UserSummary{ID: "user-gone", AvatarColor: AvatarColor("user-gone")}, views[3].Author)

	assert.Equal(t, "how-do-i-use-go-generics", views[0].Slug)
	assert.Equal(t, "I have two functions.", views[0].Excerpt)
	assert.Equal(t, 0, views[0].AnswerCount)
}

func TestEnricher_Questions_Empty(t *testing.T) {
	store := &fakeStore{}
	views, err := NewEnricher(store).Questions(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
	assert.Zero(t, store.userCalls)
}

func TestEnricher_QuestionDetail_JoinsAnswersInOrder(t *testing.T) {
	store := &fakeStore{
		users: map[string]*domain.User{
			"user-a": user("user-a", "alice"),
			"user-b": user("user-b", "bob"),
		},
		answers: map[string]*domain.Answer{
			"a1": answer("a1", "q1", "user-b"),
			"a2": answer("a2", "q1", "user-a"),
		},
	}
	q := question("q1", "user-a", "a2", "a1")
	q.AcceptedAnswerID = "a1"

	detail, err := NewEnricher(store).QuestionDetail(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, store.answerCalls)
	assert.Equal(t, 1, store.userCalls)
	assert.Equal(t, "alice", detail.Author.Username)
	assert.True(t, detail.HasAcceptedAnswer)
	assert.Equal(t, 2, detail.AnswerCount)

	require.Len(t, detail.Answers, 2)
	assert.Equal(t, "a2", detail.Answers[0].ID)
	assert.Equal(t, "alice", detail.Answers[0].Author.Username)
	assert.Equal(t, "a1", detail.Answers[1].ID)
	assert.Equal(t, "bob", detail.Answers[1].Author.Username)
	assert.Equal(t, "I have **two** functions.", detail.DescriptionMarkdown)
	assert.Equal(t, "Use type parameters.", detail.Answers[0].ContentMarkdown)
}

func TestEnricher_PropagatesStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("disk on fire")}

	_, err := NewEnricher(store).Answer(context.Background(), answer("a1", "q1", "user-a"))
	assert.ErrorContains(t, err, "disk on fire")
}

func TestNewUser_DropsPasswordHash(t *testing.T) {
	u := user("user-a", "alice")
	u.PasswordHash = "secret"
	u.Email = "alice@example.com"

	view := NewUser(u)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, "alice", view.Username)
}
