package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/id"
	"github.com/stackit/stackit-server/internal/store"
)

func makeQuestion(authorID, title string, tags ...string) *domain.Question {
	q := &domain.Question{
		Title:       title,
		Description: "<p>" + title + "</p>",
		Tags:        tags,
		AuthorID:    authorID,
		AnswerIDs:   []string{},
	}
	q.ID = id.MustGenerate(id.PrefixQuestion)
	q.InitTimestamps()
	return q
}

func TestCreateAndGetQuestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := makeQuestion("user-1", "How do channels work?", "go", "concurrency")
	require.NoError(t, s.CreateQuestion(ctx, q))

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
	assert.Equal(t, []string{"go", "concurrency"}, got.Tags)
	assert.Empty(t, got.AnswerIDs)
	assert.Zero(t, got.Votes)

	_, err = s.GetQuestion(ctx, "question-missing")
	assert.ErrorIs(t, err, store.ErrQuestionNotFound)
}

func TestListQuestions_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, title := range []string{"first", "second", "third"} {
		q := makeQuestion("user-1", title, "go")
		q.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateQuestion(ctx, q))
		ids = append(ids, q.ID)
	}

	questions, err := s.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, ids[2], questions[0].ID)
	assert.Equal(t, ids[1], questions[1].ID)
	assert.Equal(t, ids[0], questions[2].ID)
}

func TestListTags_DistinctSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)

	require.NoError(t, s.CreateQuestion(ctx, makeQuestion("user-1", "a", "react", "javascript")))
	require.NoError(t, s.CreateQuestion(ctx, makeQuestion("user-1", "b", "go", "react")))

	tags, err = s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "javascript", "react"}, tags)
}

func TestListQuestionsByTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goQ := makeQuestion("user-1", "go question", "go")
	jsQ := makeQuestion("user-1", "js question", "javascript")
	require.NoError(t, s.CreateQuestion(ctx, goQ))
	require.NoError(t, s.CreateQuestion(ctx, jsQ))

	questions, err := s.ListQuestionsByTag(ctx, "go")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, goQ.ID, questions[0].ID)
}

func TestVoteQuestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := makeQuestion("user-1", "votes", "go")
	require.NoError(t, s.CreateQuestion(ctx, q))

	got, err := s.VoteQuestion(ctx, q.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)

	got, err = s.VoteQuestion(ctx, q.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)

	_, err = s.VoteQuestion(ctx, "question-missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
