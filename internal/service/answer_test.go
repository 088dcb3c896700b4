package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
)

func TestAnswerService_Post_NotifiesQuestionAuthor(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Why is my build slow?", "go")

	a := ts.reply(t, bob, q.ID)
	assert.Equal(t, q.ID, a.QuestionID)
	assert.Equal(t, "bob", a.Author.Username)
	assert.False(t, a.IsAccepted)

	notifications, err := ts.notifications.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, domain.NotificationAnswer, n.Type)
	assert.Equal(t, `bob answered your question "Why is my build slow?"`, n.Message)
	assert.False(t, n.IsRead)
	assert.Equal(t, q.ID, n.QuestionID)
	assert.Equal(t, a.ID, n.AnswerID)

	bobs, err := ts.notifications.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, a.ID, detail.Answers[0].ID)
}

func TestAnswerService_Post_SelfAnswerDoesNotNotify(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	q := ts.ask(t, alice, "Answering myself", "go")

	ts.reply(t, alice, q.ID)

	count, err := ts.notifications.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAnswerService_Post_Errors(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	q := ts.ask(t, alice, "Anything", "go")

	_, err := ts.answers.Post(ctx, alice, "question-missing", PostAnswerRequest{Content: "<p>hi</p>"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = ts.answers.Post(ctx, alice, q.ID, PostAnswerRequest{Content: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	counts, err := ts.store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Answers)
}

func TestAnswerService_Vote(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Votes", "go")
	a := ts.reply(t, bob, q.ID)

	up, err := ts.answers.Vote(ctx, alice, a.ID, VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, up.Votes)

	down, err := ts.answers.Vote(ctx, alice, a.ID, VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, down.Votes)

	_, err = ts.answers.Vote(ctx, alice, a.ID, "sideways")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Self votes are allowed.
	self, err := ts.answers.Vote(ctx, bob, a.ID, VoteDown)
	require.NoError(t, err)
	assert.Equal(t, -1, self.Votes)

	_, err = ts.answers.Vote(ctx, alice, "answer-missing", VoteUp)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	stored, err := ts.store.GetAnswer(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, stored.Votes)
}

func TestAnswerService_Accept(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Accept me", "go")
	a1 := ts.reply(t, bob, q.ID)
	a2 := ts.reply(t, bob, q.ID)

	accepted, err := ts.answers.Accept(ctx, alice, a1.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)

	accepted, err = ts.answers.Accept(ctx, alice, a2.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)

	// Accepting again changes nothing.
	again, err := ts.answers.Accept(ctx, alice, a2.ID)
	require.NoError(t, err)
	assert.True(t, again.IsAccepted)

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasAcceptedAnswer)
	assert.Equal(t, a2.ID, detail.AcceptedAnswerID)
	assert.Equal(t, []bool{false, true}, acceptedFlags(detail.Answers))
}

func TestAnswerService_Accept_OnlyQuestionAuthor(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Mine to accept", "go")
	a1 := ts.reply(t, bob, q.ID)
	a2 := ts.reply(t, bob, q.ID)

	_, err := ts.answers.Accept(ctx, alice, a1.ID)
	require.NoError(t, err)

	_, err = ts.answers.Accept(ctx, bob, a2.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, acceptedFlags(detail.Answers))

	_, err = ts.answers.Accept(ctx, alice, "answer-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAnswerService_Accept_Concurrent(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Race to accept", "go")

	const n = 8
	ids := make([]string, n)
	for i := range n {
		ids[i] = ts.reply(t, bob, q.ID).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Go(func() {
			_, errs[i] = ts.answers.Accept(ctx, alice, ids[i])
		})
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	accepted := 0
	for _, a := range detail.Answers {
		if a.IsAccepted {
			accepted++
			assert.Equal(t, detail.AcceptedAnswerID, a.ID)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Zero(t, ts.locks.Len())
}

func TestQuestionService_Vote_Concurrent(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Popular question", "go")

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Go(func() {
			_, errs[i] = ts.questions.Vote(ctx, bob, q.ID, VoteUp)
		})
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, n, detail.Votes)
	assert.Zero(t, ts.locks.Len())
}

func TestQuestionService_Vote_RacesAnswerPost(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	q := ts.ask(t, alice, "Busy question", "go")

	const n = 32
	var wg sync.WaitGroup
	voteErrs := make([]error, n)
	postErrs := make([]error, n)
	for i := range n {
		wg.Go(func() {
			_, voteErrs[i] = ts.questions.Vote(ctx, bob, q.ID, VoteUp)
		})
		wg.Go(func() {
			_, postErrs[i] = ts.answers.Post(ctx, bob, q.ID, PostAnswerRequest{Content: "<p>me too</p>"})
		})
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, voteErrs[i])
		require.NoError(t, postErrs[i])
	}

	detail, err := ts.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, n, detail.Votes)
	assert.Equal(t, n, detail.AnswerCount)
	assert.Len(t, detail.Answers, n)

	unread, err := ts.notifications.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, n, unread)
}

func acceptedFlags(answers []dto.Answer) []bool {
	flags := make([]bool, 0, len(answers))
	for _, a := range answers {
		flags = append(flags, a.IsAccepted)
	}
	return flags
}
