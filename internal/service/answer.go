package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/id"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/validation"
)

// AnswerService posts, votes on and accepts answers.
//
// Every mutation runs under the question's entry in questionLocks, shared with
// QuestionService, so writes to one question never interleave within a
// process. The store transaction covers the cross-process case.
type AnswerService struct {
	store         store.Repository
	enricher      *dto.Enricher
	validator     *validation.Validator
	questionLocks *QuestionLocks
	logger        *slog.Logger
}

// NewAnswerService creates a new answer service. A nil locks gets a private
// table.
func NewAnswerService(store store.Repository, enricher *dto.Enricher, validator *validation.Validator, locks *QuestionLocks, logger *slog.Logger) *AnswerService {
	return &AnswerService{
		store:         store,
		enricher:      enricher,
		validator:     validator,
		questionLocks: orNewLocks(locks),
		logger:        orDiscard(logger),
	}
}

// PostAnswerRequest contains the body of a new answer.
type PostAnswerRequest struct {
	Content string `json:"content" validate:"required"`
}

// Post attaches a new answer to a question. When the question's author is not
// the actor they get a notification. Answer, question link and notification
// are committed together or not at all.
func (s *AnswerService) Post(ctx context.Context, actor domain.Identity, questionID string, req PostAnswerRequest) (*dto.Answer, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	unlock := s.questionLocks.Lock(questionID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Question not found")
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	answerID, err := id.Generate(id.PrefixAnswer)
	if err != nil {
		return nil, fmt.Errorf("generate answer ID: %w", err)
	}
	answer := &domain.Answer{
		QuestionID: q.ID,
		AuthorID:   actor.UserID,
		Content:    req.Content,
	}
	answer.ID = answerID
	answer.InitTimestamps()

	var notification *domain.Notification
	if !q.IsAuthor(actor.UserID) {
		notification, err = answerNotification(actor, q, answer)
		if err != nil {
			return nil, err
		}
	}

	if err := s.store.PostAnswer(ctx, answer, notification); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Question not found")
		}
		s.logger.Error("Failed to post answer",
			"question_id", q.ID,
			"user_id", actor.UserID,
			"error", err,
		)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "Failed to post answer")
	}

	s.logger.Info("Answer posted",
		"question_id", q.ID,
		"answer_id", answer.ID,
		"user_id", actor.UserID,
		"notified", notification != nil,
	)

	return s.enricher.Answer(ctx, answer)
}

func answerNotification(actor domain.Identity, q *domain.Question, a *domain.Answer) (*domain.Notification, error) {
	notificationID, err := id.Generate(id.PrefixNotification)
	if err != nil {
		return nil, fmt.Errorf("generate notification ID: %w", err)
	}
	n := &domain.Notification{
		UserID:     q.AuthorID,
		Type:       domain.NotificationAnswer,
		Message:    fmt.Sprintf(`%s answered your question "%s"`, actor.Username, q.Title),
		QuestionID: q.ID,
		AnswerID:   a.ID,
		ActorID:    actor.UserID,
	}
	n.ID = notificationID
	n.CreatedAt = a.CreatedAt
	n.UpdatedAt = a.CreatedAt
	return n, nil
}

// Vote applies an up or down vote to an answer. Anyone signed in may vote any
// number of times, including on their own answers.
func (s *AnswerService) Vote(ctx context.Context, actor domain.Identity, answerID, direction string) (*dto.Answer, error) {
	delta, err := voteDelta(direction)
	if err != nil {
		return nil, err
	}

	current, err := s.getAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}

	unlock := s.questionLocks.Lock(current.QuestionID)
	defer unlock()

	answer, err := s.store.VoteAnswer(ctx, answerID, delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Answer not found")
		}
		return nil, fmt.Errorf("vote answer: %w", err)
	}

	s.logger.Debug("Answer voted",
		"answer_id", answerID,
		"user_id", actor.UserID,
		"direction", direction,
	)

	return s.enricher.Answer(ctx, answer)
}

// Accept marks an answer as the accepted answer of its question, clearing any
// previous one. Only the question's author may accept. Accepting the answer
// that is already accepted succeeds without changes.
func (s *AnswerService) Accept(ctx context.Context, actor domain.Identity, answerID string) (*dto.Answer, error) {
	current, err := s.getAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}

	unlock := s.questionLocks.Lock(current.QuestionID)
	defer unlock()

	q, err := s.store.GetQuestion(ctx, current.QuestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Question not found")
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	if !q.IsAuthor(actor.UserID) {
		return nil, domainerrors.Forbidden("Only the question author can accept an answer")
	}

	answer, err := s.store.AcceptAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Answer not found")
		}
		return nil, fmt.Errorf("accept answer: %w", err)
	}

	s.logger.Info("Answer accepted",
		"question_id", q.ID,
		"answer_id", answerID,
		"user_id", actor.UserID,
	)

	return s.enricher.Answer(ctx, answer)
}

func (s *AnswerService) getAnswer(ctx context.Context, answerID string) (*domain.Answer, error) {
	answer, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Answer not found")
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return answer, nil
}
