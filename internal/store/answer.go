package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/domain"
)

// PostAnswer stores answer, appends it to its question's answer list and, when
// notification is non-nil, stores the notification. All three writes commit
// together or not at all.
// Returns ErrQuestionNotFound if the question does not exist.
func (s *Store) PostAnswer(ctx context.Context, answer *domain.Answer, notification *domain.Notification) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		q, err := s.Questions.getTx(txn, answer.QuestionID)
		if errors.Is(err, ErrNotFound) {
			return ErrQuestionNotFound
		}
		if err != nil {
			return err
		}

		if err := s.Answers.createTx(txn, answer.ID, answer); err != nil {
			return fmt.Errorf("answer: %w", err)
		}

		q.AddAnswer(answer.ID)
		if err := s.Questions.updateTx(txn, q.ID, q); err != nil {
			return fmt.Errorf("question: %w", err)
		}

		if notification != nil {
			if err := s.Notifications.createTx(txn, notification.ID, notification); err != nil {
				return fmt.Errorf("notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("post answer: %w", err)
	}
	return nil
}

// GetAnswer retrieves an answer by ID.
func (s *Store) GetAnswer(ctx context.Context, id string) (*domain.Answer, error) {
	a, err := s.Answers.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return a, nil
}

// GetAnswersByIDs fetches several answers in one transaction, in the order
// given. Unknown ids are skipped.
func (s *Store) GetAnswersByIDs(ctx context.Context, ids []string) ([]*domain.Answer, error) {
	answers, err := s.Answers.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}
	return answers, nil
}

// VoteAnswer adds delta to the answer's vote count in one read-modify-write
// transaction and returns the updated answer.
func (s *Store) VoteAnswer(ctx context.Context, id string, delta int) (*domain.Answer, error) {
	var a *domain.Answer
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		a, err = s.Answers.getTx(txn, id)
		if errors.Is(err, ErrNotFound) {
			return ErrAnswerNotFound
		}
		if err != nil {
			return err
		}
		a.Votes += delta
		a.Touch()
		return s.Answers.updateTx(txn, id, a)
	})
	if err != nil {
		return nil, fmt.Errorf("vote answer: %w", err)
	}
	return a, nil
}

// AcceptAnswer marks the answer as its question's accepted answer: every other
// answer of the question is cleared, the target is set and the question's
// AcceptedAnswerID is updated, in one transaction. Accepting the already
// accepted answer writes nothing.
// Ownership is not checked here.
func (s *Store) AcceptAnswer(ctx context.Context, id string) (*domain.Answer, error) {
	var target *domain.Answer
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		target, err = s.Answers.getTx(txn, id)
		if errors.Is(err, ErrNotFound) {
			return ErrAnswerNotFound
		}
		if err != nil {
			return err
		}

		q, err := s.Questions.getTx(txn, target.QuestionID)
		if errors.Is(err, ErrNotFound) {
			return ErrQuestionNotFound
		}
		if err != nil {
			return err
		}

		if target.IsAccepted && q.AcceptedAnswerID == target.ID {
			return nil
		}

		siblings, err := s.Answers.listByIndexTx(txn, "question", q.ID)
		if err != nil {
			return err
		}
		for _, other := range siblings {
			if other.ID == target.ID || !other.IsAccepted {
				continue
			}
			other.IsAccepted = false
			other.Touch()
			if err := s.Answers.updateTx(txn, other.ID, other); err != nil {
				return err
			}
		}

		target.IsAccepted = true
		target.Touch()
		if err := s.Answers.updateTx(txn, target.ID, target); err != nil {
			return err
		}

		q.AcceptedAnswerID = target.ID
		q.Touch()
		return s.Questions.updateTx(txn, q.ID, q)
	})
	if err != nil {
		return nil, fmt.Errorf("accept answer: %w", err)
	}
	return target, nil
}
