package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/domain"
)

// CreateQuestion stores a new question.
func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	if err := s.Questions.Create(ctx, q.ID, q); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question by ID.
func (s *Store) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.Questions.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// ListQuestions returns every question, newest first.
func (s *Store) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	questions, err := s.Questions.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	sortNewestFirst(questions, func(q *domain.Question) *domain.Document { return &q.Document })
	return questions, nil
}

// VoteQuestion adds delta to the question's vote count in one read-modify-write
// transaction and returns the updated question.
func (s *Store) VoteQuestion(ctx context.Context, id string, delta int) (*domain.Question, error) {
	var q *domain.Question
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		q, err = s.Questions.getTx(txn, id)
		if errors.Is(err, ErrNotFound) {
			return ErrQuestionNotFound
		}
		if err != nil {
			return err
		}
		q.Votes += delta
		q.Touch()
		return s.Questions.updateTx(txn, id, q)
	})
	if err != nil {
		return nil, fmt.Errorf("vote question: %w", err)
	}
	return q, nil
}

// sortNewestFirst orders documents by creation time, newest first.
func sortNewestFirst[T any](items []*T, doc func(*T) *domain.Document) {
	slices.SortStableFunc(items, func(a, b *T) int {
		da, db := doc(a), doc(b)
		switch {
		case da.NewerThan(db):
			return -1
		case db.NewerThan(da):
			return 1
		default:
			return 0
		}
	})
}
