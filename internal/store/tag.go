package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/domain"
)

// Tags are not entities of their own. The question "tag" list index doubles
// as the tag catalog: question:lidx:tag:{tag}:{questionID} → empty.

// ListTags returns the distinct tags used by any question, sorted ascending.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(questionPrefix + listIndexMarker + "tag:")
	tags := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			sep := strings.LastIndexByte(rest, ':')
			if sep <= 0 {
				continue
			}
			tags = append(tags, rest[:sep])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	slices.Sort(tags)
	return slices.Compact(tags), nil
}

// ListQuestionsByTag returns the questions carrying tag, newest first.
// tag must already be normalized.
func (s *Store) ListQuestionsByTag(ctx context.Context, tag string) ([]*domain.Question, error) {
	questions, err := s.Questions.ListByIndex(ctx, "tag", tag)
	if err != nil {
		return nil, fmt.Errorf("list questions by tag: %w", err)
	}
	sortNewestFirst(questions, func(q *domain.Question) *domain.Document { return &q.Document })
	return questions, nil
}
