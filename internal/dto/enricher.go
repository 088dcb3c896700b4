package dto

import (
	"context"
	"fmt"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/richtext"
)

// Store defines the interface for fetching related entities during enrichment.
type Store interface {
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetAnswersByIDs(ctx context.Context, ids []string) ([]*domain.Answer, error)
}

// Enricher joins stored entities into response views.
//
// Design philosophy:
//   - Batch fetching: one lookup per entity type per response, never per row
//   - Graceful degradation: a missing author yields an empty username, not an error
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// Questions builds listing views, resolving every author with one fetch.
func (e *Enricher) Questions(ctx context.Context, questions []*domain.Question) ([]Question, error) {
	if len(questions) == 0 {
		return []Question{}, nil
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.AuthorID)
	}
	authors, err := e.users(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, newQuestion(q, authors.summary(q.AuthorID)))
	}
	return out, nil
}

// QuestionDetail builds the full view of one question: its author, its
// answers in list order and each answer's author. Two fetches in total.
func (e *Enricher) QuestionDetail(ctx context.Context, q *domain.Question) (*QuestionDetail, error) {
	answers, err := e.store.GetAnswersByIDs(ctx, q.AnswerIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch answers: %w", err)
	}

	ids := make([]string, 0, len(answers)+1)
	ids = append(ids, q.AuthorID)
	for _, a := range answers {
		ids = append(ids, a.AuthorID)
	}
	authors, err := e.users(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &QuestionDetail{
		Question:            newQuestion(q, authors.summary(q.AuthorID)),
		DescriptionMarkdown: richtext.ToMarkdown(q.Description),
		Answers:             make([]Answer, 0, len(answers)),
	}
	for _, a := range answers {
		detail.Answers = append(detail.Answers, newAnswer(a, authors.summary(a.AuthorID)))
	}
	return detail, nil
}

// Question builds the listing view of a single question.
func (e *Enricher) Question(ctx context.Context, q *domain.Question) (*Question, error) {
	views, err := e.Questions(ctx, []*domain.Question{q})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Answer builds the view of a single answer with its author resolved.
func (e *Enricher) Answer(ctx context.Context, a *domain.Answer) (*Answer, error) {
	authors, err := e.users(ctx, []string{a.AuthorID})
	if err != nil {
		return nil, err
	}
	view := newAnswer(a, authors.summary(a.AuthorID))
	return &view, nil
}

type userMap map[string]*domain.User

func (m userMap) summary(id string) UserSummary {
	s := UserSummary{ID: id, AvatarColor: AvatarColor(id)}
	if u, ok := m[id]; ok {
		s.Username = u.Username
	}
	return s
}

// users batch-fetches the distinct users among ids.
func (e *Enricher) users(ctx context.Context, ids []string) (userMap, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	m := make(userMap, len(unique))
	if len(unique) == 0 {
		return m, nil
	}

	users, err := e.store.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	for _, u := range users {
		m[u.ID] = u
	}
	return m, nil
}
