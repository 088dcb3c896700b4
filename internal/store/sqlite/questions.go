package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/store"
)

const questionColumns = `q.id, q.created_at, q.updated_at, q.title, q.description,
	q.author_id, q.votes, q.accepted_answer_id`

type questionRow struct {
	ID               string `db:"id"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
	Title            string `db:"title"`
	Description      string `db:"description"`
	AuthorID         string `db:"author_id"`
	Votes            int    `db:"votes"`
	AcceptedAnswerID string `db:"accepted_answer_id"`
}

func (r *questionRow) toDomain() (*domain.Question, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q := &domain.Question{
		Title:            r.Title,
		Description:      r.Description,
		Tags:             []string{},
		AuthorID:         r.AuthorID,
		AnswerIDs:        []string{},
		Votes:            r.Votes,
		AcceptedAnswerID: r.AcceptedAnswerID,
	}
	q.ID = r.ID
	q.CreatedAt = created
	q.UpdatedAt = updated
	return q, nil
}

// CreateQuestion inserts a question and its tags in one transaction.
func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, created_at, updated_at, title, description, author_id, votes, accepted_answer_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, formatTime(q.CreatedAt), formatTime(q.UpdatedAt),
			q.Title, q.Description, q.AuthorID, q.Votes, q.AcceptedAnswerID,
		)
		if isPrimaryKeyViolation(err, "questions") {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}

		stmt, err := tx.PreparexContext(ctx,
			"INSERT INTO question_tags (question_id, tag, position) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare tag insert: %w", err)
		}
		defer stmt.Close()

		for i, tag := range q.Tags {
			if _, err := stmt.ExecContext(ctx, q.ID, tag, i); err != nil {
				return fmt.Errorf("insert tag %q: %w", tag, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question with its tags and answer ids.
func (s *Store) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	q, err := getQuestion(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := loadQuestionRelations(ctx, s.db, []*domain.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuestions returns every question, newest first.
func (s *Store) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	return s.selectQuestions(ctx, "SELECT "+questionColumns+" FROM questions q ORDER BY q.created_at DESC, q.id DESC")
}

// ListQuestionsByTag returns the questions carrying tag, newest first.
func (s *Store) ListQuestionsByTag(ctx context.Context, tag string) ([]*domain.Question, error) {
	return s.selectQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM questions q
		JOIN question_tags t ON t.question_id = q.id
		WHERE t.tag = ?
		ORDER BY q.created_at DESC, q.id DESC`, tag)
}

// ListTags returns the distinct tags used by any question, sorted ascending.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	if err := s.db.SelectContext(ctx, &tags, "SELECT DISTINCT tag FROM question_tags ORDER BY tag"); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// VoteQuestion adds delta to the question's vote count and returns the
// updated question.
func (s *Store) VoteQuestion(ctx context.Context, id string, delta int) (*domain.Question, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE questions SET votes = votes + ?, updated_at = ? WHERE id = ?",
			delta, formatTime(nowUTC()), id)
		if err != nil {
			return err
		}
		return requireRow(res, store.ErrQuestionNotFound)
	})
	if err != nil {
		return nil, fmt.Errorf("vote question: %w", err)
	}
	return s.GetQuestion(ctx, id)
}

func (s *Store) selectQuestions(ctx context.Context, query string, args ...any) ([]*domain.Question, error) {
	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		q, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := loadQuestionRelations(ctx, s.db, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func getQuestion(ctx context.Context, db sqlx.QueryerContext, id string) (*domain.Question, error) {
	var row questionRow
	err := sqlx.GetContext(ctx, db, &row, "SELECT "+questionColumns+" FROM questions q WHERE q.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return row.toDomain()
}

// loadQuestionRelations fills Tags and AnswerIDs, in stored order, with one
// query each.
func loadQuestionRelations(ctx context.Context, db sqlx.QueryerContext, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Question, len(questions))
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
		ids = append(ids, q.ID)
	}

	type pair struct {
		QuestionID string `db:"question_id"`
		Value      string `db:"value"`
	}

	query, args, err := sqlx.In(
		"SELECT question_id, tag AS value FROM question_tags WHERE question_id IN (?) ORDER BY question_id, position", ids)
	if err != nil {
		return err
	}
	var tags []pair
	if err := sqlx.SelectContext(ctx, db, &tags, query, args...); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, p := range tags {
		byID[p.QuestionID].Tags = append(byID[p.QuestionID].Tags, p.Value)
	}

	query, args, err = sqlx.In(
		"SELECT question_id, id AS value FROM answers WHERE question_id IN (?) ORDER BY question_id, position", ids)
	if err != nil {
		return err
	}
	var answers []pair
	if err := sqlx.SelectContext(ctx, db, &answers, query, args...); err != nil {
		return fmt.Errorf("load answer ids: %w", err)
	}
	for _, p := range answers {
		byID[p.QuestionID].AnswerIDs = append(byID[p.QuestionID].AnswerIDs, p.Value)
	}
	return nil
}
