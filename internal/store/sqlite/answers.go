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

const answerColumns = `id, created_at, updated_at, question_id, author_id, content, votes, is_accepted`

type answerRow struct {
	ID         string `db:"id"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
	QuestionID string `db:"question_id"`
	AuthorID   string `db:"author_id"`
	Content    string `db:"content"`
	Votes      int    `db:"votes"`
	IsAccepted bool   `db:"is_accepted"`
}

func (r *answerRow) toDomain() (*domain.Answer, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a := &domain.Answer{
		QuestionID: r.QuestionID,
		AuthorID:   r.AuthorID,
		Content:    r.Content,
		Votes:      r.Votes,
		IsAccepted: r.IsAccepted,
	}
	a.ID = r.ID
	a.CreatedAt = created
	a.UpdatedAt = updated
	return a, nil
}

// PostAnswer inserts the answer at the end of its question's list, touches the
// question and inserts the optional notification, in one transaction.
// Returns store.ErrQuestionNotFound if the question does not exist.
func (s *Store) PostAnswer(ctx context.Context, answer *domain.Answer, notification *domain.Notification) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE questions SET updated_at = ? WHERE id = ?",
			formatTime(nowUTC()), answer.QuestionID)
		if err != nil {
			return fmt.Errorf("question: %w", err)
		}
		if err := requireRow(res, store.ErrQuestionNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO answers (`+answerColumns+`, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?,
				(SELECT COALESCE(MAX(position), -1) + 1 FROM answers WHERE question_id = ?))`,
			answer.ID, formatTime(answer.CreatedAt), formatTime(answer.UpdatedAt),
			answer.QuestionID, answer.AuthorID, answer.Content, answer.Votes, answer.IsAccepted,
			answer.QuestionID,
		)
		if isPrimaryKeyViolation(err, "answers") {
			return fmt.Errorf("answer: %w", store.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("answer: %w", err)
		}

		if notification != nil {
			if err := insertNotification(ctx, tx, notification); err != nil {
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
	return getAnswer(ctx, s.db, id)
}

// GetAnswersByIDs fetches several answers, in the order given. Unknown ids are skipped.
func (s *Store) GetAnswersByIDs(ctx context.Context, ids []string) ([]*domain.Answer, error) {
	if len(ids) == 0 {
		return []*domain.Answer{}, nil
	}

	query, args, err := sqlx.In("SELECT "+answerColumns+" FROM answers WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build answers query: %w", err)
	}

	var rows []answerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}

	byID := make(map[string]*domain.Answer, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		byID[a.ID] = a
	}

	out := make([]*domain.Answer, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// VoteAnswer adds delta to the answer's vote count and returns the updated answer.
func (s *Store) VoteAnswer(ctx context.Context, id string, delta int) (*domain.Answer, error) {
	var a *domain.Answer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE answers SET votes = votes + ?, updated_at = ? WHERE id = ?",
			delta, formatTime(nowUTC()), id)
		if err != nil {
			return err
		}
		if err := requireRow(res, store.ErrAnswerNotFound); err != nil {
			return err
		}
		a, err = getAnswer(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("vote answer: %w", err)
	}
	return a, nil
}

// AcceptAnswer clears every other accepted answer of the question, accepts
// the target and records it on the question, in one transaction. Accepting
// the already accepted answer writes nothing.
// Ownership is not checked here.
func (s *Store) AcceptAnswer(ctx context.Context, id string) (*domain.Answer, error) {
	var target *domain.Answer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		target, err = getAnswer(ctx, tx, id)
		if err != nil {
			return err
		}
		q, err := getQuestion(ctx, tx, target.QuestionID)
		if err != nil {
			return err
		}
		if target.IsAccepted && q.AcceptedAnswerID == target.ID {
			return nil
		}

		now := formatTime(nowUTC())
		// Clear first: the partial unique index allows one accepted row per question.
		if _, err := tx.ExecContext(ctx, `
			UPDATE answers SET is_accepted = 0, updated_at = ?
			WHERE question_id = ? AND is_accepted = 1 AND id <> ?`,
			now, q.ID, target.ID); err != nil {
			return fmt.Errorf("clear accepted: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE answers SET is_accepted = 1, updated_at = ? WHERE id = ?", now, target.ID); err != nil {
			return fmt.Errorf("set accepted: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE questions SET accepted_answer_id = ?, updated_at = ? WHERE id = ?", target.ID, now, q.ID); err != nil {
			return fmt.Errorf("record accepted: %w", err)
		}

		target, err = getAnswer(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("accept answer: %w", err)
	}
	return target, nil
}

func getAnswer(ctx context.Context, db sqlx.QueryerContext, id string) (*domain.Answer, error) {
	var row answerRow
	err := sqlx.GetContext(ctx, db, &row, "SELECT "+answerColumns+" FROM answers WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return row.toDomain()
}
