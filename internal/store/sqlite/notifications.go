package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/store"
)

const notificationColumns = `id, created_at, updated_at, user_id, type, message, is_read,
	question_id, answer_id, actor_id`

type notificationRow struct {
	ID         string `db:"id"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
	UserID     string `db:"user_id"`
	Type       string `db:"type"`
	Message    string `db:"message"`
	IsRead     bool   `db:"is_read"`
	QuestionID string `db:"question_id"`
	AnswerID   string `db:"answer_id"`
	ActorID    string `db:"actor_id"`
}

func (r *notificationRow) toDomain() (*domain.Notification, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n := &domain.Notification{
		UserID:     r.UserID,
		Type:       domain.NotificationType(r.Type),
		Message:    r.Message,
		IsRead:     r.IsRead,
		QuestionID: r.QuestionID,
		AnswerID:   r.AnswerID,
		ActorID:    r.ActorID,
	}
	n.ID = r.ID
	n.CreatedAt = created
	n.UpdatedAt = updated
	return n, nil
}

func insertNotification(ctx context.Context, tx *sqlx.Tx, n *domain.Notification) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
		n.UserID, string(n.Type), n.Message, n.IsRead,
		n.QuestionID, n.AnswerID, n.ActorID,
	)
	if isPrimaryKeyViolation(err, "notifications") {
		return store.ErrAlreadyExists
	}
	return err
}

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]*domain.Notification, 0, len(rows))
	for i := range rows {
		n, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkAllNotificationsRead flags every unread notification of the user as
// read and returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1, updated_at = ? WHERE user_id = ? AND is_read = 0",
		formatTime(nowUTC()), userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(n), nil
}

// CountUnreadNotifications returns the number of unread notifications of the user.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
