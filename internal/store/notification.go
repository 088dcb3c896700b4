package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/domain"
)

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.Notifications.ListByIndex(ctx, "user", userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	sortNewestFirst(notifications, func(n *domain.Notification) *domain.Document { return &n.Document })
	return notifications, nil
}

// MarkAllNotificationsRead flags every unread notification of the user as read
// and returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	updated := 0
	err := s.update(ctx, func(txn *badger.Txn) error {
		updated = 0
		notifications, err := s.Notifications.listByIndexTx(txn, "user", userID)
		if err != nil {
			return err
		}
		for _, n := range notifications {
			if !n.MarkRead() {
				continue
			}
			if err := s.Notifications.updateTx(txn, n.ID, n); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return updated, nil
}

// CountUnreadNotifications returns the number of unread notifications of the user.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	notifications, err := s.Notifications.ListByIndex(ctx, "user", userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	n := 0
	for _, notification := range notifications {
		if !notification.IsRead {
			n++
		}
	}
	return n, nil
}
