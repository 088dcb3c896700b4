package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/store"
)

// NotificationService reads and acknowledges the acting user's notifications.
type NotificationService struct {
	store  store.Repository
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store store.Repository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: orDiscard(logger),
	}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor domain.Identity) ([]dto.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return dto.NewNotifications(notifications), nil
}

// MarkAllRead marks every unread notification of the actor as read and
// returns how many changed. Calling it again returns 0.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Identity) (int, error) {
	updated, err := s.store.MarkAllNotificationsRead(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	if updated > 0 {
		s.logger.Info("Notifications marked read",
			"user_id", actor.UserID,
			"updated", updated,
		)
	}
	return updated, nil
}

// UnreadCount returns the number of unread notifications of the actor.
func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Identity) (int, error) {
	count, err := s.store.CountUnreadNotifications(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
