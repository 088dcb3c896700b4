package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stackit/stackit-server/internal/dto"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/notifications",
		Summary:     "List notifications",
		Description: "Returns the current user's notifications, newest first",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/notifications/mark-read",
		Summary:     "Mark all notifications read",
		Description: "Marks every unread notification of the current user as read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkNotificationsRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "countUnreadNotifications",
		Method:      http.MethodGet,
		Path:        "/api/notifications/unread-count",
		Summary:     "Count unread notifications",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCountUnreadNotifications)
}

// NotificationsOutput wraps the notification list for Huma.
type NotificationsOutput struct {
	Body []dto.Notification
}

// MarkReadResponse reports how many notifications changed.
type MarkReadResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated" doc:"Number of notifications that were unread"`
}

// MarkReadOutput wraps the mark-read response for Huma.
type MarkReadOutput struct {
	Body MarkReadResponse
}

// UnreadCountResponse carries the unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadCountOutput wraps the unread count for Huma.
type UnreadCountOutput struct {
	Body UnreadCountResponse
}

func (s *Server) handleListNotifications(ctx context.Context, input *AuthenticatedInput) (*NotificationsOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	notifications, err := s.services.Notifications.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &NotificationsOutput{Body: notifications}, nil
}

func (s *Server) handleMarkNotificationsRead(ctx context.Context, input *AuthenticatedInput) (*MarkReadOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Notifications.MarkAllRead(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &MarkReadOutput{
		Body: MarkReadResponse{
			Message: "All notifications marked as read",
			Updated: updated,
		},
	}, nil
}

func (s *Server) handleCountUnreadNotifications(ctx context.Context, input *AuthenticatedInput) (*UnreadCountOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Notifications.UnreadCount(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &UnreadCountOutput{Body: UnreadCountResponse{Count: count}}, nil
}
