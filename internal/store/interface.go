// Package store persists StackIt entities.
//
// The default backend is an embedded Badger key-value store built on the
// generic Entity[T]; package sqlite provides the same Repository on SQLite.
// Entities reference each other by id only.
package store

import (
	"context"

	"github.com/stackit/stackit-server/internal/domain"
)

// Repository defines every persistence operation the services need.
//
// Multi-entity writes (PostAnswer, AcceptAnswer) are atomic: either all of
// their writes are visible or none are.
type Repository interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	Backend() string
	Counts(ctx context.Context) (Counts, error)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Questions
	CreateQuestion(ctx context.Context, q *domain.Question) error
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)
	ListQuestions(ctx context.Context) ([]*domain.Question, error)
	ListQuestionsByTag(ctx context.Context, tag string) ([]*domain.Question, error)
	ListTags(ctx context.Context) ([]string, error)
	VoteQuestion(ctx context.Context, id string, delta int) (*domain.Question, error)

	// Answers
	PostAnswer(ctx context.Context, answer *domain.Answer, notification *domain.Notification) error
	GetAnswer(ctx context.Context, id string) (*domain.Answer, error)
	GetAnswersByIDs(ctx context.Context, ids []string) ([]*domain.Answer, error)
	VoteAnswer(ctx context.Context, id string, delta int) (*domain.Answer, error)
	AcceptAnswer(ctx context.Context, id string) (*domain.Answer, error)

	// Notifications
	ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
}

// Counts holds the number of stored records per entity.
type Counts struct {
	Users         int `json:"users"`
	Questions     int `json:"questions"`
	Answers       int `json:"answers"`
	Notifications int `json:"notifications"`
}
