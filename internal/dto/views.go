// Package dto provides Data Transfer Objects for API responses.
//
// Stored entities reference each other by id only. DTOs carry the joined
// display fields (author usernames, answers) so a client can render a
// response without further requests.
package dto

import (
	"time"

	"github.com/gosimple/slug"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/richtext"
)

// UserSummary is the public face of a user attached to content.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"` // Empty when the user no longer exists
	AvatarColor string `json:"avatar_color"`
}

// User is the client-facing representation of the current user.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	AvatarColor string      `json:"avatar_color"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Question is the client-facing representation of a question in listings.
type Question struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Slug              string      `json:"slug"`
	Description       string      `json:"description"`
	Excerpt           string      `json:"excerpt"`
	Tags              []string    `json:"tags"`
	Votes             int         `json:"votes"`
	AnswerCount       int         `json:"answer_count"`
	HasAcceptedAnswer bool        `json:"has_accepted_answer"`
	AcceptedAnswerID  string      `json:"accepted_answer_id,omitempty"`
	Author            UserSummary `json:"author"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// QuestionDetail is a question with its answers, in posting order.
type QuestionDetail struct {
	Question
	DescriptionMarkdown string   `json:"description_markdown"`
	Answers             []Answer `json:"answers"`
}

// Answer is the client-facing representation of an answer.
type Answer struct {
	ID         string      `json:"id"`
	QuestionID string      `json:"question_id"`
	Content         string      `json:"content"`
	ContentMarkdown string      `json:"content_markdown"`
	Votes           int         `json:"votes"`
	IsAccepted      bool        `json:"is_accepted"`
	Author          UserSummary `json:"author"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Notification is the client-facing representation of a notification.
type Notification struct {
	ID         string                  `json:"id"`
	Type       domain.NotificationType `json:"type"`
	Message    string                  `json:"message"`
	IsRead     bool                    `json:"is_read"`
	QuestionID string                  `json:"question_id,omitempty"`
	AnswerID   string                  `json:"answer_id,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// NewUser converts a stored user, dropping the password hash.
func NewUser(u *domain.User) User {
	return User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		AvatarColor: AvatarColor(u.ID),
		CreatedAt:   u.CreatedAt,
	}
}

// NewNotifications converts stored notifications, keeping their order.
func NewNotifications(ns []*domain.Notification) []Notification {
	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, Notification{
			ID:         n.ID,
			Type:       n.Type,
			Message:    n.Message,
			IsRead:     n.IsRead,
			QuestionID: n.QuestionID,
			AnswerID:   n.AnswerID,
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}

func newQuestion(q *domain.Question, author UserSummary) Question {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return Question{
		ID:                q.ID,
		Title:             q.Title,
		Slug:              slug.Make(q.Title),
		Description:       q.Description,
		Excerpt:           richtext.Excerpt(q.Description, richtext.ExcerptLength),
		Tags:              tags,
		Votes:             q.Votes,
		AnswerCount:       q.AnswerCount(),
		HasAcceptedAnswer: q.AcceptedAnswerID != "",
		AcceptedAnswerID:  q.AcceptedAnswerID,
		Author:            author,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func newAnswer(a *domain.Answer, author UserSummary) Answer {
	return Answer{
		ID:              a.ID,
		QuestionID:      a.QuestionID,
		Content:         a.Content,
		ContentMarkdown: richtext.ToMarkdown(a.Content),
		Votes:           a.Votes,
		IsAccepted:      a.IsAccepted,
		Author:          author,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
