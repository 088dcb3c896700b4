package api

import (
	"github.com/stackit/stackit-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth          *service.AuthService
	Questions     *service.QuestionService
	Answers       *service.AnswerService
	Notifications *service.NotificationService
	Tags          *service.TagSuggester
}
