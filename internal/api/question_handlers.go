package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/service"
)

func (s *Server) registerQuestionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createQuestion",
		Method:        http.MethodPost,
		Path:          "/api/questions",
		Summary:       "Ask a question",
		Description:   "Creates a question. Tags are normalized and deduplicated.",
		Tags:          []string{"Questions"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateQuestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "listQuestions",
		Method:      http.MethodGet,
		Path:        "/api/questions",
		Summary:     "List questions",
		Description: "Returns every question, newest first, with authors resolved",
		Tags:        []string{"Questions"},
	}, s.handleListQuestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getQuestion",
		Method:      http.MethodGet,
		Path:        "/api/questions/{id}",
		Summary:     "Get question",
		Description: "Returns a question with its answers in posting order",
		Tags:        []string{"Questions"},
	}, s.handleGetQuestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "voteQuestion",
		Method:      http.MethodPost,
		Path:        "/api/questions/vote/{id}",
		Summary:     "Vote on question",
		Description: "Adds one vote up or down",
		Tags:        []string{"Questions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleVoteQuestion)
}

// === DTOs ===

// CreateQuestionRequest is the request body for asking a question.
type CreateQuestionRequest struct {
	Title       string   `json:"title" doc:"Question title, at most 150 characters"`
	Description string   `json:"description" doc:"Question body as HTML from the rich text editor"`
	Tags        []string `json:"tags" doc:"Between 1 and 5 tags"`
}

// CreateQuestionInput wraps the create question request for Huma.
type CreateQuestionInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          CreateQuestionRequest
}

// QuestionOutput wraps a question response for Huma.
type QuestionOutput struct {
	Body dto.Question
}

// ListQuestionsInput contains query parameters for listing questions.
type ListQuestionsInput struct {
	Filter string `query:"filter" doc:"newest (default), unanswered, answered or active"`
	Query  string `query:"q" doc:"Case-insensitive text to look for in titles, descriptions and tags"`
	Tag    string `query:"tag" doc:"Only questions carrying this tag"`
}

// ListQuestionsOutput wraps the question list for Huma.
type ListQuestionsOutput struct {
	Body []dto.Question
}

// GetQuestionInput contains parameters for getting a question.
type GetQuestionInput struct {
	ID string `path:"id" doc:"Question ID"`
}

// QuestionDetailOutput wraps a question with its answers for Huma.
type QuestionDetailOutput struct {
	Body dto.QuestionDetail
}

// VoteRequest is the request body for votes.
type VoteRequest struct {
	Direction string `json:"direction,omitempty" doc:"up or down"`
}

// VoteQuestionInput wraps the vote request for Huma.
type VoteQuestionInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Question ID"`
	Body          VoteRequest
}

// === Handlers ===

func (s *Server) handleCreateQuestion(ctx context.Context, input *CreateQuestionInput) (*QuestionOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	q, err := s.services.Questions.Create(ctx, actor, service.CreateQuestionRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &QuestionOutput{Body: *q}, nil
}

func (s *Server) handleListQuestions(ctx context.Context, input *ListQuestionsInput) (*ListQuestionsOutput, error) {
	questions, err := s.services.Questions.List(ctx, service.ListQuestionsParams{
		Filter: input.Filter,
		Query:  input.Query,
		Tag:    input.Tag,
	})
	if err != nil {
		return nil, err
	}

	return &ListQuestionsOutput{Body: questions}, nil
}

func (s *Server) handleGetQuestion(ctx context.Context, input *GetQuestionInput) (*QuestionDetailOutput, error) {
	detail, err := s.services.Questions.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &QuestionDetailOutput{Body: *detail}, nil
}

func (s *Server) handleVoteQuestion(ctx context.Context, input *VoteQuestionInput) (*QuestionOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	q, err := s.services.Questions.Vote(ctx, actor, input.ID, input.Body.Direction)
	if err != nil {
		return nil, err
	}

	return &QuestionOutput{Body: *q}, nil
}
