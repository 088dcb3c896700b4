package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/service"
)

func (s *Server) registerAnswerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "postAnswer",
		Method:        http.MethodPost,
		Path:          "/api/answers/{questionId}",
		Summary:       "Answer a question",
		Description:   "Posts an answer. The question's author is notified unless they answered themselves.",
		Tags:          []string{"Answers"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handlePostAnswer)

	huma.Register(s.api, huma.Operation{
		OperationID: "voteAnswer",
		Method:      http.MethodPost,
		Path:        "/api/answers/vote/{answerId}",
		Summary:     "Vote on answer",
		Description: "Adds one vote up or down",
		Tags:        []string{"Answers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleVoteAnswer)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptAnswer",
		Method:      http.MethodPatch,
		Path:        "/api/answers/accept/{answerId}",
		Summary:     "Accept answer",
		Description: "Marks the answer as accepted and clears any previously accepted answer. Only the question's author may accept.",
		Tags:        []string{"Answers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptAnswer)
}

// === DTOs ===

// PostAnswerRequest is the request body for answering.
type PostAnswerRequest struct {
	Content string `json:"content" doc:"Answer body as HTML from the rich text editor"`
}

// PostAnswerInput wraps the answer request for Huma.
type PostAnswerInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	QuestionID    string `path:"questionId" doc:"Question ID"`
	Body          PostAnswerRequest
}

// AnswerOutput wraps an answer response for Huma.
type AnswerOutput struct {
	Body dto.Answer
}

// VoteAnswerInput wraps the vote request for Huma.
type VoteAnswerInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	AnswerID      string `path:"answerId" doc:"Answer ID"`
	Body          VoteRequest
}

// AcceptAnswerInput contains parameters for accepting an answer.
type AcceptAnswerInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	AnswerID      string `path:"answerId" doc:"Answer ID"`
}

// AcceptAnswerResponse contains the accepted answer.
type AcceptAnswerResponse struct {
	Message string     `json:"message"`
	Answer  dto.Answer `json:"answer"`
}

// AcceptAnswerOutput wraps the accept response for Huma.
type AcceptAnswerOutput struct {
	Body AcceptAnswerResponse
}

// === Handlers ===

func (s *Server) handlePostAnswer(ctx context.Context, input *PostAnswerInput) (*AnswerOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	answer, err := s.services.Answers.Post(ctx, actor, input.QuestionID, service.PostAnswerRequest{
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &AnswerOutput{Body: *answer}, nil
}

func (s *Server) handleVoteAnswer(ctx context.Context, input *VoteAnswerInput) (*AnswerOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	answer, err := s.services.Answers.Vote(ctx, actor, input.AnswerID, input.Body.Direction)
	if err != nil {
		return nil, err
	}

	return &AnswerOutput{Body: *answer}, nil
}

func (s *Server) handleAcceptAnswer(ctx context.Context, input *AcceptAnswerInput) (*AcceptAnswerOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	answer, err := s.services.Answers.Accept(ctx, actor, input.AnswerID)
	if err != nil {
		return nil, err
	}

	return &AcceptAnswerOutput{
		Body: AcceptAnswerResponse{
			Message: "Answer marked as accepted",
			Answer:  *answer,
		},
	}, nil
}
