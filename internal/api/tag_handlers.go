package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/tags",
		Summary:     "List tags",
		Description: "Returns the distinct tags used by any question, sorted",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestTags",
		Method:      http.MethodGet,
		Path:        "/api/tags/suggest",
		Summary:     "Suggest tags",
		Description: "Completes a partially typed tag from the tags already in use",
		Tags:        []string{"Tags"},
	}, s.handleSuggestTags)
}

// TagsOutput wraps a tag list for Huma.
type TagsOutput struct {
	Body []string
}

// SuggestTagsInput contains query parameters for tag suggestions.
type SuggestTagsInput struct {
	Query string `query:"q" doc:"Partial tag"`
	Limit int    `query:"limit" minimum:"0" maximum:"20" doc:"Maximum suggestions (default 5)"`
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagsOutput, error) {
	tags, err := s.services.Questions.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &TagsOutput{Body: tags}, nil
}

func (s *Server) handleSuggestTags(ctx context.Context, input *SuggestTagsInput) (*TagsOutput, error) {
	tags, err := s.services.Tags.Suggest(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &TagsOutput{Body: tags}, nil
}
