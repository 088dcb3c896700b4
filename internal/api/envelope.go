package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/stackit/stackit-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the response
// envelope. Errors produced by RegisterErrorHandler become failure envelopes.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	default:
		return response.Ok(v), nil
	}
}
