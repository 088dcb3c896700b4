package api

import (
	"context"
	"strings"

	"github.com/stackit/stackit-server/internal/domain"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the
// acting user.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (domain.Identity, error) {
	if authHeader == "" {
		return domain.Identity{}, domainerrors.Unauthorized("No token, authorization denied")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Identity{}, domainerrors.Unauthorized("Invalid authorization header format")
	}

	return s.services.Auth.Verify(ctx, strings.TrimSpace(token))
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message" doc:"Outcome of the request"`
}
