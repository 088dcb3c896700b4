package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Register new user",
		Description:   "Creates a user account. Usernames and emails are unique, compared case-insensitively. No token is issued.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Verifies credentials and returns an identity token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Get current user",
		Description: "Returns the account the identity token was issued for",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" doc:"3 to 30 letters, digits, underscores or hyphens"`
	Email    string `json:"email" doc:"User email address"`
	Password string `json:"password" doc:"User password, at least 8 characters"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginResponse contains the identity token and the user it names.
type LoginResponse struct {
	Token     string    `json:"token" doc:"PASETO identity token, sent back as a Bearer token"`
	ExpiresAt time.Time `json:"expires_at" doc:"When the token stops being accepted"`
	User      dto.User  `json:"user" doc:"Authenticated user"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// AuthenticatedInput carries only the Authorization header.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body dto.User
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*MessageOutput, error) {
	_, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "User registered successfully"}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Body: LoginResponse{
			Token:     resp.Token,
			ExpiresAt: resp.ExpiresAt,
			User:      dto.NewUser(resp.User),
		},
	}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthenticatedInput) (*UserOutput, error) {
	actor, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: dto.NewUser(user)}, nil
}
