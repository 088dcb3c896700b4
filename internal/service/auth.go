package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/domain"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/id"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/validation"
)

// AuthService handles registration, login and identity token verification.
type AuthService struct {
	store     store.Repository
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Repository, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    orDiscard(logger),
	}
}

// RegisterRequest contains the data for creating an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains credentials for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the identity token and the user it was issued for.
type LoginResponse struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates a user account. No token is issued: the client logs in
// separately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Don't reveal which field collided
		if errors.Is(err, store.ErrUsernameTaken) || errors.Is(err, store.ErrEmailTaken) {
			return nil, domainerrors.Conflict("User already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered",
		"user_id", userID,
		"username", user.Username,
	)

	return user, nil
}

// Login verifies credentials and issues an identity token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether email exists
			return nil, domainerrors.InvalidCredentials("Invalid credentials")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("Invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Verify checks an identity token and returns the acting user it names.
func (s *AuthService) Verify(_ context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domainerrors.Unauthorized("No token, authorization denied")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("Token rejected", "error", err)
		return domain.Identity{}, domainerrors.Unauthorized("Token is not valid")
	}
	return claims.Identity(), nil
}

// Me returns the stored account of the acting user.
func (s *AuthService) Me(ctx context.Context, actor domain.Identity) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("User no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
