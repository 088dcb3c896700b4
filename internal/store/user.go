package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackit/stackit-server/internal/domain"
)

// CreateUser creates a new user account.
// Returns ErrUsernameTaken or ErrEmailTaken when either is already registered,
// compared case-insensitively. Nothing is written in that case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.Users.Create(ctx, user.ID, user)
	var conflict *IndexConflictError
	if errors.As(err, &conflict) {
		switch conflict.Index {
		case "username":
			return ErrUsernameTaken
		case "email":
			return ErrEmailTaken
		}
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUsersByIDs fetches several users in one transaction. Unknown ids are skipped.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	users, err := s.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "username", username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}
