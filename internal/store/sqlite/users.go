package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/store"
)

// userColumns must match the db tags of userRow.
const userColumns = `id, created_at, updated_at, username, username_lower,
	email, email_lower, password_hash, role`

type userRow struct {
	ID            string `db:"id"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
	Username      string `db:"username"`
	UsernameLower string `db:"username_lower"`
	Email         string `db:"email"`
	EmailLower    string `db:"email_lower"`
	PasswordHash  string `db:"password_hash"`
	Role          string `db:"role"`
}

func (r *userRow) toDomain() (*domain.User, error) {
	created, updated, err := parseTimes(r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
	}
	u.ID = r.ID
	u.CreatedAt = created
	u.UpdatedAt = updated
	return u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrUsernameTaken or store.ErrEmailTaken on a duplicate,
// compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		domain.NormalizeUsername(user.Username),
		user.Email,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		string(user.Role),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, "users.username_lower"):
		return store.ErrUsernameTaken
	case isUniqueViolation(err, "users.email_lower"):
		return store.ErrEmailTaken
	case isPrimaryKeyViolation(err, "users"):
		return store.ErrAlreadyExists
	default:
		return fmt.Errorf("insert user: %w", err)
	}
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email_lower = ?", domain.NormalizeEmail(email))
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, "username_lower = ?", domain.NormalizeUsername(username))
}

func (s *Store) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain()
}

// GetUsersByIDs fetches several users, in the order given. Unknown ids are skipped.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build users query: %w", err)
	}

	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	byID := make(map[string]*domain.User, len(rows))
	for i := range rows {
		u, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		byID[u.ID] = u
	}

	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
