package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-server/internal/domain"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
)

func TestAuthService_Register(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	user, err := ts.auth.Register(ctx, RegisterRequest{
		Username: "  alice ",
		Email:    " Alice@Example.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice@Example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	ts.signUp(t, "alice")

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "username differs only by case",
			req:  RegisterRequest{Username: "ALICE", Email: "other@example.com", Password: "correct-horse"},
		},
		{
			name: "email differs only by case",
			req:  RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "correct-horse"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.auth.Register(ctx, tt.req)
			require.ErrorIs(t, err, domainerrors.ErrConflict)
			assert.Equal(t, "User already exists", err.Error())
		})
	}

	counts, err := ts.store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Users)
}

func TestAuthService_Register_Validation(t *testing.T) {
	ts := setupServices(t)

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{name: "short username", req: RegisterRequest{Username: "al", Email: "al@example.com", Password: "correct-horse"}, field: "username"},
		{name: "username with spaces", req: RegisterRequest{Username: "al ice", Email: "al@example.com", Password: "correct-horse"}, field: "username"},
		{name: "bad email", req: RegisterRequest{Username: "alice", Email: "not-an-email", Password: "correct-horse"}, field: "email"},
		{name: "short password", req: RegisterRequest{Username: "alice", Email: "al@example.com", Password: "short"}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.auth.Register(context.Background(), tt.req)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}
}

func TestAuthService_LoginRoundTrip(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	user, err := ts.auth.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := ts.auth.Login(ctx, LoginRequest{Email: "ALICE@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(user.CreatedAt))

	identity, err := ts.auth.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: user.ID, Role: domain.RoleUser, Username: "alice"}, identity)

	me, err := ts.auth.Me(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	ts.signUp(t, "alice")

	_, err := ts.auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = ts.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Verify_Rejects(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "v4.local.AAAA"} {
		_, err := ts.auth.Verify(ctx, token)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized, "token %q", token)
	}
}
