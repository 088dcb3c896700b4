package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/id"
)

const (
	tokenIssuer   = "stackit-server"
	tokenAudience = "stackit-client"
)

// ErrInvalidToken is returned for any token that fails to decrypt or validate.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the contents of an identity token. v4.local tokens are
// encrypted, so clients cannot read them without the key.
type Claims struct {
	UserID   string      `json:"user_id"`
	Role     domain.Role `json:"role"`
	Username string      `json:"username"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity returns the acting-user view of the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, Role: c.Role, Username: c.Username}
}

// TokenService issues and verifies PASETO v4.local identity tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, ttl time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: symmetricKey,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Issue creates a token for user carrying {user_id, role, username}.
// It returns the token and its expiry.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(tokenID)

	for key, value := range map[string]string{
		"user_id":  user.ID,
		"role":     string(user.Role),
		"username": user.Username,
	} {
		if err := token.Set(key, value); err != nil {
			return "", time.Time{}, fmt.Errorf("set claim %s: %w", key, err)
		}
	}

	return token.V4Encrypt(s.symmetricKey, nil), expiresAt, nil
}

// Verify decrypts and validates a token. Any failure, including expiry,
// is reported as ErrInvalidToken wrapping the cause.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return &claims, nil
}
