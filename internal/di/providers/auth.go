package providers

import (
	"github.com/samber/do/v2"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/logger"
)

// AuthKey wraps the identity token key bytes.
type AuthKey []byte

// ProvideAuthKey uses the configured key, or loads or generates one in the
// data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	configured := len(cfg.Auth.TokenKey) > 0
	key, err := auth.ResolveKey(cfg.Auth.TokenKey, cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.TokenKey = key

	log.Info("Authentication key loaded",
		"configured", configured,
		"token_duration", cfg.Auth.TokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.TokenDuration)
}
