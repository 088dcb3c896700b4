package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "STORE_BACKEND", "SERVER_PORT",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "AUTH_TOKEN_KEY", "AUTH_TOKEN_DURATION", "QUESTIONS_MAX_TAGS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/var/lib/stackit", Backend: BackendBadger},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Auth:      AuthConfig{TokenDuration: time.Hour},
		Questions: QuestionsConfig{MaxTags: 5},
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Nil(t, cfg.Auth.TokenKey)
	assert.Equal(t, 5, cfg.Questions.MaxTags)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(strings.Join([]string{
		"# comment",
		"SERVER_PORT=7000",
		"LOG_LEVEL=warn",
		`CORS_ALLOWED_ORIGINS="http://a.test, http://b.test"`,
	}, "\n")), 0o600))

	// Environment beats .env, flags beat both.
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{"-data-path", dir, "-env-file", envFile, "-port", "9100"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestLoad_TokenKey(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("AUTH_TOKEN_KEY", strings.Repeat("ab", 32))

	cfg, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.TokenKey, 32)
}

func TestLoad_FailsFast(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "bad duration", args: []string{"-token-duration", "soon"}},
		{name: "zero duration", env: map[string]string{"AUTH_TOKEN_DURATION": "0s"}},
		{name: "bad key hex", env: map[string]string{"AUTH_TOKEN_KEY": "zz"}},
		{name: "short key", env: map[string]string{"AUTH_TOKEN_KEY": "abcd"}},
		{name: "unknown backend", args: []string{"-store", "mongo"}},
		{name: "bad max tags", env: map[string]string{"QUESTIONS_MAX_TAGS": "five"}},
		{name: "bad env", args: []string{"-env", "test"}},
		{name: "unknown flag", args: []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "none")}, tt.args...)

			_, err := Load(args)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "sqlite backend", mutate: func(c *Config) { c.Storage.Backend = BackendSQLite }},
		{name: "empty env", mutate: func(c *Config) { c.App.Environment = "" }, wantErr: true},
		{name: "uppercase env", mutate: func(c *Config) { c.App.Environment = "DEVELOPMENT" }, wantErr: true},
		{name: "uppercase level ok", mutate: func(c *Config) { c.Logger.Level = "DEBUG" }},
		{name: "bad level", mutate: func(c *Config) { c.Logger.Level = "trace" }, wantErr: true},
		{name: "empty data path", mutate: func(c *Config) { c.Storage.DataPath = "" }, wantErr: true},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -time.Second }, wantErr: true},
		{name: "31 byte key", mutate: func(c *Config) { c.Auth.TokenKey = make([]byte, 31) }, wantErr: true},
		{name: "32 byte key", mutate: func(c *Config) { c.Auth.TokenKey = make([]byte, 32) }},
		{name: "zero max tags", mutate: func(c *Config) { c.Questions.MaxTags = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/stackit", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "stackit"), got)

	got, err = expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.IsProduction())
	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
}
