// Package config loads server configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Auth      AuthConfig
	Questions QuestionsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	DataPath string // Directory holding the database and the auth key file
	Backend  string // badger (default) or sqlite
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string // CORS origins, "*" allows any
}

// AuthConfig holds identity token configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes). When unset the key is loaded from,
	// or generated into, DataPath/auth.key at startup.
	TokenKey      []byte
	TokenDuration time.Duration
}

// QuestionsConfig holds limits applied when questions are created.
type QuestionsConfig struct {
	MaxTags int
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fsFlags := flag.NewFlagSet("stackit", flag.ContinueOnError)

	env := fsFlags.String("env", "", "Environment (development, staging, production)")
	logLevel := fsFlags.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fsFlags.String("data-path", "", "Directory for the database and auth key")
	backend := fsFlags.String("store", "", "Store backend: badger or sqlite (default: badger)")

	serverPort := fsFlags.String("port", "", "Server port (default: 8080)")
	readTimeout := fsFlags.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fsFlags.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fsFlags.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fsFlags.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	tokenKey := fsFlags.String("token-key", "", "Hex-encoded 32-byte token key")
	tokenDuration := fsFlags.String("token-duration", "", "Identity token lifetime (default: 1h)")

	maxTags := fsFlags.String("max-tags", "", "Maximum tags per question (default: 5)")

	envFile := fsFlags.String("env-file", ".env", "Path to .env file")

	if err := fsFlags.Parse(args); err != nil {
		return nil, err
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			Backend:  strings.ToLower(getConfigValue(*backend, "STORE_BACKEND", BackendBadger)),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenDuration, err = getDurationConfigValue(*tokenDuration, "AUTH_TOKEN_DURATION", "1h"); err != nil {
		return nil, err
	}
	if cfg.Questions.MaxTags, err = getIntConfigValue(*maxTags, "QUESTIONS_MAX_TAGS", 5); err != nil {
		return nil, err
	}

	if keyHex := getConfigValue(*tokenKey, "AUTH_TOKEN_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_TOKEN_KEY: %w", err)
		}
		cfg.Auth.TokenKey = key
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty")
	}
	if c.Storage.Backend != BackendBadger && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("invalid store backend: %q (must be %s or %s)", c.Storage.Backend, BackendBadger, BackendSQLite)
	}

	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	if c.Auth.TokenDuration <= 0 {
		return errors.New("token duration must be positive")
	}
	if c.Auth.TokenKey != nil && len(c.Auth.TokenKey) != 32 {
		return fmt.Errorf("token key must be 32 bytes, got %d", len(c.Auth.TokenKey))
	}

	if c.Questions.MaxTags < 1 {
		return fmt.Errorf("max tags must be at least 1, got %d", c.Questions.MaxTags)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is used.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/StackIt/data.
func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Storage.DataPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "StackIt", "data")
	}

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
