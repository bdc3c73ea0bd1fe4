package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun/driver/sqliteshim"
	"gopkg.in/yaml.v3"

	auth "github.com/goliatone/go-jwt-auth"
)

// serviceConfig is the on-disk configuration of the auth service.
type serviceConfig struct {
	HTTP     httpConfig     `yaml:"http"`
	Database databaseConfig `yaml:"database"`
	Log      logConfig      `yaml:"log"`
	Auth     auth.Options   `yaml:"auth"`
}

type httpConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type databaseConfig struct {
	DSN          string        `yaml:"dsn"`
	Debug        bool          `yaml:"debug"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

func (d databaseConfig) GetDSN() string {
	return d.DSN
}

func (d databaseConfig) GetDebug() bool {
	return d.Debug
}

func (d databaseConfig) GetDriver() string {
	return sqliteshim.ShimName
}

func (d databaseConfig) GetServer() string {
	return d.DSN
}

func (d databaseConfig) GetPingTimeout() time.Duration {
	return d.PingTimeout
}

func (d databaseConfig) GetOtelIdentifier() string {
	return "authsvc"
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultServiceConfig() *serviceConfig {
	return &serviceConfig{
		HTTP: httpConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: databaseConfig{
			DSN:         "file:authsvc.db?cache=shared",
			PingTimeout: 5 * time.Second,
		},
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: auth.Options{
			TokenExpiration: auth.DefaultTokenExpiration,
		},
	}
}

// loadConfig reads path when it exists, then applies environment overrides.
// An empty path skips the file.
func loadConfig(path string) (*serviceConfig, error) {
	cfg := defaultServiceConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *serviceConfig) error {
	cfg.Auth.SigningKey = getEnvOrDefault("AUTH_SIGNING_KEY", cfg.Auth.SigningKey)
	cfg.Auth.Issuer = getEnvOrDefault("AUTH_ISSUER", cfg.Auth.Issuer)
	cfg.HTTP.Addr = getEnvOrDefault("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Database.DSN = getEnvOrDefault("DATABASE_DSN", cfg.Database.DSN)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvOrDefault("LOG_FORMAT", cfg.Log.Format)

	if raw := os.Getenv("AUTH_TOKEN_TTL"); raw != "" {
		ttl, err := parseTTL(raw)
		if err != nil {
			return fmt.Errorf("AUTH_TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenExpiration = ttl
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		cfg.HTTP.AllowedOrigins = splitList(raw)
	}

	return nil
}

// parseTTL accepts a Go duration ("24h") or a number of milliseconds.
func parseTTL(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func validateConfig(cfg *serviceConfig) error {
	if _, err := auth.DecodeSigningKey(cfg.Auth.SigningKey); err != nil {
		return err
	}
	if cfg.Auth.TokenExpiration < 0 {
		return fmt.Errorf("auth.token_ttl must not be negative")
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required")
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if cfg.Database.PingTimeout < 0 {
		return fmt.Errorf("database.ping_timeout must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
