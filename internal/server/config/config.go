package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. WORLDFORGE_SERVER_PORT
const EnvPrefix = "WORLDFORGE_"

// MinSecretLength is the shortest session secret accepted outside dev mode
const MinSecretLength = 32

type Config struct {
	Server    ServerConfig    `toml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `toml:"database" envPrefix:"DATABASE_"`
	Auth      AuthConfig      `toml:"auth" envPrefix:"AUTH_"`
	Logging   LoggingConfig   `toml:"logging" envPrefix:"LOG_"`
	RateLimit RateLimitConfig `toml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

type ServerConfig struct {
	Host         string        `toml:"host" env:"HOST"`
	Port         int           `toml:"port" env:"PORT"`
	Dev          bool          `toml:"dev" env:"DEV"`
	BodyLimit    int           `toml:"body_limit" env:"BODY_LIMIT"` // bytes
	CORSOrigins  string        `toml:"cors_origins" env:"CORS_ORIGINS"`
	ReadTimeout  time.Duration `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	PIDFile      string        `toml:"pid_file" env:"PID_FILE"`
}

type DatabaseConfig struct {
	Path         string        `toml:"path" env:"PATH"`
	MaxOpenConns int           `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int           `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	BusyTimeout  time.Duration `toml:"busy_timeout" env:"BUSY_TIMEOUT"`
}

type AuthConfig struct {
	Secret       string        `toml:"secret" env:"SECRET"`
	SessionTTL   time.Duration `toml:"session_ttl" env:"SESSION_TTL"`
	CookieName   string        `toml:"cookie_name" env:"COOKIE_NAME"`
	SecureCookie bool          `toml:"secure_cookie" env:"SECURE_COOKIE"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled           bool `toml:"enabled" env:"ENABLED"`
	RequestsPerSecond int  `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	AuthPerMinute     int  `toml:"auth_per_minute" env:"AUTH_PER_MINUTE"`
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv applies WORLDFORGE_* environment variables to cfg
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the final configuration, after flags have been applied
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, errors.New("server.body_limit must be positive"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, errors.New("database.max_open_conns must be at least 1"))
	}
	if c.Auth.Secret != "" && len(c.Auth.Secret) < MinSecretLength && !c.Server.Dev {
		errs = append(errs, fmt.Errorf("auth.secret must be at least %d bytes", MinSecretLength))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie_name is required"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond < 1 || c.RateLimit.AuthPerMinute < 1) {
		errs = append(errs, errors.New("rate_limit values must be positive when enabled"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			BodyLimit:    1 << 20,
			CORSOrigins:  "*",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "worldforge.db",
			MaxOpenConns: 8,
			MaxIdleConns: 4,
			BusyTimeout:  5 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
			CookieName: "worldforge_session",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			AuthPerMinute:     10,
		},
	}
}
