package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/grading"
)

type SessionBackend string

const (
	SessionsMemory SessionBackend = "memory"
	SessionsRedis  SessionBackend = "redis"
	SessionsJWT    SessionBackend = "jwt"
)

type Config struct {
	Server struct {
		Port                string `toml:"port"`
		ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Sessions struct {
		Backend        SessionBackend `toml:"backend"`
		CookieName     string         `toml:"cookie_name"`
		CookieSecure   bool           `toml:"cookie_secure"`
		TTLMinutes     int            `toml:"ttl_minutes"`
		RedisURL       string         `toml:"redis_url"`
		RedisKeyFormat string         `toml:"redis_key_template"`
		JWTSecret      string         `toml:"jwt_secret"`
	} `toml:"sessions"`

	Admin struct {
		// InitialPassword is applied only while the admin has no password.
		InitialPassword string `toml:"initial_password"`
		BcryptCost      int    `toml:"bcrypt_cost"`
	} `toml:"admin"`

	Scoring grading.Layout `toml:"scoring"`
}

// env overrides, applied after the file
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"SCOREWEB_PORT", func(c *Config, v string) { c.Server.Port = v }},
	{"SCOREWEB_DSN", func(c *Config, v string) { c.Database.DSN = v }},
	{"SCOREWEB_REDIS_URL", func(c *Config, v string) { c.Sessions.RedisURL = v }},
	{"SCOREWEB_JWT_SECRET", func(c *Config, v string) { c.Sessions.JWTSecret = v }},
	{"SCOREWEB_ADMIN_PASSWORD", func(c *Config, v string) { c.Admin.InitialPassword = v }},
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(&config, v)
		}
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	logger.Debug.Printf("Loaded scoring layout: %+v", config.Scoring)

	return &config, nil
}

func (c *Config) normalize() error {
	if c.Server.Port == "" {
		return fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("Database dsn is not specified in config")
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "./migrations"
	}

	if c.Sessions.Backend == "" {
		c.Sessions.Backend = SessionsMemory
	}
	switch c.Sessions.Backend {
	case SessionsMemory:
	case SessionsRedis:
		if c.Sessions.RedisURL == "" {
			return fmt.Errorf("redis session backend requires sessions.redis_url")
		}
	case SessionsJWT:
		if c.Sessions.JWTSecret == "" {
			return fmt.Errorf("jwt session backend requires sessions.jwt_secret")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	if c.Sessions.CookieName == "" {
		c.Sessions.CookieName = "scoreweb_session"
	}

	c.Scoring = c.Scoring.WithDefaults()
	return nil
}

func (c *Config) SessionTTL() time.Duration {
	if c.Sessions.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Sessions.TTLMinutes) * time.Minute
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}
