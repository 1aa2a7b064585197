// Package config loads config.yaml, an optional .env file and WARELEDGER_*
// environment overrides into a single Config.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where serve and setup look for the configuration file.
const DefaultPath = "config.yaml"

// Config mirrors config.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Company  CompanyConfig  `yaml:"company"`
	Session  SessionConfig  `yaml:"session"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"WARELEDGER_DB_DRIVER"`
	Host            string        `yaml:"host" env:"WARELEDGER_DB_HOST"`
	Port            int           `yaml:"port" env:"WARELEDGER_DB_PORT"`
	User            string        `yaml:"user" env:"WARELEDGER_DB_USER"`
	Password        string        `yaml:"password" env:"WARELEDGER_DB_PASSWORD"`
	Name            string        `yaml:"name" env:"WARELEDGER_DB_NAME"`
	SSLMode         string        `yaml:"sslmode" env:"WARELEDGER_DB_SSLMODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"WARELEDGER_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"WARELEDGER_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"WARELEDGER_DB_CONN_MAX_LIFETIME"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string        `yaml:"host" env:"WARELEDGER_HOST"`
	Port         int           `yaml:"port" env:"WARELEDGER_PORT"`
	StaticDir    string        `yaml:"static_dir" env:"WARELEDGER_STATIC_DIR"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"WARELEDGER_MAX_BODY_BYTES"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"WARELEDGER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WARELEDGER_WRITE_TIMEOUT"`
	CORSOrigins  []string      `yaml:"cors_origins,omitempty" env:"WARELEDGER_CORS_ORIGINS"`
	RequestLog   string        `yaml:"request_log" env:"WARELEDGER_REQUEST_LOG"`
}

// CompanyConfig brands the site.
type CompanyConfig struct {
	Name string `yaml:"name" env:"WARELEDGER_COMPANY_NAME"`
	Logo string `yaml:"logo" env:"WARELEDGER_COMPANY_LOGO"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	Backend       string        `yaml:"backend" env:"WARELEDGER_SESSION_BACKEND"`
	Lifetime      time.Duration `yaml:"lifetime" env:"WARELEDGER_SESSION_LIFETIME"`
	PurgeSchedule string        `yaml:"purge_schedule" env:"WARELEDGER_SESSION_PURGE_SCHEDULE"`
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig is used when session.backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"WARELEDGER_REDIS_ADDR"`
	Password string `yaml:"password" env:"WARELEDGER_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"WARELEDGER_REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"WARELEDGER_REDIS_PREFIX"`
}

// SecurityConfig tunes the login limiter.
type SecurityConfig struct {
	LoginRate  int `yaml:"login_rate" env:"WARELEDGER_LOGIN_RATE"`
	LoginBurst int `yaml:"login_burst" env:"WARELEDGER_LOGIN_BURST"`
}

// LoggingConfig mirrors logging.LoggingConfig.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"WARELEDGER_LOG_LEVEL"`
	Format     string `yaml:"format" env:"WARELEDGER_LOG_FORMAT"`
	Output     string `yaml:"output" env:"WARELEDGER_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"WARELEDGER_LOG_FILE_PREFIX"`
}

// Default returns the configuration used when a key is absent.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "wareledger",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			StaticDir:    ".",
			MaxBodyBytes: 64 << 20,
			ReadTimeout:  time.Minute,
			WriteTimeout: 2 * time.Minute,
		},
		Company: CompanyConfig{
			Name: "MyCompany",
			Logo: "logo.png",
		},
		Session: SessionConfig{
			Backend:       "memory",
			Lifetime:      8 * time.Hour,
			PurgeSchedule: "@every 15m",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "wareledger:session:",
			},
		},
		Security: SecurityConfig{
			LoginRate:  10,
			LoginBurst: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads path on top of the defaults, applies .env and environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if err := envdecode.Decode(c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		problems = append(problems, fmt.Sprintf("database.driver must be postgres or memory, got %q", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && strings.TrimSpace(c.Database.Name) == "" {
		problems = append(problems, "database.name is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, "server.max_body_bytes must be positive")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			problems = append(problems, "session.redis.addr is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("session.backend must be memory or redis, got %q", c.Session.Backend))
	}
	if c.Session.Lifetime <= 0 {
		problems = append(problems, "session.lifetime must be positive")
	}
	if c.Security.LoginRate < 0 || c.Security.LoginBurst < 0 {
		problems = append(problems, "security.login_rate and login_burst cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN builds the lib/pq connection URL for the configured database.
func (c *Config) DSN() string {
	return c.Database.DSN(c.Database.Name)
}

// DSN builds a connection URL for dbname on this server.
func (d DatabaseConfig) DSN(dbname string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + dbname,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
