package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only accepted when FROTA_ENV is development.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Env        string        `yaml:"env"`
	Addr       string        `yaml:"addr"`
	APITimeout time.Duration `yaml:"timeout"`
	Database   Database      `yaml:"database"`
	JWT        JWT           `yaml:"jwt"`
	Redis      Redis         `yaml:"redis"`
	Media      Media         `yaml:"media"`
	Log        Log           `yaml:"log"`
	Seed       Seed          `yaml:"seed"`
}

type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type JWT struct {
	Secret        string        `yaml:"secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// Redis backs the shared token revocation list. Empty Addr keeps the list
// in process memory.
type Redis struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// Prefix namespaces the revoked-token keys.
	Prefix string `yaml:"prefix"`
}

type Media struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Seed struct {
	AdminName     string `yaml:"admin_name"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// LoadConfig builds the configuration from defaults, a .env file, FROTA_*
// variables and finally the optional YAML file at path.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Env:        cast.ToString(getOrReturnDefault("FROTA_ENV", "development")),
		Addr:       cast.ToString(getOrReturnDefault("FROTA_ADDR", ":8080")),
		APITimeout: cast.ToDuration(getOrReturnDefault("FROTA_TIMEOUT", 15*time.Second)),
		Database: Database{
			Driver:      cast.ToString(getOrReturnDefault("FROTA_DB_DRIVER", "sqlite")),
			DSN:         cast.ToString(getOrReturnDefault("FROTA_DB_DSN", "file:frota.db")),
			AutoMigrate: cast.ToBool(getOrReturnDefault("FROTA_DB_AUTO_MIGRATE", true)),
		},
		JWT: JWT{
			Secret:        cast.ToString(getOrReturnDefault("FROTA_JWT_SECRET", DefaultJWTSecret)),
			TokenDuration: cast.ToDuration(getOrReturnDefault("FROTA_TOKEN_DURATION", 24*time.Hour)),
		},
		Redis: Redis{
			Addr:        cast.ToString(getOrReturnDefault("FROTA_REDIS_ADDR", "")),
			Password:    cast.ToString(getOrReturnDefault("FROTA_REDIS_PASSWORD", "")),
			DB:          cast.ToInt(getOrReturnDefault("FROTA_REDIS_DB", 0)),
			DialTimeout: cast.ToDuration(getOrReturnDefault("FROTA_REDIS_DIAL_TIMEOUT", 5*time.Second)),
			Prefix:      cast.ToString(getOrReturnDefault("FROTA_REDIS_PREFIX", "frota:revoked:")),
		},
		Media: Media{
			Dir:     cast.ToString(getOrReturnDefault("FROTA_MEDIA_DIR", "media")),
			BaseURL: cast.ToString(getOrReturnDefault("FROTA_MEDIA_BASE_URL", "http://localhost:8080/media")),
		},
		Log: Log{
			Level: cast.ToString(getOrReturnDefault("FROTA_LOG_LEVEL", "info")),
		},
		Seed: Seed{
			AdminName:     cast.ToString(getOrReturnDefault("FROTA_SEED_ADMIN_NAME", "Administrador")),
			AdminEmail:    cast.ToString(getOrReturnDefault("FROTA_SEED_ADMIN_EMAIL", "admin@frota.com")),
			AdminPassword: cast.ToString(getOrReturnDefault("FROTA_SEED_ADMIN_PASSWORD", "12345678")),
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Validate rejects configurations the server cannot safely start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.JWT.Secret == DefaultJWTSecret && !c.IsDevelopment() {
		errs = append(errs, errors.New("default jwt secret is only allowed in development; set FROTA_JWT_SECRET"))
	}
	if c.JWT.TokenDuration <= 0 {
		errs = append(errs, errors.New("token duration must be positive"))
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	return errors.Join(errs...)
}

func getOrReturnDefault(key string, defaultValue any) any {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
