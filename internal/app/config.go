// Package app holds runtime configuration loading and conversion into the
// concrete settings each subsystem consumes.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	iauth "github.com/saaskit-io/saaskit/internal/auth"
	"github.com/saaskit-io/saaskit/internal/cache"
	"github.com/saaskit-io/saaskit/internal/database"
	"github.com/saaskit-io/saaskit/pkg/mail"
)

// Config is the full application configuration, loadable from a YAML file
// with SAASKIT_* environment overrides.
type Config struct {
	Server struct {
		Host           string        `mapstructure:"host"`
		Port           int           `mapstructure:"port"`
		BaseURL        string        `mapstructure:"base_url"`
		ReadTimeout    time.Duration `mapstructure:"read_timeout"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
		TrustedProxies []string      `mapstructure:"trusted_proxies"`
	} `mapstructure:"server"`

	Database struct {
		Driver   string            `mapstructure:"driver"`
		Path     string            `mapstructure:"path"`
		DSN      string            `mapstructure:"dsn"`
		Host     string            `mapstructure:"host"`
		Port     int               `mapstructure:"port"`
		Name     string            `mapstructure:"name"`
		User     string            `mapstructure:"user"`
		Password string            `mapstructure:"password"`
		Options  map[string]string `mapstructure:"options"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret       string        `mapstructure:"jwt_secret"`
		Issuer          string        `mapstructure:"issuer"`
		AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
		RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	} `mapstructure:"auth"`

	Invitations struct {
		Expiry time.Duration `mapstructure:"expiry"`
	} `mapstructure:"invitations"`

	Redis struct {
		Enabled  bool          `mapstructure:"enabled"`
		Address  string        `mapstructure:"address"`
		Username string        `mapstructure:"username"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TLS      bool          `mapstructure:"tls"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"redis"`

	SMTP struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`

	RateLimit struct {
		AuthRequests int           `mapstructure:"auth_requests"`
		AuthWindow   time.Duration `mapstructure:"auth_window"`
	} `mapstructure:"rate_limit"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Maintenance struct {
		Schedule string `mapstructure:"schedule"`
	} `mapstructure:"maintenance"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads configuration from the optional file path plus SAASKIT_*
// environment variables, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SAASKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	decode := func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
	if err := v.Unmarshal(&cfg, decode); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/saaskit.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")

	// Registered empty so the SAASKIT_* environment override is picked up.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "saaskit")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "720h")

	v.SetDefault("invitations.expiry", "168h")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.timeout", "5s")

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.use_tls", false)

	v.SetDefault("rate_limit.auth_requests", 10)
	v.SetDefault("rate_limit.auth_window", "1m")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("maintenance.schedule", "@hourly")

	v.SetDefault("log.level", "info")
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("config: auth.jwt_secret is required (set SAASKIT_AUTH_JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DatabaseConfig converts to the database package's settings.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Name:     c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		Options:  c.Database.Options,
	}
}

// JWTConfig converts to the auth package's settings.
func (c *Config) JWTConfig() iauth.JWTConfig {
	return iauth.JWTConfig{
		Secret:          c.Auth.JWTSecret,
		Issuer:          c.Auth.Issuer,
		AccessTokenTTL:  c.Auth.AccessTokenTTL,
		RefreshTokenTTL: c.Auth.RefreshTokenTTL,
	}
}

// RedisConfig converts to the cache package's settings.
func (c *Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Redis.Address,
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// SMTPSettings converts to the mail package's settings.
func (c *Config) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
	}
}
