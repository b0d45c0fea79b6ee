package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FH"

// Config holds all application configuration.
type Config struct {
	Env      string `envconfig:"ENV" required:"true"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL  string `envconfig:"BASE_URL" required:"true"`

	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	TeamCreateRPM int `envconfig:"TEAM_CREATE_RPM" default:"10"`
	InviteTTLDays int `envconfig:"INVITE_TTL_DAYS" default:"7"`

	MailerURL       string `envconfig:"MAILER_URL"`
	MailerTimeoutMS int    `envconfig:"MAILER_TIMEOUT_MS" default:"2000"`

	SubscriptionCacheTTL  time.Duration `envconfig:"SUBSCRIPTION_CACHE_TTL" default:"1m"`
	SubscriptionCacheSize int           `envconfig:"SUBSCRIPTION_CACHE_SIZE" default:"1024"`

	TaskTimeout   time.Duration `envconfig:"TASK_TIMEOUT" default:"30s"`
	PurgeSchedule string        `envconfig:"PURGE_SCHEDULE" default:"0 3 * * *"`
}

// Load reads configuration from FH_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Env = strings.TrimSpace(cfg.Env)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.DBDSN = strings.TrimSpace(cfg.DBDSN)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env != "dev" && c.Env != "prod" {
		return fmt.Errorf("FH_ENV must be one of: dev, prod (got: %s)", c.Env)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("FH_BASE_URL is required")
	}
	if c.DBDSN == "" {
		return fmt.Errorf("FH_DB_DSN is required")
	}
	if c.Env == "prod" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("FH_JWT_SECRET must be at least 32 characters (currently %d)", len(c.JWTSecret))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("FH_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	if c.TeamCreateRPM <= 0 {
		return fmt.Errorf("FH_TEAM_CREATE_RPM must be positive (got: %d)", c.TeamCreateRPM)
	}
	if c.InviteTTLDays <= 0 || c.InviteTTLDays > 90 {
		return fmt.Errorf("FH_INVITE_TTL_DAYS must be between 1 and 90 (got: %d)", c.InviteTTLDays)
	}
	if c.MailerTimeoutMS <= 0 || c.MailerTimeoutMS > 30000 {
		return fmt.Errorf("FH_MAILER_TIMEOUT_MS must be between 1 and 30000 (got: %d)", c.MailerTimeoutMS)
	}
	if c.SubscriptionCacheTTL < 0 {
		return fmt.Errorf("FH_SUBSCRIPTION_CACHE_TTL must not be negative")
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("FH_TASK_TIMEOUT must be positive")
	}
	return nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// InviteTTL is the lifetime of a new invite.
func (c *Config) InviteTTL() time.Duration {
	return time.Duration(c.InviteTTLDays) * 24 * time.Hour
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"FH_ENV":                     c.Env,
		"FH_HTTP_ADDR":               c.HTTPAddr,
		"FH_BASE_URL":                c.BaseURL,
		"FH_DB_DSN":                  redactDSN(c.DBDSN),
		"FH_JWT_SECRET":              "[REDACTED]",
		"FH_LOG_LEVEL":               c.LogLevel,
		"FH_CORS_ORIGINS":            strings.Join(c.CORSOrigins, ","),
		"FH_TEAM_CREATE_RPM":         fmt.Sprintf("%d", c.TeamCreateRPM),
		"FH_INVITE_TTL_DAYS":         fmt.Sprintf("%d", c.InviteTTLDays),
		"FH_MAILER_URL":              redactDSN(c.MailerURL),
		"FH_MAILER_TIMEOUT_MS":       fmt.Sprintf("%d", c.MailerTimeoutMS),
		"FH_SUBSCRIPTION_CACHE_TTL":  c.SubscriptionCacheTTL.String(),
		"FH_SUBSCRIPTION_CACHE_SIZE": fmt.Sprintf("%d", c.SubscriptionCacheSize),
		"FH_TASK_TIMEOUT":            c.TaskTimeout.String(),
		"FH_PURGE_SCHEDULE":          c.PurgeSchedule,
	}
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}
