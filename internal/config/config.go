package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/pkg/errors"
)

const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	Driver      string `envconfig:"STORE_DRIVER" default:"json"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	SessionSecret string `envconfig:"SESSION_SECRET"`
	Domain        string `envconfig:"DOMAIN"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`

	AdminEmail    string `envconfig:"DEFAULT_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"DEFAULT_ADMIN_PASSWORD"`

	ClientURL    string   `envconfig:"CLIENT_URL"`
	ExtraOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
	SlackWebhookURL   string `envconfig:"SLACK_WEBHOOK_URL"`

	LowStockThreshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"6"`
	LowStockInterval  time.Duration `envconfig:"LOW_STOCK_INTERVAL" default:"1h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	GinMode   string `envconfig:"GIN_MODE" default:"release"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))

	switch c.Driver {
	case DriverJSON:
		if c.DataDir == "" {
			return errors.New("DATA_DIR must not be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.Driver)
	}

	if c.LowStockThreshold < 1 {
		return errors.New("LOW_STOCK_THRESHOLD must be at least 1")
	}

	if c.LowStockInterval <= 0 {
		return errors.New("LOW_STOCK_INTERVAL must be positive")
	}

	return nil
}

// InsecureSecret reports whether sessions are signed with the built-in
// fallback secret.
func (c *Config) InsecureSecret() bool {
	return c.SessionSecret == "" || c.SessionSecret == auth.InsecureDefaultSecret
}

// AllowedOrigins is the development defaults plus CLIENT_URL and
// ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}

	for _, origin := range c.ExtraOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
