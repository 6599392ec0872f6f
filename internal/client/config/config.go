package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/microblog/internal/client/tokenstore"
	"github.com/dmitrijs2005/microblog/internal/filex"
)

// AppName names the data directory and the keyring service.
const AppName = "microblog"

// Config holds runtime settings for the microblog CLI.
//
// OnlineCheckInterval and RequestTimeout are durations; flags take the
// interval in whole seconds.
type Config struct {
	ServerURL           string        `env:"SERVER_URL, overwrite"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL, overwrite"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT, overwrite"`
	DataDir             string        `env:"DATA_DIR, overwrite"`
	TokenStore          string        `env:"TOKEN_STORE, overwrite"`
	LogLevel            string        `env:"LOG_LEVEL, overwrite"`
	LogFormat           string        `env:"LOG_FORMAT, overwrite"`
	WrapWidth           int           `env:"WRAP_WIDTH, overwrite"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.OnlineCheckInterval = 5 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.DataDir = filex.DefaultDataDir(AppName)
	c.TokenStore = tokenstore.KindSQLite
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.WrapWidth = 80
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.TokenStore != tokenstore.KindSQLite && c.TokenStore != tokenstore.KindKeyring {
		return fmt.Errorf("unknown token store %q", c.TokenStore)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is empty")
	}
	return nil
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// (if -c/-config is given), MICROBLOG_* environment variables and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig(ctx context.Context) (*Config, error) {
	return load(ctx, os.Args[1:], osLookuper)
}

func load(ctx context.Context, args []string, lookup lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(ctx, cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
