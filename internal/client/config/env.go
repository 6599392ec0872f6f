package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MICROBLOG_"

type lookuper = envconfig.Lookuper

var osLookuper lookuper = envconfig.OsLookuper()

// parseEnv overlays cfg with MICROBLOG_* variables. Unset variables leave
// the current values alone.
func parseEnv(ctx context.Context, cfg *Config, l lookuper) error {
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	})
	if err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}
