package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/microblog/internal/flagx"
)

// knownFlags are the flags handled by parseFlags; anything else on the
// command line is ignored here.
var knownFlags = []string{"-a", "-i", "-d", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   backend base URL
//	-i int      online check interval in seconds
//	-d string   data directory
//	-t string   token store (sqlite or keyring)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.TokenStore, "t", cfg.TokenStore, "token store: sqlite or keyring")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}

	if flagx.IsSet(fs, "i") {
		cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	}
	return nil
}
