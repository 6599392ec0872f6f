package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/microblog/internal/client/cli"
	"github.com/dmitrijs2005/microblog/internal/client/config"
	"github.com/dmitrijs2005/microblog/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.New(logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel})

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}
