package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/akaliniv/tetatet/internal/cli"
	"github.com/akaliniv/tetatet/internal/config"
	"github.com/akaliniv/tetatet/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, logger)
	app.Run(ctx)
}
