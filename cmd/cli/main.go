package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/usercache/internal/app"
	"github.com/dmitrijs2005/usercache/internal/cli"
	"github.com/dmitrijs2005/usercache/internal/config"
	"github.com/dmitrijs2005/usercache/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// the shell owns stdout, logs go to stderr
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer func() { _ = a.Close() }()

	cli.NewApp(a.Query, a.Sync, logger).Run(ctx, os.Stdin)

}
