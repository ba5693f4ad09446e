package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/usercache/internal/app"
	"github.com/dmitrijs2005/usercache/internal/config"
	"github.com/dmitrijs2005/usercache/internal/httpapi"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, logger, reg)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer func() { _ = a.Close() }()

	sched := scheduler.New(cfg.SyncInterval, a.Sync, logger.With("component", "scheduler"), a.Metrics)
	if err := sched.Start(ctx); err != nil {
		logger.Error(ctx, "scheduler failed to start", "error", err)
		return
	}
	defer sched.Stop()

	h := httpapi.NewHandler(a.Query, a.Sync, logger.With("component", "http"),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if err := httpapi.NewServer(cfg.HTTPAddr, h.Routes(), logger).Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
	}

}
