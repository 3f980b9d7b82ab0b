package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/internal/config"
	"github.com/fleetgauge/fleetgauge/internal/history"
	"github.com/fleetgauge/fleetgauge/internal/report"
	"github.com/fleetgauge/fleetgauge/internal/scheduler"
	"github.com/fleetgauge/fleetgauge/internal/server"
	"github.com/fleetgauge/fleetgauge/internal/source"
	"github.com/fleetgauge/fleetgauge/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("FleetGauge server starting", zap.String("version", version.Short()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Pick the device source once at startup. Demo mode serves a seeded
	// synthetic fleet; otherwise devices come from the management API.
	var src source.Source
	if cfg.GetBool("source.demo_mode") {
		src = source.NewMockSource(cfg.GetInt64("source.mock_seed"))
		logger.Info("demo mode enabled, serving synthetic fleet")
	} else {
		src = source.NewGraphSource(source.GraphConfig{
			TenantID:     cfg.GetString("source.tenant_id"),
			ClientID:     cfg.GetString("source.client_id"),
			ClientSecret: cfg.GetString("source.client_secret"),
			BaseURL:      cfg.GetString("source.graph_base_url"),
		}, logger)
	}

	engine := analysis.NewEngine(src, logger)

	reports, err := report.NewWriter(cfg.GetString("reports.dir"), logger)
	if err != nil {
		logger.Fatal("failed to initialize report writer", zap.Error(err))
	}

	hist, err := history.New(cfg.GetString("history.path"))
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	defer hist.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.GetBool("scheduler.enabled") {
		sched := scheduler.New(engine, reports, cfg.GetDuration("scheduler.interval"), logger)
		go sched.Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", cfg.GetString("server.host"), cfg.GetInt("server.port"))
	srv := server.New(addr, engine, reports, hist, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("FleetGauge server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("FleetGauge server stopped")
}
