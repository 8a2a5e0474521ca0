// Command punch runs a single tick of one job and prints the outcome.
// It suits deployments where an external cron triggers the workflow.
//
// Exit codes: 0 all accounts handled, 1 the tick could not run,
// 2 the tick ran but at least one account failed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/config"
	"github.com/garyjia/hrone-autopunch/internal/container"
	"github.com/garyjia/hrone-autopunch/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	job := flag.String("job", workflow.JobMarkAttendance, "Job to run")
	at := flag.String("at", "", "Run as if it were this RFC3339 instant (default now)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// stdout carries the tick result
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stderr",
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	when := time.Now()
	if *at != "" {
		when, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			logger.Error("Invalid -at value", zap.String("at", *at), zap.Error(err))
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Error("Failed to create container", zap.Error(err))
		return 1
	}
	if err := app.Build(); err != nil {
		logger.Error("Failed to build container", zap.Error(err))
		return 1
	}
	defer app.Close()

	tick, err := app.Engine().RunAt(ctx, *job, when)
	if err != nil {
		logger.Error("Tick failed", zap.String("job", *job), zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tick); err != nil {
		logger.Error("Failed to print tick run", zap.Error(err))
	}

	if tick.Failed > 0 {
		return 2
	}
	return 0
}
