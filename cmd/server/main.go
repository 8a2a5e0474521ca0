package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/config"
	"github.com/garyjia/hrone-autopunch/internal/container"
	httpapi "github.com/garyjia/hrone-autopunch/internal/interfaces/http"
	"github.com/garyjia/hrone-autopunch/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting HROne auto-punch service",
		zap.String("version", "1.0.0"),
		zap.String("timezone", cfg.Schedule.Timezone),
		zap.Bool("http_enabled", cfg.Server.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}

	if err := app.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}

	for _, entry := range app.Scheduler().Entries() {
		logger.Info("Job scheduled",
			zap.String("job", entry.Job),
			zap.String("schedule", entry.Spec),
			zap.Time("next", entry.Next))
	}

	if cfg.Server.Enabled {
		server := httpapi.NewServer(httpapi.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, httpapi.Dependencies{
			Engine:   app.Engine(),
			Accounts: app.Repositories().Accounts,
			Ticks:    app.Repositories().Ticks,
			Reports:  app.Reports(),
			Schedule: app.Scheduler(),
		}, utils.NewZapAdapter(logger))

		// Start blocks until ctx is cancelled
		if err := server.Start(ctx); err != nil {
			logger.Error("HTTP server stopped with error", zap.Error(err))
			stop()
		}
	} else {
		<-ctx.Done()
	}

	logger.Info("Shutting down...")

	if err := app.Close(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
	}

	logger.Info("Service exited successfully")
}
