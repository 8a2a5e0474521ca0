// Package container provides dependency wiring and lifecycle management
// for the auto-punch service.
package container

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/service"
	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/config"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/external/hrone"
	infraLark "github.com/garyjia/hrone-autopunch/internal/infrastructure/external/lark"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hrone-autopunch/internal/notification"
	"github.com/garyjia/hrone-autopunch/internal/worker"
	"github.com/garyjia/hrone-autopunch/migrations"
	"github.com/garyjia/hrone-autopunch/pkg/database"
	"github.com/garyjia/hrone-autopunch/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// ServiceBundle groups the per-account workflow services.
type ServiceBundle struct {
	Credentials service.CredentialService
	Attendance  service.AttendanceService
	Punches     service.PunchService
}

// ProvideDatabase opens the store and applies the embedded migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(conn, logger).RunMigrationsFS(migrations.FS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	return &RepositoryBundle{
		Accounts: repository.NewAccountRepository(db, logger),
		Ticks:    repository.NewTickRepository(db, logger),
	}, nil
}

// ProvideHROneClient creates the vendor API client.
func ProvideHROneClient(cfg *config.HROneConfig, logger *zap.Logger) (*hrone.Client, error) {
	if cfg.CompanyDomain == "" {
		return nil, fmt.Errorf("hrone company domain is required")
	}

	return hrone.NewClient(hrone.Config{
		AuthURL:       cfg.AuthURL,
		BaseURL:       cfg.BaseURL,
		CompanyDomain: cfg.CompanyDomain,
		IPAddress:     cfg.IPAddress,
		Timeout:       cfg.APITimeout,
	}, logger), nil
}

// ProvideNotifier creates the alert notifier with the optional Lark mirror.
func ProvideNotifier(alertCfg *config.AlertConfig, larkCfg *config.LarkConfig, logger *zap.Logger) *notification.Notifier {
	opts := []notification.Option{notification.WithDefaultWebhook(alertCfg.DefaultWebhook)}

	if larkCfg.Enabled() {
		client := infraLark.NewClient(infraLark.Config{
			AppID:     larkCfg.AppID,
			AppSecret: larkCfg.AppSecret,
			ChatID:    larkCfg.ChatID,
			BaseURL:   larkCfg.BaseURL,
			Timeout:   larkCfg.APITimeout,
		}, logger)
		opts = append(opts, notification.WithMirror(infraLark.NewMessenger(client, logger), larkCfg.ChatID))
		logger.Info("Lark alert mirror enabled", zap.String("chat_id", larkCfg.ChatID))
	}

	return notification.NewNotifier(notification.NewWebhookSender(alertCfg.Timeout, logger), logger, opts...)
}

// ProvideServices creates the workflow services.
func ProvideServices(client *hrone.Client, repos *RepositoryBundle, windows decision.Windows, logger *zap.Logger) *ServiceBundle {
	svcLogger := utils.NewZapAdapter(logger)

	return &ServiceBundle{
		Credentials: service.NewCredentialService(client, repos.Accounts, svcLogger),
		Attendance:  service.NewAttendanceService(client, svcLogger),
		Punches:     service.NewPunchService(client, windows, svcLogger),
	}
}

// WorkflowDeps contains dependencies for creating the workflow engine.
type WorkflowDeps struct {
	Repos    *RepositoryBundle
	Services *ServiceBundle
	Notifier workflow.Notifier
	Jobs     []workflow.Job
	Windows  decision.Windows
	Location *time.Location
	Seed     int64
	Logger   *zap.Logger
}

// ProvideWorkflowEngine creates the punch workflow engine.
func ProvideWorkflowEngine(deps *WorkflowDeps) workflow.Engine {
	return workflow.NewEngine(workflow.Dependencies{
		Accounts:    deps.Repos.Accounts,
		Ticks:       deps.Repos.Ticks,
		Credentials: deps.Services.Credentials,
		Attendance:  deps.Services.Attendance,
		Punches:     deps.Services.Punches,
		Notifier:    deps.Notifier,
		Logger:      utils.NewZapAdapter(deps.Logger),
	},
		workflow.WithJobs(deps.Jobs...),
		workflow.WithWindows(deps.Windows),
		workflow.WithGate(decision.NewSeededCoinFlip(deps.Seed)),
		workflow.WithLocation(deps.Location),
	)
}

// ProvideWorkers creates the worker manager owning the job scheduler.
func ProvideWorkers(engine workflow.Engine, loc *time.Location, logger *zap.Logger) (*worker.Manager, *worker.Scheduler) {
	scheduler := worker.NewScheduler(engine, engine.Jobs(), loc, logger)

	manager := worker.NewManager(logger)
	manager.Register(scheduler)

	return manager, scheduler
}
