package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/config"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/external/hrone"
	"github.com/garyjia/hrone-autopunch/internal/notification"
	"github.com/garyjia/hrone-autopunch/internal/report"
	"github.com/garyjia/hrone-autopunch/internal/worker"
)

// Container manages all application dependencies and lifecycle.
// Components are built in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *DatabaseBundle
	repositories *RepositoryBundle

	// Infrastructure - External
	hroneClient *hrone.Client
	notifier    *notification.Notifier

	// Application
	services *ServiceBundle
	engine   workflow.Engine
	reports  *report.MonthlyReport
	location *time.Location

	// Workers
	workers   *worker.Manager
	scheduler *worker.Scheduler

	// Lifecycle
	mu     sync.Mutex
	built  bool
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Accounts port.AccountRepository
	Ticks    port.TickRepository
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not build components; call Build or Start.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Build initializes every component without starting the scheduler.
// One-shot commands use it to run a single tick.
func (c *Container) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build()
}

func (c *Container) build() error {
	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.built {
		return nil
	}

	loc, err := c.config.Location()
	if err != nil {
		return err
	}
	c.location = loc

	// Step 1: database and repositories
	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db

	repos, err := ProvideRepositories(db.TransactionMgr, c.logger)
	if err != nil {
		db.Conn.Close()
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	c.repositories = repos
	c.logger.Info("Database initialized")

	// Step 2: external clients
	client, err := ProvideHROneClient(&c.config.HROne, c.logger)
	if err != nil {
		db.Conn.Close()
		return fmt.Errorf("failed to initialize HROne client: %w", err)
	}
	c.hroneClient = client
	c.notifier = ProvideNotifier(&c.config.Alert, &c.config.Lark, c.logger)
	c.logger.Info("External clients initialized")

	// Step 3: services and engine
	c.services = ProvideServices(client, repos, c.config.Windows(), c.logger)
	c.engine = ProvideWorkflowEngine(&WorkflowDeps{
		Repos:    repos,
		Services: c.services,
		Notifier: c.notifier,
		Jobs:     c.config.Jobs(),
		Windows:  c.config.Windows(),
		Location: loc,
		Seed:     c.config.JitterSeed(),
		Logger:   c.logger,
	})
	c.reports = report.NewMonthlyReport(repos.Ticks, loc, c.logger)
	c.logger.Info("Workflow engine initialized", zap.Int("jobs", len(c.engine.Jobs())))

	// Step 4: workers, started separately
	c.workers, c.scheduler = ProvideWorkers(c.engine, loc, c.logger)

	c.built = true
	return nil
}

// Start builds the container when needed and starts the scheduler.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")
	if err := c.build(); err != nil {
		return err
	}

	if err := c.workers.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	c.logger.Info("Workers started", zap.Strings("workers", c.workers.Names()))

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
// A tick in flight is given the scheduler's grace period to finish.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.workers != nil {
		c.workers.StopAll()
		c.logger.Info("Workers stopped")
	}

	if c.db != nil {
		if err := c.db.Conn.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true once the scheduler is running.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil {
		if err := c.db.Conn.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.ready.Load() {
		status.Components["scheduler"] = ComponentHealth{Healthy: true, Message: fmt.Sprintf("jobs: %d", len(c.scheduler.Entries()))}
	} else {
		status.Components["scheduler"] = ComponentHealth{Healthy: false, Message: "not started"}
		status.Overall = false
	}

	return status
}

// Engine returns the workflow engine.
func (c *Container) Engine() workflow.Engine {
	return c.engine
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Notifier returns the alert notifier.
func (c *Container) Notifier() *notification.Notifier {
	return c.notifier
}

// Reports returns the monthly report builder.
func (c *Container) Reports() *report.MonthlyReport {
	return c.reports
}

// Scheduler returns the job scheduler.
func (c *Container) Scheduler() *worker.Scheduler {
	return c.scheduler
}

// Location returns the organisation time zone.
func (c *Container) Location() *time.Location {
	return c.location
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
