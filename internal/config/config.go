package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/domain/clock"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/worker"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	HROne    HROneConfig    `mapstructure:"hrone"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// HROneConfig holds the vendor API configuration
type HROneConfig struct {
	AuthURL       string        `mapstructure:"auth_url"`
	BaseURL       string        `mapstructure:"base_url"`
	CompanyDomain string        `mapstructure:"company_domain"`
	IPAddress     string        `mapstructure:"ip_address"`
	APITimeout    time.Duration `mapstructure:"api_timeout"`
}

// AlertConfig holds webhook alert configuration
type AlertConfig struct {
	DefaultWebhook string        `mapstructure:"default_webhook"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LarkConfig holds the optional Lark chat mirror configuration
type LarkConfig struct {
	AppID      string        `mapstructure:"app_id"`
	AppSecret  string        `mapstructure:"app_secret"`
	ChatID     string        `mapstructure:"chat_id"`
	BaseURL    string        `mapstructure:"base_url"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// Enabled reports whether the Lark mirror is configured
func (c LarkConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ChatID != ""
}

// ScheduleConfig holds the job schedule and punch windows
type ScheduleConfig struct {
	Timezone     string      `mapstructure:"timezone"`
	CheckInHour  int         `mapstructure:"check_in_hour"`
	CheckOutHour int         `mapstructure:"check_out_hour"`
	JitterSeed   int64       `mapstructure:"jitter_seed"` // 0 seeds from the clock
	Jobs         []JobConfig `mapstructure:"jobs"`
}

// JobConfig is one scheduled job
type JobConfig struct {
	Name   string          `mapstructure:"name"`
	Cron   string          `mapstructure:"cron"`
	Policy workflow.Policy `mapstructure:"policy"`
}

// Load loads configuration from file and environment variables.
// A .env file next to the working directory is read first when present.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports the variables of path without overriding ones already set
func loadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)

	// Database defaults
	v.SetDefault("database.path", "data/autopunch.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// HROne defaults
	v.SetDefault("hrone.auth_url", "https://hroneauthapi.hrone.cloud/oauth2/token")
	v.SetDefault("hrone.base_url", "https://hronewebapi.hrone.cloud")
	v.SetDefault("hrone.api_timeout", 15*time.Second)

	// Alert defaults
	v.SetDefault("alert.timeout", 10*time.Second)

	// Lark defaults
	v.SetDefault("lark.api_timeout", 10*time.Second)

	// Schedule defaults
	v.SetDefault("schedule.timezone", clock.DefaultZone)
	v.SetDefault("schedule.check_in_hour", decision.CheckInHour)
	v.SetDefault("schedule.check_out_hour", decision.CheckOutHour)
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Deployment specific values and secrets come from environment
	v.BindEnv("hrone.company_domain", "COMPANY_DOMAIN")
	v.BindEnv("hrone.ip_address", "IP_ADDRESS")
	v.BindEnv("alert.default_webhook", "ALERT_WEBHOOK")
	v.BindEnv("lark.app_id", "LARK_APP_ID")
	v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	v.BindEnv("lark.chat_id", "LARK_CHAT_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HROne.CompanyDomain == "" {
		return fmt.Errorf("hrone.company_domain is required")
	}

	if _, err := clock.LoadZone(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}

	if !validHour(c.Schedule.CheckInHour) || !validHour(c.Schedule.CheckOutHour) {
		return fmt.Errorf("schedule.check_in_hour and schedule.check_out_hour must be between 0 and 23")
	}
	if c.Schedule.CheckInHour >= c.Schedule.CheckOutHour {
		return fmt.Errorf("schedule.check_in_hour must be before schedule.check_out_hour")
	}

	seen := make(map[string]bool, len(c.Schedule.Jobs))
	for i, job := range c.Schedule.Jobs {
		if job.Name == "" {
			return fmt.Errorf("schedule.jobs[%d].name is required", i)
		}
		if seen[job.Name] {
			return fmt.Errorf("schedule.jobs[%d]: duplicate job name %q", i, job.Name)
		}
		seen[job.Name] = true
		if err := worker.ValidateSchedule(job.Cron); err != nil {
			return fmt.Errorf("schedule.jobs[%d].cron: %w", i, err)
		}
	}

	if (c.Lark.AppID != "" || c.Lark.AppSecret != "") && !c.Lark.Enabled() {
		return fmt.Errorf("lark.app_id, lark.app_secret and lark.chat_id must be set together")
	}

	return nil
}

// Location returns the organisation time zone
func (c *Config) Location() (*time.Location, error) {
	return clock.LoadZone(c.Schedule.Timezone)
}

// Windows returns the configured punch windows
func (c *Config) Windows() decision.Windows {
	return decision.Windows{CheckIn: c.Schedule.CheckInHour, CheckOut: c.Schedule.CheckOutHour}
}

// Jobs returns the configured jobs, or the default pair when none are listed
func (c *Config) Jobs() []workflow.Job {
	if len(c.Schedule.Jobs) == 0 {
		return workflow.DefaultJobs()
	}
	jobs := make([]workflow.Job, 0, len(c.Schedule.Jobs))
	for _, j := range c.Schedule.Jobs {
		jobs = append(jobs, workflow.Job{Name: j.Name, Schedule: j.Cron, Policy: j.Policy})
	}
	return jobs
}

// JitterSeed returns the gate seed, derived from the clock when unset
func (c *Config) JitterSeed() int64 {
	if c.Schedule.JitterSeed != 0 {
		return c.Schedule.JitterSeed
	}
	return time.Now().UnixNano()
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}
