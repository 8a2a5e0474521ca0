package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
hrone:
  company_domain: acme
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/autopunch.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Second, cfg.HROne.APITimeout)
	assert.Equal(t, 10*time.Second, cfg.Alert.Timeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Schedule.Timezone)
	assert.Equal(t, decision.DefaultWindows(), cfg.Windows())
	assert.Equal(t, workflow.DefaultJobs(), cfg.Jobs())
	assert.False(t, cfg.Lark.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMPANY_DOMAIN", "from-env")
	t.Setenv("IP_ADDRESS", "10.1.2.3")
	t.Setenv("ALERT_WEBHOOK", "https://hooks.example/default")
	t.Setenv("LARK_APP_ID", "cli_a")
	t.Setenv("LARK_APP_SECRET", "secret")
	t.Setenv("LARK_CHAT_ID", "oc_1")

	path := writeConfig(t, `
hrone:
  company_domain: from-file
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.HROne.CompanyDomain)
	assert.Equal(t, "10.1.2.3", cfg.HROne.IPAddress)
	assert.Equal(t, "https://hooks.example/default", cfg.Alert.DefaultWebhook)
	assert.True(t, cfg.Lark.Enabled())
}

func TestLoad_Jobs(t *testing.T) {
	path := writeConfig(t, `
hrone:
  company_domain: acme
schedule:
  timezone: UTC
  jitter_seed: 42
  jobs:
    - name: morning
      cron: "0 8 * * 1-5"
      policy:
        alert_on_every_step: true
        apply_random_jitter: true
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	jobs := cfg.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "morning", jobs[0].Name)
	assert.Equal(t, "0 8 * * 1-5", jobs[0].Schedule)
	assert.True(t, jobs[0].Policy.AlertOnEveryStep)
	assert.True(t, jobs[0].Policy.ApplyRandomJitter)
	assert.Equal(t, int64(42), cfg.JitterSeed())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HROne: HROneConfig{CompanyDomain: "acme"},
			Schedule: ScheduleConfig{
				Timezone:     "Asia/Kolkata",
				CheckInHour:  8,
				CheckOutHour: 17,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing company domain", func(c *Config) { c.HROne.CompanyDomain = "" }, "company_domain"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "timezone"},
		{"hour out of range", func(c *Config) { c.Schedule.CheckOutHour = 24 }, "between 0 and 23"},
		{"inverted windows", func(c *Config) { c.Schedule.CheckInHour = 18 }, "before"},
		{"bad cron", func(c *Config) {
			c.Schedule.Jobs = []JobConfig{{Name: "x", Cron: "every minute"}}
		}, "cron"},
		{"unnamed job", func(c *Config) {
			c.Schedule.Jobs = []JobConfig{{Cron: "* * * * *"}}
		}, "name is required"},
		{"duplicate job", func(c *Config) {
			c.Schedule.Jobs = []JobConfig{{Name: "x", Cron: "* * * * *"}, {Name: "x", Cron: "* * * * *"}}
		}, "duplicate"},
		{"partial lark", func(c *Config) { c.Lark.AppID = "cli_a" }, "lark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("exports variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("AUTOPUNCH_TEST_A=from-file\nAUTOPUNCH_TEST_B=from-file\n"), 0o600))
		t.Setenv("AUTOPUNCH_TEST_A", "")
		os.Unsetenv("AUTOPUNCH_TEST_A")
		t.Setenv("AUTOPUNCH_TEST_B", "preset")
		t.Cleanup(func() { os.Unsetenv("AUTOPUNCH_TEST_A") })

		require.NoError(t, loadDotEnv(path))

		assert.Equal(t, "from-file", os.Getenv("AUTOPUNCH_TEST_A"))
		assert.Equal(t, "preset", os.Getenv("AUTOPUNCH_TEST_B"))
	})
}
