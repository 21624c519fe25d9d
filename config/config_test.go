package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/config"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settlement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAMLThenEnvironment(t *testing.T) {
	// GIVEN: A YAML file choosing postgres and console logs
	// AND: An environment override for the address and origins
	// THEN: YAML replaces defaults and the environment replaces YAML
	chdir(t, t.TempDir())
	path := writeFile(t, `
addr: ":9000"
database:
  driver: postgres
  url: postgres://hr@localhost/hr
log:
  level: debug
  format: console
`)
	t.Setenv("SETTLEMENT_ADDR", ":9100")
	t.Setenv("SETTLEMENT_CORS_ORIGINS", "https://hr.example.com, https://ops.example.com")
	t.Setenv("SETTLEMENT_DEMO", "false")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://hr@localhost/hr", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://hr.example.com", "https://ops.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.Demo)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SETTLEMENT_DB_DRIVER=memory\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SETTLEMENT_DB_DRIVER") })

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
}

func TestLoad_InvalidFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "addr: [not, a, string"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"memory driver", func(c *config.Config) { c.Database.Driver = config.DriverMemory }, true},
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "oracle" }, false},
		{"postgres without url", func(c *config.Config) { c.Database.Driver = config.DriverPostgres }, false},
		{"sqlite without path", func(c *config.Config) { c.Database.SQLitePath = "" }, false},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, false},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, false},
		{"empty addr", func(c *config.Config) { c.Addr = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := config.LogConfig{Level: "warn", Format: format}.NewLogger()
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug should be disabled at warn")
	}

	_, err := config.LogConfig{Level: "nope", Format: "json"}.NewLogger()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
