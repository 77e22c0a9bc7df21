package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CONFIG_PATH", "")
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolateEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "Max", cfg.Person)
	assert.Equal(t, driverSQLite, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, ".local", "share", "mealtime", "mealtime.db"), cfg.Storage.Path)
	assert.Equal(t, "My happy meal time", cfg.Display.Title)
	assert.Equal(t, "1/2/06, 3:04 PM", cfg.Display.TimeLayout)
	assert.False(t, cfg.Display.EmptyPlaceholder)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
person: Ann
storage:
  driver: bolt
display:
  empty_placeholder: true
  placeholder_text: nothing eaten
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Ann", cfg.Person)
	assert.Equal(t, driverBolt, cfg.Storage.Driver)
	assert.Equal(t, "mealtime.bolt", filepath.Base(cfg.Storage.Path))
	assert.True(t, cfg.Display.EmptyPlaceholder)
	assert.Equal(t, "nothing eaten", cfg.Display.PlaceholderText)
	assert.Equal(t, "My happy meal time", cfg.Display.Title)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "person: Ann\n")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MEALTIME_PERSON", "Eve")
	t.Setenv("MEALTIME_STORAGE_PATH", "/tmp/meals.db")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Eve", cfg.Person)
	assert.Equal(t, "/tmp/meals.db", cfg.Storage.Path)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "ok"},
		{name: "blank person", mutate: func(c *Config) { c.Person = "  " }, wantErr: ErrInvalidName},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "csv" }},
		{name: "empty layout", mutate: func(c *Config) { c.Display.TimeLayout = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig("SQLite ", "")
			if tt.mutate != nil {
				tt.mutate(c)
			}

			err := c.Validate()
			switch {
			case tt.name == "ok":
				require.NoError(t, err)
				assert.Equal(t, driverSQLite, c.Storage.Driver)
				assert.NotEmpty(t, c.Storage.Path)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}
