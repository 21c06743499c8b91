package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	base := []byte(`
db:
  host: base-host
  port: 5432
server:
  port: "8080"
schedule:
  interval_seconds: 60
`)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), base, 0o644))

	t.Run("base only", func(t *testing.T) {
		cfg, err := LoadConfig("base", dir)
		assert.NoError(t, err)
		db := cfg["db"].(map[string]interface{})
		assert.Equal(t, "base-host", db["host"])
	})

	t.Run("environment overlay wins over base", func(t *testing.T) {
		overlay := []byte(`
db:
  host: staging-host
`)
		assert.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), overlay, 0o644))

		cfg, err := LoadConfig("staging", dir)
		assert.NoError(t, err)
		db := cfg["db"].(map[string]interface{})
		assert.Equal(t, "staging-host", db["host"])
		// Keys absent from the overlay keep their base values.
		assert.Equal(t, 5432, db["port"])
	})

	t.Run("secrets are substituted into placeholders", func(t *testing.T) {
		withSecret := []byte(`
db:
  password: "${DB_PASSWORD}"
`)
		secretDir := t.TempDir()
		assert.NoError(t, os.WriteFile(filepath.Join(secretDir, "base.yaml"), withSecret, 0o644))
		assert.NoError(t, os.WriteFile(filepath.Join(secretDir, "secrets.env"), []byte("DB_PASSWORD=hunter2\n"), 0o644))

		cfg, err := LoadConfig("base", secretDir)
		assert.NoError(t, err)
		db := cfg["db"].(map[string]interface{})
		assert.Equal(t, "hunter2", db["password"])
	})

	t.Run("missing base.yaml fails", func(t *testing.T) {
		_, err := LoadConfig("base", t.TempDir())
		assert.Error(t, err)
	})
}

func TestOverrideFromEnv(t *testing.T) {
	t.Run("env vars win over file values", func(t *testing.T) {
		t.Setenv("DB_HOST", "env-host")
		cfg := DBConfig{Host: "file-host"}
		OverrideDBFromEnv(&cfg)
		assert.Equal(t, "env-host", cfg.Host)
	})

	t.Run("unset env vars leave the file values alone", func(t *testing.T) {
		t.Setenv("SCHEDULER_INTERVAL_SECONDS", "")
		t.Setenv("IMMINENT_HORIZON_DAYS", "")
		cfg := ScheduleConfig{IntervalSeconds: 60, ImminentHorizonDays: 2}
		OverrideScheduleFromEnv(&cfg)
		assert.Equal(t, 60, cfg.IntervalSeconds)
		assert.Equal(t, 2, cfg.ImminentHorizonDays)
	})

	t.Run("schedule overrides parse integers", func(t *testing.T) {
		t.Setenv("SCHEDULER_INTERVAL_SECONDS", "30")
		t.Setenv("IMMINENT_HORIZON_DAYS", "5")
		cfg := ScheduleConfig{IntervalSeconds: 60, ImminentHorizonDays: 2}
		OverrideScheduleFromEnv(&cfg)
		assert.Equal(t, 30, cfg.IntervalSeconds)
		assert.Equal(t, 5, cfg.ImminentHorizonDays)
	})
}
