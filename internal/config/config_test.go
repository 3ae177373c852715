package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "dochub.db", cfg.DB.Path)
	assert.Equal(t, 1, cfg.DB.MaxOpen)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, "dochub", cfg.JWT.Issuer)
	assert.False(t, cfg.Auth.Enabled(), "empty password hash disables auth")
	assert.Equal(t, 30*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 50, cfg.Lookup.BatchSize)
	assert.Equal(t, "DocHub/1.0", cfg.Lookup.UserAgent)
	assert.Equal(t, 50.0, cfg.Process.MaxFileSizeMB)
	assert.Equal(t, "#content", cfg.Process.ContentIDSuffix)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 10, cfg.Batch.ReclaimInterval)
	assert.False(t, cfg.Storage.ArchiveEnabled)
	assert.Equal(t, "noop", cfg.Email.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCHUB_SERVER_PORT", ":9090")
	t.Setenv("DOCHUB_BATCH_CONCURRENCY", "8")
	t.Setenv("DOCHUB_LOOKUP_ENDPOINT", "https://hooks.example.com/lookup")
	t.Setenv("DOCHUB_AUTH_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, "https://hooks.example.com/lookup", cfg.Lookup.Endpoint)
	assert.True(t, cfg.Auth.Enabled())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("DOCHUB_BATCH_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.concurrency")
}

func TestValidate_CrossFieldConstraints(t *testing.T) {
	base := func() *Config {
		return &Config{
			Process: ProcessConfig{MaxFileSizeMB: 50},
			Batch:   BatchConfig{Concurrency: 4, ReclaimInterval: 10},
			Email:   EmailConfig{Provider: "noop"},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Storage.ArchiveEnabled = true
	cfg.Storage.Bucket = ""
	assert.ErrorContains(t, cfg.Validate(), "storage.bucket")

	cfg = base()
	cfg.Email.Provider = "ses"
	assert.ErrorContains(t, cfg.Validate(), "email.from_address")

	cfg = base()
	cfg.Process.MaxFileSizeMB = 0
	assert.ErrorContains(t, cfg.Validate(), "max_file_size_mb")
}

func TestDBConfig_DSN(t *testing.T) {
	d := DBConfig{Path: "/var/lib/dochub/runs.db"}
	assert.Equal(t, "file:/var/lib/dochub/runs.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", d.DSN())
}
