package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8080
  env: production
database:
  driver: sqlite
  url: "file::memory:"
jwt:
  secret: from-file
admin:
  max_page_size: 50
  store_timeout: 2s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Admin.MaxPageSize)
	assert.Equal(t, 2*time.Second, cfg.Admin.StoreTimeout)
	assert.Equal(t, 20, cfg.Admin.DefaultPageSize)
	assert.Equal(t, 500, cfg.Admin.MaxBulkIDs)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ADMIN_MAX_BULK_IDS", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 42, cfg.Admin.MaxBulkIDs)
	assert.Equal(t, 42, cfg.Workers.JobExpiryBatch, "clamped to the bulk limit")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 5*time.Second, cfg.Admin.StoreTimeout)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := Load(writeConfig(t, sampleYAML))
	assert.Error(t, err)
}

func TestValidate_JobExpiryBatchWithinBulkLimit(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Workers.JobExpiryBatch)
	require.NoError(t, cfg.Validate())

	cfg.Workers.JobExpiryBatch = cfg.Admin.MaxBulkIDs + 1
	assert.ErrorContains(t, cfg.Validate(), "job_expiry_batch")

	cfg.Workers.JobExpiryBatch = 0
	assert.Error(t, cfg.Validate())
}
