package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/store"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STORE_PATH", "")
	t.Setenv("STORE_CAPACITY_BYTES", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, store.KindFile, cfg.StoreBackend)
	assert.NotEmpty(t, cfg.StorePath)
	assert.Equal(t, store.DefaultCapacity, cfg.StoreCapacityBytes)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.Equal(t, "info", cfg.GetLoggerConfig().Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("STORE_PATH", "/var/lib/invoicer/invoices.db")
	t.Setenv("STORE_CAPACITY_BYTES", "1024")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	sc := cfg.GetStoreConfig()
	assert.Equal(t, store.KindSQLite, sc.Kind)
	assert.Equal(t, "/var/lib/invoicer/invoices.db", sc.Path)
	assert.Equal(t, int64(1024), sc.CapacityBytes)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("REDIS_ADDR", "")
	path := filepath.Join(t.TempDir(), "invoicer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: redis
redis:
  addr: cache.internal:6380
  db: 2
  key_prefix: "acme:"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	sc := cfg.GetStoreConfig()
	assert.Equal(t, store.KindRedis, sc.Kind)
	assert.Equal(t, "cache.internal:6380", sc.Redis.Addr)
	assert.Equal(t, 2, sc.Redis.DB)
	assert.Equal(t, "acme:", sc.Redis.Prefix)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file", Config{StoreBackend: store.KindFile, StorePath: "/tmp/x"}, false},
		{"file without path", Config{StoreBackend: store.KindFile}, true},
		{"memory", Config{StoreBackend: store.KindMemory}, false},
		{"redis without addr", Config{StoreBackend: store.KindRedis}, true},
		{"unknown backend", Config{StoreBackend: "s3"}, true},
		{"negative capacity", Config{StoreBackend: store.KindMemory, StoreCapacityBytes: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
