package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kgms-backend/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setNeo4jEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
}

// TestLoadConfig tests basic configuration loading from environment variables.
func TestLoadConfig(t *testing.T) {
	setNeo4jEnv(t)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MAX_LIST_LIMIT", "500")
	t.Setenv("DEFAULT_NODE_LIMIT", "200")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "neo4j", cfg.Neo4jDatabase)
	assert.Equal(t, 500, cfg.MaxListLimit)
	assert.Equal(t, 200, cfg.DefaultNodeLimit)
	assert.Equal(t, 100, cfg.DefaultEdgeLimit)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "http://localhost:8000", cfg.CORSOrigin())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_MissingConnectionIsFatal(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	t.Setenv("STORE_BACKEND", "")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_URI is required")
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kgms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_backend: memory\ndefault_edge_limit: 25\ncache_ttl: 2m\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_NODE_LIMIT", "30")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 25, cfg.DefaultEdgeLimit)
	assert.Equal(t, 30, cfg.DefaultNodeLimit, "environment wins over file")
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "45s")

	cfg, err := config.LoadClientConfig()
	require.NoError(t, err, "server settings are not required")
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 45*time.Second, cfg.CacheTTL)

	t.Setenv("CACHE_TTL", "-1s")
	_, err = config.LoadClientConfig()
	assert.Error(t, err)
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	valid := func() *config.Config {
		cfg := config.Defaults()
		cfg.Neo4jURI = "neo4j://db:7687"
		cfg.Neo4jUser = "neo4j"
		cfg.Neo4jPassword = "pw"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid development config", mutate: func(*config.Config) {}},
		{name: "missing credentials", mutate: func(c *config.Config) { c.Neo4jPassword = "" }, wantErr: "NEO4J_USER and NEO4J_PASSWORD are required"},
		{name: "unknown backend", mutate: func(c *config.Config) { c.StoreBackend = "sqlite" }, wantErr: "unknown STORE_BACKEND"},
		{name: "memory in production", mutate: func(c *config.Config) {
			c.StoreBackend = config.StoreMemory
			c.Environment = "production"
		}, wantErr: "not allowed in production"},
		{name: "production without origin", mutate: func(c *config.Config) { c.Environment = "production" }, wantErr: "FRONTEND_URL is required"},
		{name: "default above max", mutate: func(c *config.Config) { c.MaxListLimit = 50 }, wantErr: "cannot exceed MAX_LIST_LIMIT"},
		{name: "zero max", mutate: func(c *config.Config) { c.MaxListLimit = 0 }, wantErr: "MAX_LIST_LIMIT must be positive"},
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

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kgms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.ConfigFile = path

	w, err := config.NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var got []config.Reloadable
	w.OnChange(func(r config.Reloadable) { got = append(got, r) })

	t.Run("Should notify on effective change", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nmax_list_limit: 20000\n"), 0o600))
		w.Reload()

		require.Len(t, got, 1)
		assert.Equal(t, "debug", got[0].LogLevel)
		assert.Equal(t, 20000, got[0].MaxListLimit)
		assert.Equal(t, "debug", w.Config().LogLevel)
	})

	t.Run("Should ignore invalid limits", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("max_list_limit: 1\n"), 0o600))
		w.Reload()

		assert.Len(t, got, 1)
		assert.Equal(t, 20000, w.Config().MaxListLimit)
	})

	t.Run("Should ignore unchanged files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("# tuned\nlog_level: debug\nmax_list_limit: 20000\n"), 0o600))
		w.Reload()
		assert.Len(t, got, 1)
	})
}

func TestWatcher_ReloadKeepsEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kgms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_edge_limit: 50\n"), 0o600))

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_LIST_LIMIT", "500")
	t.Setenv("DEFAULT_NODE_LIMIT", "200")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.MaxListLimit)
	cfg.Environment = "test"

	w, err := config.NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var got []config.Reloadable
	w.OnChange(func(r config.Reloadable) { got = append(got, r) })

	require.NoError(t, os.WriteFile(path, []byte("default_edge_limit: 25\nlog_level: warn\nmax_list_limit: 20000\n"), 0o600))
	w.Reload()

	require.Len(t, got, 1)
	assert.Equal(t, config.Reloadable{
		LogLevel:         "debug",
		DefaultNodeLimit: 200,
		DefaultEdgeLimit: 25,
		MaxListLimit:     500,
	}, got[0], "environment wins over the reloaded file")
	assert.Equal(t, 500, w.Config().MaxListLimit)
}
