package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{"db_driver": "postgres", "DATABASE_URL": "postgres://localhost/recipes", "neighbors": 10}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/recipes", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.Neighbors)
	assert.Equal(t, 5, cfg.MaxResults)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"DATABASE_URL": "file.db", "max_results": 3}`)
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("RECIPEMATCH_REQUIRE_ALL", "false")
	t.Setenv("RECIPEMATCH_ALLOW_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.MaxResults)
	assert.False(t, cfg.RequireAll)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowOrigins)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(writeConfig(t, `{"neighbors": `))
	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("RECIPEMATCH_NEIGHBORS", "many")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"dsn", func(c *Config) { c.DatabaseURL = " " }},
		{"neighbors", func(c *Config) { c.Neighbors = 0 }},
		{"max results", func(c *Config) { c.MaxResults = -1 }},
		{"cache size", func(c *Config) { c.CacheSize = 0 }},
		{"suggestions", func(c *Config) { c.Suggestions = -1 }},
		{"thumbnail width", func(c *Config) { c.ThumbnailWidth = 0 }},
		{"timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
