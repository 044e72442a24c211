package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tendril/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "tendril.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.ShouldEscape())
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "tendril.yaml", `
scripts: ./site
source: redis
strict: true
escape: false
log_level: debug
vars:
  title: Home
redis:
  addr: redis:6379
  db: 2
  prefix: "site:"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./site", cfg.Scripts)
	assert.Equal(t, config.SourceRedis, cfg.Source)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.ShouldEscape())
	assert.Equal(t, "Home", cfg.Vars["title"])
	assert.Equal(t, config.Redis{Addr: "redis:6379", DB: 2, Prefix: "site:"}, cfg.Redis)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad yaml", "tendril.yaml", "scripts: [unterminated"},
		{"bad json", "tendril.json", "{"},
		{"unknown source", "tendril.yaml", "source: ftp"},
		{"unknown level", "tendril.yaml", "log_level: loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadVars(t *testing.T) {
	vars, err := config.LoadVars(write(t, "vars.json", `{"n": 3, "tags": ["a"]}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, vars["n"])
	assert.Equal(t, []any{"a"}, vars["tags"])

	vars, err = config.LoadVars(write(t, "vars.yaml", "name: Ada\nn: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", vars["name"])
	assert.Equal(t, 3, vars["n"])

	_, err = config.LoadVars(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := config.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
