package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/husseinbouik/taskman/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Empty(t, cfg.DB.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKMAN_API_URL", "https://tasks.example.com/api")
	t.Setenv("TASKMAN_HTTP_TIMEOUT", "3s")
	t.Setenv("TASKMAN_DB_PATH", "/tmp/custom.db")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "/tmp/custom.db", cfg.DB.Path)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("TASKMAN_HTTP_TIMEOUT", "soon")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api:\n  base_url: http://backend:9000/api\ndb:\n  path: /data/taskman.db\n",
	), 0o644))
	t.Setenv("TASKMAN_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend:9000/api", cfg.API.BaseURL)
	require.Equal(t, "/data/taskman.db", cfg.DB.Path)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://backend:9000/api\n"), 0o644))
	t.Setenv("TASKMAN_CONFIG_PATH", path)
	t.Setenv("TASKMAN_API_URL", "http://winner:1234/api")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://winner:1234/api", cfg.API.BaseURL)
}
