package forgeconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VitaliPath/forge/pkg/forgeconfig"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := forgeconfig.Default()
	require.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := forgeconfig.Load("")
	require.NoError(t, err)
	require.Equal(t, forgeconfig.Default(), cfg)
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "worker_pool:\n  size: 4\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := forgeconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.WorkerPool.Size)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, forgeconfig.Default().Decay, cfg.Decay)
}

func TestValidateRejectsNegativeWorkerPoolSize(t *testing.T) {
	cfg := forgeconfig.Default()
	cfg.WorkerPool.Size = -1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := forgeconfig.Default()
	cfg.LogLevel = "verbose"
	require.Error(t, cfg.Validate())
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	t.Setenv("FORGE_LOG_LEVEL", "error")
	cfg, err := forgeconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, "error", cfg.LogLevel)
}
