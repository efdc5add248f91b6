package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.VersionDir)
	assert.NotEmpty(t, cfg.StatePath)
	assert.Equal(t, "auto", cfg.Output)
	assert.Equal(t, core.DefaultAutoSaveSettings(), cfg.AutoSave)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	path := writeConfig(t, `
version_dir: /tmp/leapgrid-test/versions
output: json
autosave:
  enabled: false
  interval_minutes: 20
  keep_versions: 5
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/leapgrid-test/versions", cfg.VersionDir)
	assert.Equal(t, "json", cfg.Output)
	assert.False(t, cfg.AutoSave.Enabled)
	assert.Equal(t, 20, cfg.AutoSave.IntervalMinutes)
	assert.Equal(t, 5, cfg.AutoSave.KeepVersions)
	assert.Equal(t, filepath.Dir(path), cfg.ProjectRoot)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	path := writeConfig(t, "output: json\n")
	t.Setenv("LEAPGRID_OUTPUT", "markdown")
	t.Setenv("LEAPGRID_AUTOSAVE__INTERVAL_MINUTES", "30")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Output)
	assert.Equal(t, 30, cfg.AutoSave.IntervalMinutes)
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	path := writeConfig(t, "output: json\n")
	t.Setenv("LEAPGRID_OUTPUT", "markdown")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "auto", "")
	flags.Int("interval", 5, "")
	require.NoError(t, flags.Parse([]string{"--output", "text", "--interval", "7"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, 7, cfg.AutoSave.IntervalMinutes, "--interval maps to autosave.interval_minutes")
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	path := writeConfig(t, "output: json\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "auto", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output, "default flag values must not mask the config file")
}

func TestLoadConfig_RejectsBadOutput(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	_, err := LoadConfig(writeConfig(t, "output: csv\n"), nil)
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "output", cfgErr.Key)
}

func TestLoadConfig_RejectsBadAutoSaveRange(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	_, err := LoadConfig(writeConfig(t, "autosave:\n  interval_minutes: 0\n"), nil)
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "interval_minutes", cfgErr.Key)

	_, err = LoadConfig(writeConfig(t, "autosave:\n  keep_versions: 999\n"), nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "keep_versions", cfgErr.Key)
}

func TestGetConfigFileUsed(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	path := writeConfig(t, "")
	_, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.NotNil(t, GetCurrentConfig())
}
