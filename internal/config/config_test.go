package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, info, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)

	assert.False(t, info.FileFound)
	assert.False(t, info.PortSpecified)
	assert.Equal(t, 20262, cfg.Server.Port)
	assert.Equal(t, "NEOLEA", cfg.Ingest.Brand)
	assert.Equal(t, 5, cfg.Ingest.PeriodLookback)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir())
	assert.Equal(t, filepath.Join(dir, "column_profiles.json"), cfg.ProfilePath())
	assert.Equal(t, filepath.Join(dir, "spins.db"), cfg.DBPath())
	assert.Equal(t, "", cfg.PatternsFile())
}

func TestLoad_FileEnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
[server]
port = 8088

[data]
data_dir = "spins"
profile_path = "/abs/profiles.json"

[ingest]
brand = "ACME"
period_lookback = 0
preferred_sheets = ["Retailer"]
patterns_file = "patterns.yaml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPINS_DB_PATH=db/facts.db\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("SPINS_DB_PATH") })
	t.Setenv("VELOCITY_BRAND", "NEOLEA")
	t.Setenv("VELOCITY_LOG_MODE", "production")

	cfg, info, err := Load(path)
	require.NoError(t, err)

	assert.True(t, info.FileFound)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "NEOLEA", cfg.Ingest.Brand, "env overrides file")
	assert.Equal(t, "production", cfg.Log.Mode)
	assert.Equal(t, []string{"Retailer"}, cfg.Ingest.PreferredSheets)
	assert.Equal(t, 200, cfg.Ingest.MaxScan, "unset keys keep defaults")
	assert.Equal(t, 0, cfg.Ingest.PeriodLookback, "explicit 0 is kept")
	assert.Equal(t, filepath.Join(dir, "spins"), cfg.DataDir())
	assert.Equal(t, "/abs/profiles.json", cfg.ProfilePath())
	assert.Equal(t, filepath.Join(dir, "db", "facts.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join(dir, "patterns.yaml"), cfg.PatternsFile())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	require.NoError(t, os.WriteFile(path, []byte("[server\nport = 1"), 0644))
	_, _, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(""), 0644))
	t.Setenv("VELOCITY_PORT", "not-a-port")
	_, _, err = Load(path)
	assert.Error(t, err)
}

func TestSaveConfigAndEnsureDataDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "conf", FileName)

	cfg := DefaultConfig()
	cfg.Ingest.Brand = "SAVED"
	require.NoError(t, SaveConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SAVED")
	assert.NotContains(t, string(data), "BaseDir")

	cfg.BaseDir = dir
	dataDir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	for _, sub := range []string{"uploads", "exports"} {
		st, err := os.Stat(filepath.Join(dataDir, sub))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
	assert.Equal(t, filepath.Join(dir, "data", "exports", "tidy.csv"), GetDataPath(cfg, "exports", "tidy.csv"))
}
