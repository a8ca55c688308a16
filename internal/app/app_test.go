package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/config"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func TestNew_FromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	patterns := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(patterns, []byte("patterns:\n  units:\n    - '\\bqty\\b'\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.BaseDir = dir
	cfg.Ingest.Brand = "OTHER"
	cfg.Ingest.PatternsFile = "patterns.yaml"
	cfg.Ingest.PeriodLookback = 0

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "OTHER", a.Ingest.Brand)
	assert.Equal(t, 0, a.Ingest.Lookback(), "explicit 0 lookback is kept")
	assert.Equal(t, filepath.Join(dir, "column_profiles.json"), a.Profiles.Path())
	assert.Equal(t, "Qty", a.Coordinator().Mapper().MatchRole(model.RoleUnits, []string{"Units", "Qty"}))

	st, err := a.Store()
	require.NoError(t, err)
	again, err := a.Store()
	require.NoError(t, err)
	assert.Same(t, st, again)
	assert.FileExists(t, filepath.Join(dir, "spins.db"))
}

func TestNew_BadPatterns(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.Ingest.PatternsFile = "missing.yaml"

	_, err := New(cfg)
	assert.Error(t, err)
}
