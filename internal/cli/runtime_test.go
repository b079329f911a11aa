package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/config"
)

func TestLoadConfig_DatabaseOverride(t *testing.T) {
	db := tempDB(t)
	cfg, err := (&RootOptions{Database: db}).loadConfig()
	require.NoError(t, err)
	assert.Equal(t, db, cfg.Database)
}

func TestNewRuntime_UsesGivenConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Database = tempDB(t)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	// A config path that cannot be read shows the file is never reloaded.
	opts := &RootOptions{Format: "json", ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}
	rt, err := newRuntime(cmd, opts, cfg, clock.Fixed(0))
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, cfg, rt.cfg)
	_, err = opts.loadConfig()
	assert.Error(t, err)
}
