package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	t.Run("matches the reference hyperparameters", func(t *testing.T) {
		cfg := Default()
		require.Equal(t, 0.9, cfg.Policy.Alpha)
		require.Equal(t, 0.95, cfg.Policy.Gamma)
		require.Equal(t, 1.0, cfg.Policy.Epsilon)
		require.Equal(t, 0.9995, cfg.Policy.EpsilonDecay)
		require.Equal(t, 0.01, cfg.Policy.MinEpsilon)
		require.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("overrides only the given keys", func(t *testing.T) {
		path := writeConfig(t, `
seed: 7
policy:
  alpha: 0.5
  key_open_categories: true
  heuristics:
    chance: 0.2
training:
  workers: 2
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, uint64(7), cfg.Seed)
		require.Equal(t, 0.5, cfg.Policy.Alpha)
		require.Equal(t, 0.95, cfg.Policy.Gamma)
		require.True(t, cfg.Policy.KeyOpenCategories)
		require.Equal(t, 0.2, cfg.Policy.Heuristics.Chance)
		require.Equal(t, 0.5, cfg.Policy.Heuristics.SmallStraight)
		require.Equal(t, 2, cfg.Training.Workers)
		require.Equal(t, EPISODES, cfg.Training.Episodes)
		require.Len(t, cfg.PolicyOptions(), 8)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "policy:\n  alpha: 2\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "policy: [\n"))
		require.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("YAHTZEE_SEED", "99")
		t.Setenv("YAHTZEE_WORKERS", "3")
		t.Setenv("YAHTZEE_LOG_LEVEL", "debug")

		cfg := Default()
		require.NoError(t, cfg.ApplyEnv())
		require.Equal(t, uint64(99), cfg.Seed)
		require.Equal(t, 3, cfg.Training.Workers)
		require.Equal(t, 3, cfg.Evaluation.Workers)
		require.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("rejects bad numbers", func(t *testing.T) {
		t.Setenv("YAHTZEE_SEED", "minus one")
		cfg := Default()
		require.Error(t, cfg.ApplyEnv())
	})
}

func TestResolveSeed(t *testing.T) {
	t.Run("keeps a configured seed", func(t *testing.T) {
		cfg := Default()
		cfg.Seed = 11
		require.Equal(t, uint64(11), cfg.ResolveSeed())
	})

	t.Run("draws and remembers a seed", func(t *testing.T) {
		cfg := Default()
		seed := cfg.ResolveSeed()
		require.NotZero(t, seed)
		require.Equal(t, seed, cfg.Seed)
		require.Equal(t, seed, cfg.ResolveSeed())
	})
}
