package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, Default(), *c.Balance)
	assert.Equal(t, 50*time.Millisecond, c.Runtime.TickInterval)
	assert.Equal(t, 60*time.Second, c.Runtime.AutosaveInterval)
	assert.Equal(t, 24*time.Hour, c.Quests.ResetAfter)
	assert.Equal(t, 500.0, c.Quests.Goals.Clicks)
	assert.Equal(t, DriverFile, c.Storage.Driver)
	assert.Equal(t, ":8080", c.Server.Addr)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenith.yml")
	body := `
version: "2"
difficulty: hard
quests:
  goals:
    clicks: 250
  reset_after: 12h
runtime:
  tick_interval: 100ms
  seed: 42
storage:
  driver: sqlite
server:
  addr: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, Hard(), *c.Balance)
	assert.Equal(t, 250.0, c.Quests.Goals.Clicks)
	assert.Equal(t, 10.0, c.Quests.Goals.Upgrades)
	assert.Equal(t, 12*time.Hour, c.Quests.ResetAfter)
	assert.Equal(t, 100*time.Millisecond, c.Runtime.TickInterval)
	assert.Equal(t, int64(42), c.Runtime.Seed)
	assert.Equal(t, "data/zenith.db", c.Storage.Path)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
}

func TestLoad_ExplicitBalanceKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenith.yml")
	require.NoError(t, os.WriteFile(path, []byte("balance:\n  cost_growth: 1.2\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.2, c.Balance.CostGrowth)
	assert.Equal(t, 1.6, c.Balance.XPGrowth)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenith.yml")
	require.NoError(t, os.WriteFile(path, []byte("runtime: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.Storage.Driver = DriverPostgres
	assert.Error(t, c.Validate())
	c.Storage.DSN = "postgres://localhost/zenith"
	assert.NoError(t, c.Validate())

	c.Storage.Driver = "mongo"
	assert.Error(t, c.Validate())
}

func TestPresets(t *testing.T) {
	assert.Equal(t, Casual(), Preset("casual"))
	assert.Equal(t, Hard(), Preset("hard"))
	assert.Equal(t, Default(), Preset("whatever"))
	assert.Less(t, Casual().CostGrowth, Default().CostGrowth)
	assert.Greater(t, Hard().PrestigeThresholdBase, Default().PrestigeThresholdBase)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DIFFICULTY", "casual")
	t.Setenv("ZENITH_COST_GROWTH", "1.3")
	t.Setenv("ZENITH_ADDR", ":7000")
	t.Setenv("ZENITH_STORAGE_DRIVER", "sqlite")
	t.Setenv("ZENITH_TICK_INTERVAL", "20ms")
	t.Setenv("ZENITH_SEED", "7")
	t.Setenv("ZENITH_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://db/zenith")

	c := Defaults()
	ApplyEnv(c)

	assert.Equal(t, 1.3, c.Balance.CostGrowth)
	assert.Equal(t, Casual().XPGrowth, c.Balance.XPGrowth)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, "data/zenith.db", c.Storage.Path, "path follows the new driver")
	assert.Equal(t, 20*time.Millisecond, c.Runtime.TickInterval)
	assert.Equal(t, int64(7), c.Runtime.Seed)
	assert.Equal(t, "postgres://db/zenith", c.Storage.DSN)
}

func TestFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("DIFFICULTY", "")
	t.Setenv("ZENITH_XP_GROWTH", "fast")
	t.Setenv("ZENITH_COST_GROWTH", "0.9")
	assert.Equal(t, Default(), FromEnv(Default()))
}
