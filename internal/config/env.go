package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv loads balance configuration from environment variables
// Falls back to base if variables are not set
func FromEnv(base Balance) Balance {
	cfg := base

	// Support preset modes
	if mode := os.Getenv("DIFFICULTY"); mode != "" {
		cfg = Preset(mode)
	}

	if val := getEnvFloat("ZENITH_XP_BASE"); val > 0 {
		cfg.XPBase = val
	}
	if val := getEnvFloat("ZENITH_XP_GROWTH"); val > 1 {
		cfg.XPGrowth = val
	}
	if val := getEnvFloat("ZENITH_COST_GROWTH"); val > 1 {
		cfg.CostGrowth = val
	}
	if val := getEnvFloat("ZENITH_PRESTIGE_COST_GROWTH"); val > 1 {
		cfg.PrestigeCostGrowth = val
	}
	if val := getEnvFloat("ZENITH_PRESTIGE_THRESHOLD"); val > 0 {
		cfg.PrestigeThresholdBase = val
	}
	return cfg
}

// ApplyEnv overlays ZENITH_* variables on c.
func ApplyEnv(c *Config) {
	if c.Balance == nil {
		b := Preset(c.Difficulty)
		c.Balance = &b
	}
	b := FromEnv(*c.Balance)
	c.Balance = &b

	if v := os.Getenv("ZENITH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ZENITH_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("ZENITH_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	} else if os.Getenv("ZENITH_STORAGE_DRIVER") != "" {
		// the default path depends on the driver
		c.Storage.Path = ""
		c.Storage.ApplyDefaults()
	}
	if v := os.Getenv("ZENITH_DSN"); v != "" {
		c.Storage.DSN = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" && c.Storage.DSN == "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("ZENITH_CATALOG"); v != "" {
		c.CatalogPath = v
	}
	if d := getEnvDuration("ZENITH_TICK_INTERVAL"); d > 0 {
		c.Runtime.TickInterval = d
	}
	if d := getEnvDuration("ZENITH_AUTOSAVE_INTERVAL"); d > 0 {
		c.Runtime.AutosaveInterval = d
	}
	if v := os.Getenv("ZENITH_ROLLOVER_CRON"); v != "" {
		c.Runtime.RolloverCron = v
	}
	if v := getEnvInt("ZENITH_SEED"); v != 0 {
		c.Runtime.Seed = int64(v)
	}
	if v := getEnvFloat("ZENITH_ACTIONS_PER_SECOND"); v > 0 {
		c.Server.ActionsPerSecond = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvFloat(key string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return num
}

func getEnvDuration(key string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}
