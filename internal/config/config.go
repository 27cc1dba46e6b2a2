package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"zenith/internal/quest"
)

type Config struct {
	Version     string   `yaml:"version" json:"version"`
	Difficulty  string   `yaml:"difficulty" json:"difficulty"`
	Balance     *Balance `yaml:"balance" json:"balance"`
	Quests      Quests   `yaml:"quests" json:"quests"`
	Runtime     Runtime  `yaml:"runtime" json:"runtime"`
	Storage     Storage  `yaml:"storage" json:"storage"`
	Server      Server   `yaml:"server" json:"server"`
	CatalogPath string   `yaml:"catalog_path" json:"catalog_path"`
}

type Quests struct {
	Goals      quest.Goals   `yaml:"goals" json:"goals"`
	ResetAfter time.Duration `yaml:"reset_after" json:"reset_after"`
}

type Runtime struct {
	TickInterval     time.Duration `yaml:"tick_interval" json:"tick_interval"`
	AutosaveInterval time.Duration `yaml:"autosave_interval" json:"autosave_interval"`
	RolloverCron     string        `yaml:"rollover_cron" json:"rollover_cron"`
	Seed             int64         `yaml:"seed" json:"seed"`
}

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Storage struct {
	Driver        string `yaml:"driver" json:"driver"`
	Path          string `yaml:"path" json:"path"`
	DSN           string `yaml:"dsn" json:"-"`
	KeepSnapshots int    `yaml:"keep_snapshots" json:"keep_snapshots"`
}

type Server struct {
	Addr             string  `yaml:"addr" json:"addr"`
	ActionsPerSecond float64 `yaml:"actions_per_second" json:"actions_per_second"`
	ActionBurst      int     `yaml:"action_burst" json:"action_burst"`
}

func (q *Quests) ApplyDefaults() {
	d := quest.DefaultGoals()
	if q.Goals.Clicks <= 0 {
		q.Goals.Clicks = d.Clicks
	}
	if q.Goals.Upgrades <= 0 {
		q.Goals.Upgrades = d.Upgrades
	}
	if q.Goals.LevelSpan <= 0 {
		q.Goals.LevelSpan = d.LevelSpan
	}
	if q.Goals.ClickReward <= 0 {
		q.Goals.ClickReward = d.ClickReward
	}
	if q.Goals.UpgradeReward <= 0 {
		q.Goals.UpgradeReward = d.UpgradeReward
	}
	if q.Goals.LevelReward <= 0 {
		q.Goals.LevelReward = d.LevelReward
	}
	if q.ResetAfter <= 0 {
		q.ResetAfter = quest.DefaultPeriod
	}
}

func (r *Runtime) ApplyDefaults() {
	if r.TickInterval <= 0 {
		r.TickInterval = 50 * time.Millisecond
	}
	if r.AutosaveInterval <= 0 {
		r.AutosaveInterval = 60 * time.Second
	}
	if r.RolloverCron == "" {
		r.RolloverCron = "0 * * * * *"
	}
	if r.Seed == 0 {
		r.Seed = time.Now().UnixNano()
	}
}

func (s *Storage) ApplyDefaults() {
	if s.Driver == "" {
		s.Driver = DriverFile
	}
	if s.Path == "" {
		switch s.Driver {
		case DriverSQLite:
			s.Path = "data/zenith.db"
		default:
			s.Path = "data"
		}
	}
	if s.KeepSnapshots <= 0 {
		s.KeepSnapshots = 10
	}
}

func (s *Server) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.ActionsPerSecond <= 0 {
		s.ActionsPerSecond = 30
	}
	if s.ActionBurst <= 0 {
		s.ActionBurst = 60
	}
}

// ApplyDefaults fills every zero value. An unset Balance takes the preset
// named by Difficulty.
func (c *Config) ApplyDefaults() {
	if c.Balance == nil {
		b := Preset(c.Difficulty)
		c.Balance = &b
	}
	c.Balance.ApplyDefaults()
	c.Quests.ApplyDefaults()
	c.Runtime.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Server.ApplyDefaults()
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage: postgres driver needs a dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage: unknown driver %q", c.Storage.Driver))
	}
	if c.Runtime.TickInterval < time.Millisecond {
		errs = append(errs, fmt.Errorf("runtime: tick_interval %s is too short", c.Runtime.TickInterval))
	}
	if c.Balance != nil && c.Balance.XPGrowth <= 1 {
		errs = append(errs, errors.New("balance: xp_growth must be greater than 1"))
	}
	return errors.Join(errs...)
}

// Defaults is the configuration used when no file is given.
func Defaults() *Config {
	c := &Config{Version: "1"}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}
