package config

// Balance holds the numeric tuning of the economy
type Balance struct {
	// XP curve: requirement(level) = XPBase * XPGrowth^(level-1)
	XPBase   float64 `yaml:"xp_base" json:"xp_base"`
	XPGrowth float64 `yaml:"xp_growth" json:"xp_growth"`

	// share of each award converted to XP
	ManualXPRate  float64 `yaml:"manual_xp_rate" json:"manual_xp_rate"`
	PassiveXPRate float64 `yaml:"passive_xp_rate" json:"passive_xp_rate"`

	// Price growth per owned level
	CostGrowth         float64 `yaml:"cost_growth" json:"cost_growth"`
	PrestigeCostGrowth float64 `yaml:"prestige_cost_growth" json:"prestige_cost_growth"`

	// Prestige
	PrestigeThresholdBase  float64 `yaml:"prestige_threshold_base" json:"prestige_threshold_base"`
	PrestigeMultiplierBase float64 `yaml:"prestige_multiplier_base" json:"prestige_multiplier_base"`
}

// Default returns the default balance configuration
func Default() Balance {
	return Balance{
		XPBase:                 100,
		XPGrowth:               1.6,
		ManualXPRate:           0.5,
		PassiveXPRate:          0.1,
		CostGrowth:             1.15,
		PrestigeCostGrowth:     1.5,
		PrestigeThresholdBase:  1_000_000,
		PrestigeMultiplierBase: 0.15,
	}
}

// Casual returns easier balance for casual difficulty
func Casual() Balance {
	cfg := Default()
	cfg.XPGrowth = 1.5
	cfg.CostGrowth = 1.12
	cfg.PrestigeThresholdBase = 500_000
	cfg.PrestigeMultiplierBase = 0.2
	return cfg
}

// Hard returns harder balance for experienced players
func Hard() Balance {
	cfg := Default()
	cfg.XPGrowth = 1.7
	cfg.CostGrowth = 1.18
	cfg.PrestigeThresholdBase = 2_000_000
	cfg.PrestigeMultiplierBase = 0.1
	return cfg
}

// Preset returns the named balance; unknown names give Default.
func Preset(name string) Balance {
	switch name {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	}
	return Default()
}

func (b *Balance) ApplyDefaults() {
	d := Default()
	if b.XPBase <= 0 {
		b.XPBase = d.XPBase
	}
	if b.XPGrowth <= 1 {
		b.XPGrowth = d.XPGrowth
	}
	if b.ManualXPRate <= 0 {
		b.ManualXPRate = d.ManualXPRate
	}
	if b.PassiveXPRate <= 0 {
		b.PassiveXPRate = d.PassiveXPRate
	}
	if b.CostGrowth <= 1 {
		b.CostGrowth = d.CostGrowth
	}
	if b.PrestigeCostGrowth <= 1 {
		b.PrestigeCostGrowth = d.PrestigeCostGrowth
	}
	if b.PrestigeThresholdBase <= 0 {
		b.PrestigeThresholdBase = d.PrestigeThresholdBase
	}
	if b.PrestigeMultiplierBase <= 0 {
		b.PrestigeMultiplierBase = d.PrestigeMultiplierBase
	}
}
