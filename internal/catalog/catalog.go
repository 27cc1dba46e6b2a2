package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind says which stat an upgrade feeds and which currency buys it.
type Kind string

const (
	KindClick    Kind = "click"
	KindAuto     Kind = "auto"
	KindPrestige Kind = "prestige"
)

// Effect names the derived bonus a prestige upgrade contributes to.
type Effect string

const (
	EffectXPGain             Effect = "xp_gain"
	EffectCostGrowth         Effect = "cost_growth"
	EffectAutoYield          Effect = "auto_yield"
	EffectClickYield         Effect = "click_yield"
	EffectPrestigeEfficiency Effect = "prestige_efficiency"
	EffectBaseCost           Effect = "base_cost"
	EffectQuestReward        Effect = "quest_reward"
	EffectDoubleXP           Effect = "double_xp"
	EffectPrestigeThreshold  Effect = "prestige_threshold"
	EffectGlobalYield        Effect = "global_yield"
)

// Upgrade is an immutable catalog entry. BaseValue is the yield per level for
// click/auto upgrades and the per-level bonus amount for prestige upgrades.
type Upgrade struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Icon        string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	BaseCost    float64 `yaml:"base_cost" json:"baseCost"`
	BaseValue   float64 `yaml:"base_value" json:"baseValue"`
	Kind        Kind    `yaml:"kind" json:"kind"`
	MaxLevel    int     `yaml:"max_level" json:"maxLevel"`
	Effect      Effect  `yaml:"effect,omitempty" json:"effect,omitempty"`
}

func (u Upgrade) IsPrestige() bool { return u.Kind == KindPrestige }

// Catalog holds the two ordered upgrade sequences.
type Catalog struct {
	Standard []Upgrade `yaml:"standard" json:"standard"`
	Prestige []Upgrade `yaml:"prestige" json:"prestige"`
}

// Get looks an upgrade up by id in both sequences.
func (c Catalog) Get(id string) (Upgrade, bool) {
	for _, u := range c.Standard {
		if u.ID == id {
			return u, true
		}
	}
	for _, u := range c.Prestige {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

// FindByName matches a display name case-insensitively and exactly.
func FindByName(list []Upgrade, name string) (Upgrade, bool) {
	name = strings.ToLower(name)
	for _, u := range list {
		if strings.ToLower(u.Name) == name {
			return u, true
		}
	}
	return Upgrade{}, false
}

// ByEffect returns the prestige upgrade feeding the given effect.
func (c Catalog) ByEffect(e Effect) (Upgrade, bool) {
	for _, u := range c.Prestige {
		if u.Effect == e {
			return u, true
		}
	}
	return Upgrade{}, false
}

func (c Catalog) Validate() error {
	seen := map[string]bool{}
	check := func(u Upgrade, wantPrestige bool) error {
		if strings.TrimSpace(u.ID) == "" {
			return fmt.Errorf("upgrade %q: missing id", u.Name)
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate upgrade id %q", u.ID)
		}
		seen[u.ID] = true
		if u.BaseCost <= 0 {
			return fmt.Errorf("upgrade %s: base_cost must be positive", u.ID)
		}
		if u.BaseValue <= 0 {
			return fmt.Errorf("upgrade %s: base_value must be positive", u.ID)
		}
		if u.MaxLevel <= 0 {
			return fmt.Errorf("upgrade %s: max_level must be positive", u.ID)
		}
		if u.IsPrestige() != wantPrestige {
			return fmt.Errorf("upgrade %s: kind %q in wrong list", u.ID, u.Kind)
		}
		if !wantPrestige && u.Kind != KindClick && u.Kind != KindAuto {
			return fmt.Errorf("upgrade %s: unknown kind %q", u.ID, u.Kind)
		}
		return nil
	}
	for _, u := range c.Standard {
		if err := check(u, false); err != nil {
			return err
		}
	}
	for _, u := range c.Prestige {
		if err := check(u, true); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a YAML catalog. An empty path yields the built-in catalog.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Prestige {
		if c.Prestige[i].Kind == "" {
			c.Prestige[i].Kind = KindPrestige
		}
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}
