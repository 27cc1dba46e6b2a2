package catalog

// Default returns the built-in upgrade catalog.
func Default() Catalog {
	return Catalog{
		Standard: []Upgrade{
			{ID: "click_1", Name: "Cybernetic Finger", Description: "A reinforced synthetic digit for more precise clicking.", Icon: "☝️", BaseCost: 15, BaseValue: 1, Kind: KindClick, MaxLevel: 100},
			{ID: "click_2", Name: "Neural Uplink", Description: "Directly connect your brain to the currency stream.", Icon: "🧠", BaseCost: 100, BaseValue: 5, Kind: KindClick, MaxLevel: 100},
			{ID: "click_3", Name: "Quantum Glove", Description: "Manipulate subatomic particles to extract more value.", Icon: "🧤", BaseCost: 1000, BaseValue: 25, Kind: KindClick, MaxLevel: 100},
			{ID: "click_4", Name: "Plasma Infuser", Description: "Charge your clicks with high-energy ionized gas.", Icon: "🔥", BaseCost: 12000, BaseValue: 150, Kind: KindClick, MaxLevel: 100},
			{ID: "click_5", Name: "Singularity Tap", Description: "Harness the power of a localized black hole.", Icon: "🕳️", BaseCost: 150000, BaseValue: 1200, Kind: KindClick, MaxLevel: 100},

			{ID: "auto_1", Name: "Script Bot", Description: "A simple script that clicks for you automatically.", Icon: "🤖", BaseCost: 50, BaseValue: 1, Kind: KindAuto, MaxLevel: 100},
			{ID: "auto_2", Name: "Mining Rig", Description: "A stack of GPUs dedicated to mining the local economy.", Icon: "🏗️", BaseCost: 500, BaseValue: 10, Kind: KindAuto, MaxLevel: 100},
			{ID: "auto_3", Name: "Server Farm", Description: "An entire warehouse of processing power.", Icon: "🖥️", BaseCost: 5000, BaseValue: 60, Kind: KindAuto, MaxLevel: 100},
			{ID: "auto_4", Name: "AI Swarm", Description: "A distributed consciousness that optimizes everything.", Icon: "🐝", BaseCost: 45000, BaseValue: 350, Kind: KindAuto, MaxLevel: 100},
			{ID: "auto_5", Name: "Galactic Node", Description: "A beacon that pulls resources from across the galaxy.", Icon: "🌌", BaseCost: 600000, BaseValue: 4000, Kind: KindAuto, MaxLevel: 100},
		},
		Prestige: []Upgrade{
			{ID: "pres_1", Name: "Iterative Learning", Description: "XP gain increased by 20% per level.", Icon: "📚", BaseCost: 1, BaseValue: 0.2, Kind: KindPrestige, MaxLevel: 10, Effect: EffectXPGain},
			{ID: "pres_2", Name: "Capital Optimization", Description: "Standard upgrade cost scaling reduced.", Icon: "📉", BaseCost: 2, BaseValue: 0.01, Kind: KindPrestige, MaxLevel: 5, Effect: EffectCostGrowth},
			{ID: "pres_3", Name: "Advanced Automation", Description: "Passive yield efficiency +25% per level.", Icon: "⚙️", BaseCost: 3, BaseValue: 0.25, Kind: KindPrestige, MaxLevel: 10, Effect: EffectAutoYield},
			{ID: "pres_4", Name: "Precision Hacking", Description: "Click Power multiplier +25% per level.", Icon: "⚡", BaseCost: 3, BaseValue: 0.25, Kind: KindPrestige, MaxLevel: 10, Effect: EffectClickYield},
			{ID: "pres_5", Name: "Neural Plasticity", Description: "Increases the base Prestige multiplier efficiency.", Icon: "🧠", BaseCost: 5, BaseValue: 0.05, Kind: KindPrestige, MaxLevel: 5, Effect: EffectPrestigeEfficiency},
			{ID: "pres_6", Name: "Market Influence", Description: "All standard upgrade base costs reduced by 10%.", Icon: "🏛️", BaseCost: 10, BaseValue: 0.1, Kind: KindPrestige, MaxLevel: 5, Effect: EffectBaseCost},
			{ID: "pres_7", Name: "Legacy Protocol", Description: "Quest rewards increased by 50% per level.", Icon: "📜", BaseCost: 4, BaseValue: 0.5, Kind: KindPrestige, MaxLevel: 5, Effect: EffectQuestReward},
			{ID: "pres_8", Name: "Data Siphon", Description: "5% chance to double XP from any source.", Icon: "🧪", BaseCost: 6, BaseValue: 0.05, Kind: KindPrestige, MaxLevel: 10, Effect: EffectDoubleXP},
			{ID: "pres_9", Name: "Quantum Stability", Description: "Reduces prestige threshold by 10% per level.", Icon: "🌀", BaseCost: 15, BaseValue: 0.1, Kind: KindPrestige, MaxLevel: 5, Effect: EffectPrestigeThreshold},
			{ID: "pres_10", Name: "Zenith Singularity", Description: "Global yield multiplier +10% per level.", Icon: "🌟", BaseCost: 50, BaseValue: 0.1, Kind: KindPrestige, MaxLevel: 5, Effect: EffectGlobalYield},
		},
	}
}
