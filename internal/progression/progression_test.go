package progression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith/internal/catalog"
	"zenith/internal/config"
	"zenith/internal/cost"
	"zenith/internal/game"
	"zenith/internal/quest"
)

func TestXPRequirement(t *testing.T) {
	bal := config.Default()
	want := []float64{100, 160, 256, 409, 655, 1048, 1677}
	for i, w := range want {
		assert.Equal(t, w, XPRequirement(i+1, bal), "level %d", i+1)
	}
}

func TestAwardCurrency_CascadesThreeLevels(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()

	// 1100 manual -> 550 XP: 100 + 160 + 256 = 516 spent, 34 left, 409 needed next
	next, award := AwardCurrency(s, cat, bal, game.NewSequenceRand(), 1100, true)

	assert.Equal(t, 4, next.Level)
	assert.Equal(t, 3, award.LevelsGained)
	assert.InDelta(t, 34.0, next.XP, 1e-9)
	assert.Less(t, next.XP, XPRequirement(next.Level, bal))
	assert.Equal(t, 1100.0, next.Currency)
	assert.Equal(t, 1100.0, next.TotalCurrencyEarned)
	assert.Equal(t, 1, next.TotalClicks)

	assert.Equal(t, 1, s.Level, "input untouched")
}

func TestAwardCurrency_XPInvariantOverManyAwards(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	rng := game.NewRand(1)
	for i := 0; i < 200; i++ {
		s, _ = AwardCurrency(s, cat, bal, rng, float64(i*i*37), i%2 == 0)
		require.Less(t, s.XP, XPRequirement(s.Level, bal))
		require.GreaterOrEqual(t, s.XP, 0.0)
	}
	assert.Equal(t, 100, s.TotalClicks)
}

func TestAwardCurrency_PassiveRateAndNoClick(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	next, award := AwardCurrency(game.InitialState(), cat, bal, nil, 50, false)
	assert.InDelta(t, 5.0, next.XP, 1e-9)
	assert.InDelta(t, 5.0, award.XPGained, 1e-9)
	assert.Zero(t, next.TotalClicks)
}

func TestAwardCurrency_DoubleXP(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.PrestigeUpgrades["pres_8"] = 2 // 10% chance

	rng := game.NewSequenceRand(0.05, 0.5)

	next, award := AwardCurrency(s, cat, bal, rng, 100, true)
	assert.True(t, award.Doubled)
	assert.Equal(t, 2, next.Level, "50 XP doubled reaches exactly 100")
	assert.InDelta(t, 0.0, next.XP, 1e-9)

	next, award = AwardCurrency(s, cat, bal, rng, 100, true)
	assert.False(t, award.Doubled)
	assert.InDelta(t, 50.0, next.XP, 1e-9)

	assert.Equal(t, 2, rng.Draws(), "one draw per award")
}

func TestAwardCurrency_NoDrawWithoutChance(t *testing.T) {
	rng := game.NewSequenceRand(0)
	AwardCurrency(game.InitialState(), catalog.Default(), config.Default(), rng, 10, true)
	assert.Zero(t, rng.Draws())
}

func TestAwardCurrency_RejectsNegativeAndNonFinite(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.Currency = 10
	for _, amt := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		next, award := AwardCurrency(s, cat, bal, nil, amt, true)
		assert.Equal(t, s, next)
		assert.Zero(t, award.Amount)
	}
}

func TestAwardCurrency_LevelQuestTracksLiveLevel(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.DailyQuests = quest.Generate(1, 1, quest.DefaultGoals())

	s, _ = AwardCurrency(s, cat, bal, nil, 1100, true)
	lq, _ := quest.Find(s.DailyQuests, quest.IDLevel)
	assert.True(t, lq.Completed)
	cq, _ := quest.Find(s.DailyQuests, quest.IDClicks)
	assert.Equal(t, 1.0, cq.Current)
}

func TestBonusesFor_Table(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()

	b := BonusesFor(game.InitialState(), cat, bal)
	assert.Equal(t, 1.0, b.XP)
	assert.Equal(t, 1.15, b.CostGrowth)
	assert.Equal(t, 0.15, b.PrestigeEfficiency)
	assert.Equal(t, 1.0, b.BaseCostReduction)
	assert.Equal(t, 0.0, b.DoubleXPChance)
	assert.Equal(t, 1.0, b.ThresholdReduction)

	s := game.InitialState()
	for _, u := range cat.Prestige {
		s.PrestigeUpgrades[u.ID] = 2
	}
	b = BonusesFor(s, cat, bal)
	assert.InDelta(t, 1.4, b.XP, 1e-9)
	assert.InDelta(t, 1.13, b.CostGrowth, 1e-9)
	assert.InDelta(t, 1.5, b.AutoYield, 1e-9)
	assert.InDelta(t, 1.5, b.ClickYield, 1e-9)
	assert.InDelta(t, 0.25, b.PrestigeEfficiency, 1e-9)
	assert.InDelta(t, 0.8, b.BaseCostReduction, 1e-9)
	assert.InDelta(t, 2.0, b.QuestReward, 1e-9)
	assert.InDelta(t, 0.1, b.DoubleXPChance, 1e-9)
	assert.InDelta(t, 0.8, b.ThresholdReduction, 1e-9)
	assert.InDelta(t, 1.2, b.GlobalYield, 1e-9)
}

func TestDerive(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.Upgrades["click_1"] = 3         // +3
	s.Upgrades["click_2"] = 1         // +5
	s.Upgrades["auto_1"] = 10         // 10/s
	s.Upgrades["auto_2"] = 2          // 20/s
	s.PrestigePoints = 2              // x1.3
	s.PrestigeUpgrades["pres_4"] = 2  // click x1.5
	s.PrestigeUpgrades["pres_10"] = 1 // global x1.1
	s.Currency = 2_500_000

	st := Derive(s, cat, bal)
	assert.InDelta(t, 1.3, st.PrestigeMultiplier, 1e-9)
	assert.InDelta(t, 9*1.3*1.5*1.1, st.ClickPower, 1e-9)
	assert.InDelta(t, 30*1.3*1.1, st.AutoIncome, 1e-9)
	assert.Equal(t, 100.0, st.XPRequirement)
	assert.Equal(t, 1_000_000.0, st.PrestigeThreshold)
	assert.Equal(t, 2.0, st.ClaimablePoints)

	fresh := Derive(game.InitialState(), cat, bal)
	assert.Equal(t, 1.0, fresh.ClickPower)
	assert.Equal(t, 0.0, fresh.AutoIncome)
	assert.Equal(t, 1.0, fresh.PrestigeMultiplier)
}

func TestDerive_ThresholdReduction(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.PrestigeUpgrades["pres_9"] = 3
	s.Currency = 1_500_000

	st := Derive(s, cat, bal)
	assert.InDelta(t, 700_000.0, st.PrestigeThreshold, 1e-6)
	assert.Equal(t, 2.0, st.ClaimablePoints)
}

func TestUpgradePrice(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	click1, _ := cat.Get("click_1")
	pres1, _ := cat.Get("pres_1")

	s := game.InitialState()
	s.PrestigeUpgrades["pres_6"] = 1 // base cost x0.9
	s.PrestigeUpgrades["pres_2"] = 5 // growth 1.10
	b := BonusesFor(s, cat, bal)

	base, growth := UpgradePrice(click1, b, bal)
	assert.InDelta(t, 13.5, base, 1e-9)
	assert.InDelta(t, 1.10, growth, 1e-9)
	assert.Equal(t, 13.0, NextCost(s, click1, b, bal))

	base, growth = UpgradePrice(pres1, b, bal)
	assert.Equal(t, 1.0, base)
	assert.Equal(t, 1.5, growth, "prestige growth ignores standard reductions")
}

func TestPurchaseSingle(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.Currency = 40
	s.DailyQuests = quest.Generate(1, 1, quest.DefaultGoals())

	next, p := PurchaseSingle(s, cat, bal, "click_1")
	require.True(t, p.Applied())
	assert.Equal(t, 1, p.Levels)
	assert.Equal(t, 15.0, p.Cost)
	assert.Equal(t, 25.0, next.Currency)
	assert.Equal(t, 1, next.Upgrades["click_1"])
	assert.Equal(t, 1, next.TotalUpgradesBought)
	uq, _ := quest.Find(next.DailyQuests, quest.IDUpgrades)
	assert.Equal(t, 1.0, uq.Current)

	next, p = PurchaseSingle(next, cat, bal, "click_1") // 17
	require.True(t, p.Applied())
	assert.Equal(t, 8.0, next.Currency)

	same, p := PurchaseSingle(next, cat, bal, "click_1") // 19 > 8
	assert.False(t, p.Applied())
	assert.Equal(t, RefusedFunds, p.Refused)
	assert.Equal(t, next, same)

	_, p = PurchaseSingle(next, cat, bal, "nope")
	assert.Equal(t, RefusedUnknown, p.Refused)
}

func TestPurchase_PrestigeSpendsPoints(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.PrestigePoints = 4
	s.Currency = 1e9
	s.DailyQuests = quest.Generate(1, 1, quest.DefaultGoals())

	next, p := PurchaseMax(s, cat, bal, "pres_1")
	require.True(t, p.Applied())
	assert.True(t, p.Prestige)
	// three levels price at floor(4.75) = 4, four at 8
	assert.Equal(t, 3, p.Levels)
	assert.Equal(t, 3, next.PrestigeUpgrades["pres_1"])
	assert.InDelta(t, 0.0, next.PrestigePoints, 1e-9)
	assert.Equal(t, 1e9, next.Currency)
	assert.Zero(t, next.TotalUpgradesBought, "prestige purchases are not counted")
	uq, _ := quest.Find(next.DailyQuests, quest.IDUpgrades)
	assert.Zero(t, uq.Current)
}

func TestPurchaseMax_EndToEnd(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.Currency = 1000

	next, p := PurchaseMax(s, cat, bal, "click_1")
	require.True(t, p.Applied())

	// independent closed form
	closed := int(math.Floor(math.Log(1000*(1.15-1)/15+1) / math.Log(1.15)))
	// brute force over the unfloored series
	brute, running := 0, 0.0
	for i := 0; i < 100; i++ {
		running += 15 * math.Pow(1.15, float64(i))
		if running > 1000 {
			break
		}
		brute++
	}

	assert.Equal(t, closed, p.Levels)
	assert.Equal(t, brute, p.Levels)
	assert.Equal(t, 17, p.Levels)
	assert.Equal(t, cost.BulkCost(15, 1.15, 0, 17), p.Cost)
	assert.Equal(t, 976.0, p.Cost)
	assert.Equal(t, 24.0, next.Currency)
	assert.Equal(t, 17, next.Upgrades["click_1"])
	assert.Equal(t, 17, next.TotalUpgradesBought)
}

func TestPurchase_CountsStayWithinMax(t *testing.T) {
	cat, bal := catalog.Default(), config.Default()
	s := game.InitialState()
	s.Currency = 1e30
	s.PrestigePoints = 1e30

	for round := 0; round < 3; round++ {
		for _, u := range append(append([]catalog.Upgrade{}, cat.Standard...), cat.Prestige...) {
			s, _ = PurchaseMax(s, cat, bal, u.ID)
			s, _ = PurchaseSingle(s, cat, bal, u.ID)
			require.GreaterOrEqual(t, s.Count(u), 0)
			require.LessOrEqual(t, s.Count(u), u.MaxLevel, u.ID)
		}
	}
	for _, u := range cat.Standard {
		assert.Equal(t, u.MaxLevel, s.Upgrades[u.ID])
	}

	_, p := PurchaseSingle(s, cat, bal, "click_1")
	assert.Equal(t, RefusedMaxLevel, p.Refused)
	_, p = PurchaseMax(s, cat, bal, "pres_10")
	assert.Equal(t, RefusedMaxLevel, p.Refused)
}
