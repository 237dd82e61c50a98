package diplomacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

func proxyCfg() ProxyWarConfig {
	return DefaultConfig().ProxyWar
}

func TestProxyWarSuccessChanceBaseline(t *testing.T) {
	// With no parties and no region only the type modifier applies.
	chance := CalculateProxyWarSuccessChance(nil, nil, nil, nil, ProxyBorderConflict, proxyCfg())
	assert.InDelta(t, 0.5, chance, 1e-9)

	chance = CalculateProxyWarSuccessChance(nil, nil, nil, nil, ProxySabotage, proxyCfg())
	assert.InDelta(t, 0.6, chance, 1e-9)

	chance = CalculateProxyWarSuccessChance(nil, nil, nil, nil, ProxyCoup, proxyCfg())
	assert.InDelta(t, 0.4, chance, 1e-9)
}

func TestProxyWarSuccessChanceFactors(t *testing.T) {
	cfg := proxyCfg()
	sponsor := &faction.Faction{ID: "s", CovertOpsStrength: 90}
	target := &faction.Faction{ID: "t", CounterIntelligence: 80}
	proxy := &faction.Faction{ID: "p", Influence: map[string]float64{"r1": 0.8}}

	unstable := &faction.Region{ID: "r1", Stability: 0.2}
	stable := &faction.Region{ID: "r1", Stability: 0.9}

	inUnstable := CalculateProxyWarSuccessChance(sponsor, target, proxy, unstable, ProxyInsurgency, cfg)
	inStable := CalculateProxyWarSuccessChance(sponsor, target, proxy, stable, ProxyInsurgency, cfg)
	assert.Greater(t, inUnstable, inStable)

	weakSponsor := &faction.Faction{ID: "s", CovertOpsStrength: 20}
	withWeak := CalculateProxyWarSuccessChance(weakSponsor, target, proxy, unstable, ProxyInsurgency, cfg)
	assert.Greater(t, inUnstable, withWeak)

	hardTarget := &faction.Faction{ID: "t", CounterIntelligence: 120}
	againstHard := CalculateProxyWarSuccessChance(sponsor, hardTarget, proxy, unstable, ProxyInsurgency, cfg)
	assert.Greater(t, inUnstable, againstHard)
}

func TestProxyWarSuccessChanceClamps(t *testing.T) {
	cfg := proxyCfg()
	super := &faction.Faction{ID: "s", CovertOpsStrength: 500}
	fortress := &faction.Faction{ID: "t", CounterIntelligence: 500}

	assert.Equal(t, 0.9, CalculateProxyWarSuccessChance(super, nil, nil, nil, ProxySabotage, cfg))
	assert.Equal(t, 0.1, CalculateProxyWarSuccessChance(nil, fortress, nil, nil, ProxyCoup, cfg))
}

func TestSimulateProxyWarOutcomes(t *testing.T) {
	cfg := proxyCfg()
	newWar := func() *ProxyWar {
		return &ProxyWar{
			ID:        "pw",
			SponsorID: "s",
			TargetID:  "t",
			WarType:   ProxyBorderConflict,
			Status:    "active",
			Intensity: 0.5,
		}
	}

	// Success chance 0.5, discovery chance 0.35 with no parties known.
	result := SimulateProxyWar(newWar(), nil, nil, cfg, entropy.NewFixed(0.2, 0.9))
	assert.Equal(t, ProxyOutcomeSuccess, result.Outcome)
	assert.True(t, result.Succeeded)
	assert.False(t, result.Discovered)

	result = SimulateProxyWar(newWar(), nil, nil, cfg, entropy.NewFixed(0.9, 0.1))
	assert.Equal(t, ProxyOutcomeDiscoveredFailure, result.Outcome)

	result = SimulateProxyWar(newWar(), nil, nil, cfg, entropy.NewFixed(0.2, 0.1))
	assert.Equal(t, ProxyOutcomeDiscoveredSuccess, result.Outcome)

	result = SimulateProxyWar(newWar(), nil, nil, cfg, entropy.NewFixed(0.9, 0.9))
	assert.Equal(t, ProxyOutcomeFailure, result.Outcome)

	pw := newWar()
	result = SimulateProxyWar(pw, nil, nil, cfg, entropy.NewFixed(0.2, 0.9))
	assert.Same(t, result, pw.Result)
	assert.Equal(t, "resolved", pw.Status)
	assert.InDelta(t, 0.5, result.SuccessChance, 1e-9)
	assert.InDelta(t, 0.35, result.DiscoveryRisk, 1e-9)
}

func TestCalculateProxyWarCost(t *testing.T) {
	cfg := proxyCfg()

	cost := CalculateProxyWarCost(ProxyInsurgency, 6, 0.5, cfg)
	assert.InDelta(t, 4800.0, cost.Gold, 1e-9)
	assert.InDelta(t, 1440.0, cost.Materials, 1e-9)
	assert.Equal(t, cost.Gold, cost.TotalGold)
	assert.InDelta(t, 0.37, cost.RiskFactor, 1e-9)

	// Longer and hotter operations cost more.
	longer := CalculateProxyWarCost(ProxyInsurgency, 12, 0.5, cfg)
	assert.Greater(t, longer.Gold, cost.Gold)
	hotter := CalculateProxyWarCost(ProxyInsurgency, 6, 0.9, cfg)
	assert.Greater(t, hotter.Gold, cost.Gold)

	// Armed intervention burns the most per month.
	intervention := CalculateProxyWarCost(ProxyArmedIntervention, 6, 0.5, cfg)
	assert.Greater(t, intervention.Gold, cost.Gold)

	// Unknown types get the fallback burn rate.
	unknown := CalculateProxyWarCost(ProxyWarType("skirmish"), 1, 0.5, cfg)
	assert.InDelta(t, 1000.0, unknown.Gold, 1e-9)
}

func TestEvaluateProxyWarTarget(t *testing.T) {
	cfg := proxyCfg()
	sponsor := &faction.Faction{ID: "s", CovertOpsStrength: 80}

	soft := &faction.Faction{ID: "soft", MilitaryStrength: 40, CounterIntelligence: 40, EconomicStrength: 100}
	hard := &faction.Faction{ID: "hard", MilitaryStrength: 115, CounterIntelligence: 90, EconomicStrength: 100}

	softEval := EvaluateProxyWarTarget(sponsor, soft, ProxyInsurgency, cfg)
	hardEval := EvaluateProxyWarTarget(sponsor, hard, ProxyInsurgency, cfg)

	assert.Greater(t, softEval.VulnerabilityScore, hardEval.VulnerabilityScore)
	assert.Greater(t, softEval.OverallScore, hardEval.OverallScore)
	assert.InDelta(t, softEval.ValueScore, hardEval.ValueScore, 1e-9)

	rich := &faction.Faction{ID: "rich", MilitaryStrength: 40, CounterIntelligence: 40, EconomicStrength: 120}
	poor := &faction.Faction{ID: "poor", MilitaryStrength: 40, CounterIntelligence: 40, EconomicStrength: 30}
	assert.Greater(t,
		EvaluateProxyWarTarget(sponsor, rich, ProxyInsurgency, cfg).ValueScore,
		EvaluateProxyWarTarget(sponsor, poor, ProxyInsurgency, cfg).ValueScore)

	empty := EvaluateProxyWarTarget(sponsor, nil, ProxyInsurgency, cfg)
	assert.Zero(t, empty.OverallScore)
}

func TestCalculateDiscoveryRisk(t *testing.T) {
	// More money and more people leave a wider trail.
	assert.Greater(t, CalculateDiscoveryRisk(0.9, 500, "nationalist"), CalculateDiscoveryRisk(0.2, 500, "nationalist"))
	assert.Greater(t, CalculateDiscoveryRisk(0.5, 2000, "nationalist"), CalculateDiscoveryRisk(0.5, 100, "nationalist"))

	// The size contribution caps out.
	assert.Equal(t,
		CalculateDiscoveryRisk(0.5, 10000, "nationalist"),
		CalculateDiscoveryRisk(0.5, 900, "nationalist"))

	// Separatists blend in better than religious movements.
	assert.Less(t,
		CalculateDiscoveryRisk(0.5, 500, "separatist"),
		CalculateDiscoveryRisk(0.5, 500, "religious"))

	assert.LessOrEqual(t, CalculateDiscoveryRisk(1.0, 10000, "religious"), 1.0)
	assert.GreaterOrEqual(t, CalculateDiscoveryRisk(0, 0, ""), 0.0)
}

func TestCalculateProxyWarEffectiveness(t *testing.T) {
	assert.Equal(t, 0.0, CalculateProxyWarEffectiveness(0, 0, 0))
	assert.Equal(t, 1.0, CalculateProxyWarEffectiveness(1, 1, 10000))

	assert.Greater(t,
		CalculateProxyWarEffectiveness(0.8, 0.5, 1000),
		CalculateProxyWarEffectiveness(0.3, 0.5, 1000))
	assert.Greater(t,
		CalculateProxyWarEffectiveness(0.5, 0.5, 2000),
		CalculateProxyWarEffectiveness(0.5, 0.5, 100))
}

func TestGenerateProxyGroupNameIsStable(t *testing.T) {
	name := GenerateProxyGroupName("region_7")
	require.NotEmpty(t, name)
	assert.Equal(t, name, GenerateProxyGroupName("region_7"))
	assert.Contains(t, name, " ")
}

func TestEvaluateProxyWarImpact(t *testing.T) {
	sabotage := EvaluateProxyWarImpact(&ProxyWar{WarType: ProxySabotage, Intensity: 1.0}, nil)
	assert.InDelta(t, -0.25, sabotage.Economic, 1e-9)
	assert.Less(t, sabotage.Economic, sabotage.Military)

	coup := EvaluateProxyWarImpact(&ProxyWar{WarType: ProxyCoup, Intensity: 0.5}, nil)
	assert.InDelta(t, -0.2, coup.Political, 1e-9)

	// Zero intensity still registers a minimal footprint.
	faint := EvaluateProxyWarImpact(&ProxyWar{WarType: ProxyInsurgency}, nil)
	assert.InDelta(t, -0.01, faint.Economic, 1e-9)

	assert.Zero(t, EvaluateProxyWarImpact(nil, nil).Economic)
}
