package diplomacy

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

// proxyWarTypeModifiers adjusts success odds per conflict style. Deniable
// low-footprint operations run easier than overt ones.
var proxyWarTypeModifiers = map[ProxyWarType]float64{
	ProxyInsurgency:        0.05,
	ProxyBorderConflict:    0.0,
	ProxySabotage:          0.1,
	ProxyArmedIntervention: -0.05,
	ProxyCoup:              -0.1,
}

// proxyWarBaseCosts is the monthly gold burn per conflict style.
var proxyWarBaseCosts = map[ProxyWarType]float64{
	ProxyInsurgency:        800,
	ProxyBorderConflict:    1200,
	ProxySabotage:          600,
	ProxyArmedIntervention: 2500,
	ProxyCoup:              2000,
}

// ideologyDiscoveryModifiers shifts exposure odds by proxy group ideology.
// Separatists blend into local politics; religious movements draw scrutiny.
var ideologyDiscoveryModifiers = map[string]float64{
	"nationalist": 0.0,
	"religious":   0.05,
	"separatist":  -0.05,
}

// CalculateProxyWarSuccessChance computes the odds a sponsored conflict
// achieves its aim. Sponsor covert strength and regional instability help,
// target counter-intelligence hurts, and the proxy's local influence
// anchors the operation. Clamped to [0.1, 0.9].
func CalculateProxyWarSuccessChance(sponsor, target, proxy *faction.Faction, region *faction.Region, warType ProxyWarType, cfg ProxyWarConfig) float64 {
	chance := 0.5

	// Capability scores run roughly 0-120; normalize before weighting.
	if sponsor != nil {
		chance += sponsor.CovertOpsStrength / 100 * 0.15
	}
	if target != nil {
		chance -= target.CounterIntelligence / 100 * 0.15
	}
	if region != nil {
		chance += (1 - region.Stability) * 0.2
		if proxy != nil {
			chance += proxy.InfluenceIn(region.ID) * 0.15
		}
	}
	chance += proxyWarTypeModifiers[warType]

	return clamp(chance, 0.1, 0.9)
}

// SimulateProxyWar resolves a sponsored conflict with two independent draws:
// first whether the operation succeeds, then whether the sponsor's hand is
// discovered. The result is attached to the war and returned.
func SimulateProxyWar(pw *ProxyWar, factions map[string]*faction.Faction, regions map[string]*faction.Region, cfg ProxyWarConfig, rng entropy.Source) *ProxyWarResult {
	sponsor := factions[pw.SponsorID]
	target := factions[pw.TargetID]
	proxy := factions[pw.ProxyID]
	region := regions[pw.RegionID]

	successChance := CalculateProxyWarSuccessChance(sponsor, target, proxy, region, pw.WarType, cfg)

	discoveryChance := cfg.BaseDiscoveryChance
	if target != nil {
		discoveryChance += target.CounterIntelligence / 100 * 0.15
	}
	discoveryChance += pw.Intensity * 0.1
	discoveryChance = clamp01(discoveryChance)

	succeeded := rng.Float() < successChance
	discovered := rng.Float() < discoveryChance

	outcome := ProxyOutcomeFailure
	switch {
	case succeeded && discovered:
		outcome = ProxyOutcomeDiscoveredSuccess
	case succeeded:
		outcome = ProxyOutcomeSuccess
	case discovered:
		outcome = ProxyOutcomeDiscoveredFailure
	}

	result := &ProxyWarResult{
		Outcome:       outcome,
		Succeeded:     succeeded,
		Discovered:    discovered,
		SuccessChance: successChance,
		DiscoveryRisk: discoveryChance,
		ResolvedAt:    time.Now().UTC(),
	}
	pw.Result = result
	pw.Status = "resolved"
	return result
}

// ProxyWarCost is the projected price of sponsoring a conflict.
type ProxyWarCost struct {
	Gold       float64 `json:"gold"`
	Materials  float64 `json:"materials"`
	TotalGold  float64 `json:"total_gold"`
	RiskFactor float64 `json:"risk_factor"`
}

// CalculateProxyWarCost projects the price of a sponsored conflict. Cost
// scales linearly with duration and intensity on top of the per-type
// monthly burn.
func CalculateProxyWarCost(warType ProxyWarType, durationMonths int, intensity float64, cfg ProxyWarConfig) ProxyWarCost {
	base, ok := proxyWarBaseCosts[warType]
	if !ok {
		base = 1000
	}

	gold := base * float64(durationMonths) * (0.5 + intensity) * cfg.CostFactor * cfg.DurationFactor
	return ProxyWarCost{
		Gold:       gold,
		Materials:  gold * 0.3,
		TotalGold:  gold,
		RiskFactor: clamp01(intensity*0.5 + float64(durationMonths)*0.02),
	}
}

// TargetEvaluation scores a faction as a proxy war target.
type TargetEvaluation struct {
	OverallScore       float64 `json:"overall_score"`
	VulnerabilityScore float64 `json:"vulnerability_score"`
	ValueScore         float64 `json:"value_score"`
}

// EvaluateProxyWarTarget scores a target for a sponsored conflict. Weak
// military and counter-intelligence make a target vulnerable; economic
// strength makes it worth hitting.
func EvaluateProxyWarTarget(sponsor, target *faction.Faction, warType ProxyWarType, cfg ProxyWarConfig) TargetEvaluation {
	eval := TargetEvaluation{}
	if target == nil {
		return eval
	}

	eval.VulnerabilityScore = clamp01(1 - (target.MilitaryStrength+target.CounterIntelligence)/240)
	eval.ValueScore = clamp01(target.EconomicStrength / 120)

	advantage := 0.0
	if sponsor != nil {
		advantage = clamp01((sponsor.CovertOpsStrength - target.CounterIntelligence) / 100)
	}

	eval.OverallScore = clamp01(eval.VulnerabilityScore*0.5 + eval.ValueScore*0.3 + advantage*0.2)
	return eval
}

// CalculateDiscoveryRisk estimates the odds a proxy group's sponsorship is
// exposed. More money and more people leave a wider trail.
func CalculateDiscoveryRisk(fundingLevel float64, groupSize int, ideology string) float64 {
	risk := 0.2
	risk += fundingLevel * 0.3
	risk += math.Min(0.3, float64(groupSize)/3000)
	risk += ideologyDiscoveryModifiers[ideology]
	return clamp01(risk)
}

// CalculateProxyWarEffectiveness estimates how much damage a proxy group can
// do. Funding and proxy strength dominate; size helps with diminishing
// returns.
func CalculateProxyWarEffectiveness(fundingLevel, proxyStrength float64, groupSize int) float64 {
	sizeFactor := math.Min(0.2, float64(groupSize)/5000)
	return clamp01(fundingLevel*0.4 + proxyStrength*0.4 + sizeFactor)
}

var proxyGroupPrefixes = []string{
	"Sons of", "Daughters of", "Free", "United", "Liberation Front of",
	"People's Army of", "Brotherhood of", "Defenders of",
}

var proxyGroupSuffixes = []string{
	"the Dawn", "the Old Ways", "Tomorrow", "the Soil", "the Flame",
	"the Forgotten", "the Border", "the Deep Roads",
}

// GenerateProxyGroupName derives a stable cover name for a proxy group from
// its region. The same region always yields the same name.
func GenerateProxyGroupName(regionID string) string {
	h := fnv.New32a()
	h.Write([]byte(regionID))
	sum := h.Sum32()

	prefix := proxyGroupPrefixes[int(sum)%len(proxyGroupPrefixes)]
	suffix := proxyGroupSuffixes[int(sum>>8)%len(proxyGroupSuffixes)]
	return prefix + " " + suffix
}

// ProxyWarImpact is the toll a sponsored conflict takes on its target.
type ProxyWarImpact struct {
	Economic  float64 `json:"economic"`
	Military  float64 `json:"military"`
	Political float64 `json:"political"`
}

// EvaluateProxyWarImpact measures the drag a sponsored conflict puts on the
// target faction, scaled by intensity and conflict style.
func EvaluateProxyWarImpact(pw *ProxyWar, factions map[string]*faction.Faction) ProxyWarImpact {
	impact := ProxyWarImpact{}
	if pw == nil {
		return impact
	}

	intensity := pw.Intensity
	if intensity <= 0 {
		intensity = 0.1
	}

	switch pw.WarType {
	case ProxyInsurgency:
		impact.Economic = -0.1 * intensity
		impact.Military = -0.15 * intensity
		impact.Political = -0.2 * intensity
	case ProxyBorderConflict:
		impact.Economic = -0.15 * intensity
		impact.Military = -0.2 * intensity
		impact.Political = -0.1 * intensity
	case ProxySabotage:
		impact.Economic = -0.25 * intensity
		impact.Military = -0.05 * intensity
		impact.Political = -0.05 * intensity
	case ProxyArmedIntervention:
		impact.Economic = -0.2 * intensity
		impact.Military = -0.3 * intensity
		impact.Political = -0.15 * intensity
	case ProxyCoup:
		impact.Economic = -0.1 * intensity
		impact.Military = -0.1 * intensity
		impact.Political = -0.4 * intensity
	default:
		impact.Economic = -0.1 * intensity
	}
	return impact
}
