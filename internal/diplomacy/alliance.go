package diplomacy

import (
	"math"
	"time"

	"github.com/talgya/conflict-sim/internal/faction"
)

// callToArmsBase is the baseline response chance per alliance type.
var callToArmsBase = map[AllianceType]float64{
	AllianceMilitary:      0.8,
	AllianceFull:          0.7,
	AllianceEconomic:      0.4,
	AllianceTrade:         0.4,
	AllianceNonAggression: 0.2,
}

// CompatibilityReport scores how well two factions fit as allies.
type CompatibilityReport struct {
	OverallScore  float64  `json:"overall_score"`
	IdeologyScore float64  `json:"ideology_score"`
	TraitScore    float64  `json:"trait_score"`
	TensionScore  float64  `json:"tension_score"`
	Factors       []string `json:"factors"`
}

// EvaluateAllianceCompatibility scores a prospective pact on ideology
// distance, trait synergy, and current tension. All components land in
// [0, 1]; the overall score is their weighted mean.
func EvaluateAllianceCompatibility(a, b *faction.Faction, tensionValue float64, cfg AllianceConfig) CompatibilityReport {
	report := CompatibilityReport{Factors: make([]string, 0, 4)}

	// Ideology: mean absolute distance across shared axes, inverted.
	var distance, axes float64
	for axis, va := range a.Ideology {
		vb, ok := b.Ideology[axis]
		if !ok {
			continue
		}
		distance += math.Abs(va - vb)
		axes++
	}
	report.IdeologyScore = 1.0
	if axes > 0 {
		report.IdeologyScore = 1.0 - distance/axes
	}

	// Traits: shared cooperative traits help, aggressive friction hurts.
	traitScore := 0.5
	if a.HasTrait("diplomatic") && b.HasTrait("diplomatic") {
		traitScore += 0.2
		report.Factors = append(report.Factors, "mutual diplomatic tradition")
	}
	if a.HasTrait("honorable") || b.HasTrait("honorable") {
		traitScore += 0.1
	}
	if a.HasTrait("deceitful") || b.HasTrait("deceitful") {
		traitScore -= 0.2
		report.Factors = append(report.Factors, "reputation for betrayal")
	}
	if a.HasTrait("expansionist") && b.HasTrait("expansionist") {
		traitScore -= 0.15
		report.Factors = append(report.Factors, "competing expansionist ambitions")
	}
	report.TraitScore = clamp01(traitScore)

	// Tension: friendly pairs score high, hostile pairs near zero.
	report.TensionScore = clamp01((100 - tensionValue) / 200)

	weightSum := cfg.IdeologyFactor + cfg.TraitFactor + cfg.TensionFactor
	if weightSum <= 0 {
		weightSum = 3
	}
	report.OverallScore = clamp01((report.IdeologyScore*cfg.IdeologyFactor +
		report.TraitScore*cfg.TraitFactor +
		report.TensionScore*cfg.TensionFactor) / weightSum)
	return report
}

// StrengthReport aggregates an alliance's combined power.
type StrengthReport struct {
	AllianceID            string   `json:"alliance_id"`
	TotalMilitaryStrength float64  `json:"total_military_strength"`
	TotalEconomicStrength float64  `json:"total_economic_strength"`
	OverallRating         float64  `json:"overall_rating"`
	StrategicAdvantages   []string `json:"strategic_advantages"`
	Weaknesses            []string `json:"weaknesses"`
}

// EvaluateAllianceStrength sums member capabilities and rates the alliance
// on a 0-10 scale: combined strength per member, halved, capped at 10.
func EvaluateAllianceStrength(allianceID string, members []*faction.Faction, cfg AllianceConfig) StrengthReport {
	report := StrengthReport{
		AllianceID:          allianceID,
		StrategicAdvantages: make([]string, 0, 2),
		Weaknesses:          make([]string, 0, 2),
	}
	if len(members) == 0 {
		return report
	}

	for _, m := range members {
		report.TotalMilitaryStrength += m.MilitaryStrength
		report.TotalEconomicStrength += m.EconomicStrength
	}

	perMember := (report.TotalMilitaryStrength + report.TotalEconomicStrength) / float64(2*len(members))
	report.OverallRating = math.Min(10, perMember)

	if report.TotalMilitaryStrength > report.TotalEconomicStrength*1.5 {
		report.StrategicAdvantages = append(report.StrategicAdvantages, "overwhelming military weight")
	}
	if report.TotalEconomicStrength > report.TotalMilitaryStrength*1.5 {
		report.StrategicAdvantages = append(report.StrategicAdvantages, "deep economic reserves")
	}
	if report.OverallRating < cfg.MinCompatibility*10 {
		report.Weaknesses = append(report.Weaknesses, "members too weak to project power")
	}
	return report
}

// CallToArmsResult is the computed odds that an ally honors a call to arms.
type CallToArmsResult struct {
	ResponseChance float64  `json:"response_chance"`
	WouldJoin      bool     `json:"would_join"`
	Factors        []string `json:"factors"`
}

// CalculateCallToArmsChance computes how likely an alliance member answers a
// call to war. Base odds come from the pact type; conflict severity, target
// importance, and a defensive cause raise them; existing commitments and a
// young or unstable pact lower them.
func CalculateCallToArmsChance(alliance *Alliance, responder *faction.Faction, conflictSeverity, targetImportance float64, defensive bool, now time.Time, cfg AllianceConfig) CallToArmsResult {
	result := CallToArmsResult{Factors: make([]string, 0, 6)}

	base, ok := callToArmsBase[alliance.Type]
	if !ok {
		base = 0.3
	}
	chance := base
	result.Factors = append(result.Factors, "pact type "+string(alliance.Type))

	chance += targetImportance * 0.2
	chance += conflictSeverity * 0.15
	if defensive {
		chance += 0.1
		result.Factors = append(result.Factors, "defensive cause")
	}
	if responder != nil && responder.ActiveConflicts > 0 {
		chance -= float64(responder.ActiveConflicts) * 0.15
		result.Factors = append(result.Factors, "already committed elsewhere")
	}
	if alliance.AgeMonths(now) < 6 {
		chance -= 0.1
		result.Factors = append(result.Factors, "pact too young to bind")
	}
	if alliance.Stability > 0 && alliance.Stability < cfg.StabilityThreshold {
		chance -= 0.15
		result.Factors = append(result.Factors, "alliance internally strained")
	}

	result.ResponseChance = clamp(chance, 0.05, 0.95)
	result.WouldJoin = result.ResponseChance >= cfg.CallToArmsThreshold
	return result
}

// MemberBenefits is what one member gains from an alliance.
type MemberBenefits struct {
	MilitaryStrengthBonus float64 `json:"military_strength_bonus,omitempty"`
	TradeEfficiencyBonus  float64 `json:"trade_efficiency_bonus,omitempty"`
	AdditionalTradeBonus  float64 `json:"additional_trade_bonus,omitempty"`
}

// SharedBenefits are pact-wide provisions shared by all members.
type SharedBenefits struct {
	DefensivePact       bool `json:"defensive_pact,omitempty"`
	ResourceSharing     bool `json:"resource_sharing,omitempty"`
	TechnologySharing   bool `json:"technology_sharing,omitempty"`
	NonAggression       bool `json:"non_aggression,omitempty"`
	MilitaryAccess      bool `json:"military_access,omitempty"`
	IntelligenceSharing bool `json:"intelligence_sharing,omitempty"`
}

// BenefitsReport maps member IDs to their gains plus the shared provisions.
type BenefitsReport struct {
	PerMember map[string]MemberBenefits `json:"per_member"`
	Shared    SharedBenefits            `json:"shared"`
}

// CalculateAllianceBenefits derives what each member gains from the pact.
// Military pacts grant strength bonuses and a defensive pact; economic and
// trade pacts grant trade efficiency and resource sharing; a full alliance
// grants all of it plus technology sharing. Extra negotiated terms add on.
func CalculateAllianceBenefits(alliance *Alliance, members []*faction.Faction) BenefitsReport {
	report := BenefitsReport{PerMember: make(map[string]MemberBenefits, len(members))}

	military := alliance.Type == AllianceMilitary || alliance.Type == AllianceFull
	economic := alliance.Type == AllianceEconomic || alliance.Type == AllianceTrade || alliance.Type == AllianceFull

	var totalMil float64
	for _, m := range members {
		totalMil += m.MilitaryStrength
	}

	for _, m := range members {
		b := MemberBenefits{}
		if military && len(members) > 1 {
			// Each member is backed by a tenth of its allies' combined strength.
			b.MilitaryStrengthBonus = (totalMil - m.MilitaryStrength) * 0.1
		}
		if economic {
			b.TradeEfficiencyBonus = 0.1 + 0.05*float64(len(members)-1)
		}
		if bonus, ok := alliance.Terms["trade_bonus"].(float64); ok {
			b.AdditionalTradeBonus = bonus
		}
		report.PerMember[m.ID] = b
	}

	report.Shared.DefensivePact = military
	report.Shared.ResourceSharing = economic
	report.Shared.TechnologySharing = alliance.Type == AllianceFull
	report.Shared.NonAggression = alliance.Type == AllianceNonAggression
	if v, ok := alliance.Terms["military_access"].(bool); ok && v {
		report.Shared.MilitaryAccess = true
	}
	if v, ok := alliance.Terms["intelligence_sharing"].(bool); ok && v {
		report.Shared.IntelligenceSharing = true
	}
	return report
}

// GenerateAllianceTerms drafts the standard terms for a pact of the given
// type. Higher compatibility lengthens the term and unlocks stronger
// provisions like an offensive pact.
func GenerateAllianceTerms(a, b *faction.Faction, allianceType AllianceType, compatibility float64, cfg AllianceConfig) map[string]any {
	terms := make(map[string]any)

	months := cfg.DefaultDurationMonths
	if compatibility >= 0.7 {
		months *= 2
	}
	terms["duration_months"] = months

	switch allianceType {
	case AllianceMilitary:
		terms["military_access"] = true
		terms["defensive_pact"] = true
		if compatibility >= 0.7 {
			terms["offensive_pact"] = true
		}
	case AllianceEconomic, AllianceTrade:
		terms["trade_agreement"] = true
		terms["trade_bonus"] = 0.1 + compatibility*0.1
		if a.HasTrait("mercantile") || b.HasTrait("mercantile") {
			terms["trade_bonus"] = 0.15 + compatibility*0.1
		}
	case AllianceFull:
		terms["military_access"] = true
		terms["defensive_pact"] = true
		terms["trade_agreement"] = true
		terms["trade_bonus"] = 0.1 + compatibility*0.1
		terms["technology_sharing"] = true
	case AllianceNonAggression:
		terms["non_aggression"] = true
	}
	return terms
}

// StabilityReport scores how likely an alliance holds together.
type StabilityReport struct {
	StabilityScore float64  `json:"stability_score"`
	Factors        []string `json:"factors"`
}

// EvaluateAllianceStability scores pact cohesion in [0, 1]. Rising tension
// between members, power imbalance, and expansionist friction erode it;
// age past the first year steadies it.
func EvaluateAllianceStability(alliance *Alliance, members []*faction.Faction, internalTension float64, now time.Time, cfg AllianceConfig) StabilityReport {
	report := StabilityReport{Factors: make([]string, 0, 4)}

	score := 0.7
	report.Factors = append(report.Factors, "baseline cohesion")

	if internalTension > 25 {
		score -= internalTension / 200
		report.Factors = append(report.Factors, "rising tension between members")
	}

	if len(members) >= 2 {
		var minMil, maxMil float64 = math.MaxFloat64, 0
		for _, m := range members {
			minMil = math.Min(minMil, m.MilitaryStrength)
			maxMil = math.Max(maxMil, m.MilitaryStrength)
		}
		if minMil > 0 && maxMil/minMil > 2 {
			score -= 0.1
			report.Factors = append(report.Factors, "power imbalance among members")
		}
	}

	expansionists := 0
	for _, m := range members {
		if m.HasTrait("expansionist") {
			expansionists++
		}
	}
	if expansionists >= 2 {
		score -= 0.15
		report.Factors = append(report.Factors, "competing expansionist members")
	}

	if alliance.AgeMonths(now) >= 12 {
		score += 0.1
		report.Factors = append(report.Factors, "proven by time")
	}

	report.StabilityScore = clamp01(score)
	return report
}

// sanctionWeights distributes each sanction type's pressure across the
// economic, military, and reputation channels, with a base tension cost.
var sanctionWeights = map[SanctionType]struct {
	economic   float64
	military   float64
	reputation float64
	tension    float64
}{
	SanctionTradeEmbargo: {economic: 1.0, military: 0.3, reputation: 0.3, tension: 15},
	SanctionMilitary:     {economic: 0.4, military: 1.0, reputation: 0.4, tension: 20},
	SanctionDiplomatic:   {economic: 0.2, military: 0.1, reputation: 1.0, tension: 10},
	SanctionFull:         {economic: 1.0, military: 0.8, reputation: 0.7, tension: 25},
}

// EvaluateSanctionImpact quantifies what a sanction costs its target.
// Economic damage scales with the target's trade dependence and the issuer's
// economic leverage; military damage falls off against stronger targets.
// Longer sanctions bite harder, capped at double effect past a year. A zero
// severity reads as a middling 0.5.
func EvaluateSanctionImpact(sanctionType SanctionType, severity float64, target, issuer *faction.Faction, durationDays int) SanctionImpact {
	w, ok := sanctionWeights[sanctionType]
	if !ok {
		w = sanctionWeights[SanctionTradeEmbargo]
	}
	if severity <= 0 {
		severity = 0.5
	}
	severity = clamp01(severity)

	durationMod := math.Min(2.0, 1.0+float64(durationDays)/365.0)

	tradeDependence := 0.5
	vulnerability := 0.5
	if target != nil {
		tradeDependence = clamp01(target.TradeDependence)
		// Stronger militaries shrug off supply cuts.
		vulnerability = clamp(1.0-target.MilitaryStrength/200.0, 0.1, 1.0)
	}
	leverage := 0.75
	if issuer != nil {
		leverage = clamp(0.5+issuer.EconomicStrength/240.0, 0.5, 1.0)
	}

	impact := SanctionImpact{
		EconomicImpact:   -clamp01(w.economic * severity * tradeDependence * leverage * durationMod),
		MilitaryImpact:   -clamp01(w.military * severity * vulnerability * durationMod),
		ReputationImpact: -clamp01(w.reputation * severity * durationMod * 0.5),
		TensionChange:    w.tension + severity*10,
		DurationMonths:   durationDays / 30,
	}
	impact.Effects = sanctionEffects(sanctionType, severity, impact.DurationMonths)
	return impact
}

// sanctionEffects lists the discrete consequences a sanction imposes.
func sanctionEffects(sanctionType SanctionType, severity float64, months int) []string {
	effects := make([]string, 0, 4)
	switch sanctionType {
	case SanctionTradeEmbargo:
		effects = append(effects, "trade_routes_severed")
		if severity >= 0.7 {
			effects = append(effects, "market_shortages")
		}
	case SanctionMilitary:
		effects = append(effects, "arms_shipments_halted")
		if severity >= 0.7 {
			effects = append(effects, "readiness_degraded")
		}
	case SanctionDiplomatic:
		effects = append(effects, "envoys_recalled")
		if severity >= 0.7 {
			effects = append(effects, "summits_suspended")
		}
	case SanctionFull:
		effects = append(effects, "trade_routes_severed", "arms_shipments_halted", "envoys_recalled")
	}
	if months >= 12 {
		effects = append(effects, "prolonged_isolation")
	}
	return effects
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
