package diplomacy

// AllianceConfig tunes alliance formation and upkeep formulas.
type AllianceConfig struct {
	TensionFactor         float64 // Weight of current tension in compatibility
	IdeologyFactor        float64 // Weight of ideological distance
	TraitFactor           float64 // Weight of trait synergy and friction
	MinCompatibility      float64 // Floor below which alliances cannot form
	StabilityThreshold    float64 // Stability below this marks an alliance fragile
	DefaultDurationMonths int     // Term length when no duration is negotiated
	CallToArmsThreshold   float64 // Response chance above which allies commit
}

// DefaultAllianceConfig returns the standard alliance tuning.
func DefaultAllianceConfig() AllianceConfig {
	return AllianceConfig{
		TensionFactor:         1.0,
		IdeologyFactor:        1.0,
		TraitFactor:           1.0,
		MinCompatibility:      0.3,
		StabilityThreshold:    0.5,
		DefaultDurationMonths: 12,
		CallToArmsThreshold:   0.7,
	}
}

// ProxyWarConfig tunes sponsored-conflict formulas.
type ProxyWarConfig struct {
	BaseDiscoveryChance    float64 // Baseline odds the sponsor is exposed
	DurationFactor         float64 // Scales cost with conflict length
	CostFactor             float64 // Global cost multiplier
	EffectivenessThreshold float64 // Effectiveness needed for a proxy to matter
	MinProxyStrength       float64 // Weakest proxy worth sponsoring
}

// DefaultProxyWarConfig returns the standard proxy war tuning.
func DefaultProxyWarConfig() ProxyWarConfig {
	return ProxyWarConfig{
		BaseDiscoveryChance:    0.3,
		DurationFactor:         1.0,
		CostFactor:             1.0,
		EffectivenessThreshold: 0.6,
		MinProxyStrength:       0.2,
	}
}

// PeaceConfig tunes peace brokering and sanction defaults.
type PeaceConfig struct {
	BaseAcceptanceChance    float64 // Odds either side accepts before modifiers
	ExhaustionWeight        float64 // How much war exhaustion raises acceptance
	IncentiveWeight         float64 // How much offered incentives raise acceptance
	TermsWeight             float64 // How much terms favorability sways each side
	DefaultSanctionDays     int     // Sanction length when none is given
	DefaultSanctionSeverity float64 // Sanction severity when none is given
}

// DefaultPeaceConfig returns the standard peace brokering tuning.
func DefaultPeaceConfig() PeaceConfig {
	return PeaceConfig{
		BaseAcceptanceChance:    0.4,
		ExhaustionWeight:        0.3,
		IncentiveWeight:         0.2,
		TermsWeight:             0.2,
		DefaultSanctionDays:     365,
		DefaultSanctionSeverity: 0.5,
	}
}

// Config bundles the diplomacy tuning surfaces.
type Config struct {
	Alliance AllianceConfig
	ProxyWar ProxyWarConfig
	Peace    PeaceConfig
}

// DefaultConfig returns the standard diplomacy tuning.
func DefaultConfig() Config {
	return Config{
		Alliance: DefaultAllianceConfig(),
		ProxyWar: DefaultProxyWarConfig(),
		Peace:    DefaultPeaceConfig(),
	}
}
