// Factions — the political actors whose relations, wars, and pacts the
// simulation tracks.
package faction

// Faction represents one power with military, economic, and covert capabilities.
type Faction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// Capability scores. Dimensionless; typical seed values sit in 40–120.
	MilitaryStrength    float64 `json:"military_strength"`
	EconomicStrength    float64 `json:"economic_strength"`
	CovertOpsStrength   float64 `json:"covert_ops_strength"`
	CounterIntelligence float64 `json:"counter_intel_strength"`

	// Behavioral flags consulted by war and diplomacy formulas
	// ("militaristic", "peaceful", "expansionist", "diplomatic", ...).
	Traits map[string]bool `json:"traits"`

	// Ideology axes in [0, 1] ("authoritarianism", "militarism", "expansionism").
	Ideology map[string]float64 `json:"ideology"`

	// Influence and reputation per region (region ID → 0–1).
	Influence          map[string]float64 `json:"influence"`
	RegionalReputation map[string]float64 `json:"regional_reputation"`

	// Stockpiles drawn down by wars and proxy conflicts.
	Resources map[string]float64 `json:"resources"`

	// Economic exposure used by sanction impact formulas.
	TradeDependence float64 `json:"trade_dependence"`

	// Number of conflicts the faction is already committed to.
	ActiveConflicts int `json:"active_conflicts"`
}

// Kind categorizes the nature of a faction.
type Kind uint8

const (
	KindPolitical Kind = iota // Governance-focused
	KindEconomic              // Trade and wealth
	KindMilitary              // Martial power
	KindReligious             // Spiritual and cultural
	KindCriminal              // Underground
)

// HasTrait reports whether a behavioral flag is set.
func (f *Faction) HasTrait(name string) bool {
	if f == nil || f.Traits == nil {
		return false
	}
	return f.Traits[name]
}

// InfluenceIn returns the faction's influence in a region, zero if untracked.
func (f *Faction) InfluenceIn(regionID string) float64 {
	if f == nil || f.Influence == nil {
		return 0
	}
	return f.Influence[regionID]
}

// SeedFactions creates the 5 initial factions for the world.
func SeedFactions() []*Faction {
	return []*Faction{
		{
			ID:                  "the_crown",
			Name:                "The Crown",
			Kind:                KindPolitical,
			MilitaryStrength:    90,
			EconomicStrength:    80,
			CovertOpsStrength:   50,
			CounterIntelligence: 70,
			Traits:              map[string]bool{"militaristic": true, "honorable": true},
			Ideology:            map[string]float64{"authoritarianism": 0.7, "militarism": 0.6, "expansionism": 0.5},
			Influence:           make(map[string]float64),
			RegionalReputation:  make(map[string]float64),
			Resources:           map[string]float64{"gold": 50000, "food": 30000, "materials": 25000},
			TradeDependence:     0.3,
		},
		{
			ID:                  "merchants_compact",
			Name:                "Merchant's Compact",
			Kind:                KindEconomic,
			MilitaryStrength:    55,
			EconomicStrength:    110,
			CovertOpsStrength:   60,
			CounterIntelligence: 55,
			Traits:              map[string]bool{"diplomatic": true, "mercantile": true, "peaceful": true},
			Ideology:            map[string]float64{"authoritarianism": 0.2, "militarism": 0.3, "expansionism": 0.4},
			Influence:           make(map[string]float64),
			RegionalReputation:  make(map[string]float64),
			Resources:           map[string]float64{"gold": 90000, "food": 20000, "materials": 35000},
			TradeDependence:     0.8,
		},
		{
			ID:                  "iron_brotherhood",
			Name:                "Iron Brotherhood",
			Kind:                KindMilitary,
			MilitaryStrength:    115,
			EconomicStrength:    60,
			CovertOpsStrength:   45,
			CounterIntelligence: 65,
			Traits:              map[string]bool{"militaristic": true, "expansionist": true},
			Ideology:            map[string]float64{"authoritarianism": 0.8, "militarism": 0.9, "expansionism": 0.7},
			Influence:           make(map[string]float64),
			RegionalReputation:  make(map[string]float64),
			Resources:           map[string]float64{"gold": 30000, "food": 25000, "materials": 40000},
			TradeDependence:     0.2,
		},
		{
			ID:                  "verdant_circle",
			Name:                "Verdant Circle",
			Kind:                KindReligious,
			MilitaryStrength:    45,
			EconomicStrength:    70,
			CovertOpsStrength:   55,
			CounterIntelligence: 60,
			Traits:              map[string]bool{"peaceful": true, "diplomatic": true},
			Ideology:            map[string]float64{"authoritarianism": 0.3, "militarism": 0.1, "expansionism": 0.2},
			Influence:           make(map[string]float64),
			RegionalReputation:  make(map[string]float64),
			Resources:           map[string]float64{"gold": 25000, "food": 45000, "materials": 15000},
			TradeDependence:     0.5,
		},
		{
			ID:                  "ashen_path",
			Name:                "Ashen Path",
			Kind:                KindCriminal,
			MilitaryStrength:    65,
			EconomicStrength:    50,
			CovertOpsStrength:   95,
			CounterIntelligence: 80,
			Traits:              map[string]bool{"deceitful": true, "expansionist": true},
			Ideology:            map[string]float64{"authoritarianism": 0.5, "militarism": 0.5, "expansionism": 0.8},
			Influence:           make(map[string]float64),
			RegionalReputation:  make(map[string]float64),
			Resources:           map[string]float64{"gold": 40000, "food": 10000, "materials": 20000},
			TradeDependence:     0.4,
		},
	}
}

// Index builds a lookup map from a faction slice.
func Index(factions []*Faction) map[string]*Faction {
	idx := make(map[string]*Faction, len(factions))
	for _, f := range factions {
		idx[f.ID] = f
	}
	return idx
}
