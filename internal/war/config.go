// Package war owns the war lifecycle (declaration, daily advancement, battle
// resolution, termination) and the pure formulas behind it.
package war

// Config holds war simulation tuning. Immutable after construction.
type Config struct {
	DefaultWarDuration int     // Expected war length in days, used for treaty scaling
	ExhaustionRate     float64 // Exhaustion gained per simulated day
	MaxExhaustion      float64 // Upper clamp for either side's exhaustion
	MinPeaceDuration   int     // Days before a fresh war can be re-declared
	AttritionFactor    float64 // Daily casualty scaling
	BattleFrequency    float64 // Chance of a battle on any given day
	RaidFrequency      float64 // Chance of raids on any given day

	// OutcomeWeights biases end_war outcome selection when the engine picks
	// an outcome probabilistically rather than via thresholds.
	OutcomeWeights map[OutcomeType]float64

	DefenderAdvantage float64 // Strength multiplier for defending own region
	BaseLosses        float64 // Baseline loss fraction per battle

	ResourceLossFactor    float64 // Fraction of region resources burned per loss point
	ResourceCaptureFactor float64 // Share of loser's loss captured by the winner

	DecisiveVictoryThreshold float64 // War score needed for a decisive victory
	VictoryThreshold         float64 // War score needed for an ordinary victory
	StalemateDuration        int     // Days without a clear majority before stalemate
	MinBattlesForVerdict     int     // Battles required before score thresholds apply
}

// DefaultConfig returns the standard war tuning.
func DefaultConfig() Config {
	return Config{
		DefaultWarDuration: 60,
		ExhaustionRate:     0.02,
		MaxExhaustion:      1.0,
		MinPeaceDuration:   30,
		AttritionFactor:    1.0,
		BattleFrequency:    0.3,
		RaidFrequency:      0.4,
		OutcomeWeights: map[OutcomeType]float64{
			OutcomeDecisiveVictory: 0.15,
			OutcomeVictory:         0.35,
			OutcomeStalemate:       0.25,
			OutcomeCeasefire:       0.15,
			OutcomeWhitePeace:      0.10,
		},
		DefenderAdvantage:        1.2,
		BaseLosses:               0.2,
		ResourceLossFactor:       0.1,
		ResourceCaptureFactor:    0.3,
		DecisiveVictoryThreshold: 80,
		VictoryThreshold:         60,
		StalemateDuration:        90,
		MinBattlesForVerdict:     3,
	}
}
