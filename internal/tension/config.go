// Package tension tracks bounded, decaying hostility between faction pairs
// per region and classifies it into qualitative levels.
package tension

// Config holds tension bookkeeping parameters. Immutable after construction;
// safe to share across workers.
type Config struct {
	BaseTension   float64 // Resting value decay converges to
	DecayRate     float64 // Points of decay per simulated day
	MaxTension    float64 // Upper clamp
	MinTension    float64 // Lower clamp
	FactionImpact float64 // Weight for faction-sourced deltas
	BorderImpact  float64 // Weight for border friction deltas
	EventImpact   float64 // Weight for world-event deltas
}

// DefaultConfig returns the standard tension tuning.
func DefaultConfig() Config {
	return Config{
		BaseTension:   0,
		DecayRate:     1.0,
		MaxTension:    100,
		MinTension:    -100,
		FactionImpact: 1.0,
		BorderImpact:  0.5,
		EventImpact:   1.0,
	}
}

// clamp bounds a value to the configured tension range.
func (c Config) clamp(v float64) float64 {
	if v > c.MaxTension {
		return c.MaxTension
	}
	if v < c.MinTension {
		return c.MinTension
	}
	return v
}
