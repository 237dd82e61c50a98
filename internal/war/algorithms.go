package war

import (
	"math"
	"time"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

// warChanceTraitModifiers adjusts escalation odds per behavioral flag.
// Applied once per side carrying the trait.
var warChanceTraitModifiers = map[string]float64{
	"militaristic": 0.2,
	"expansionist": 0.15,
	"peaceful":     -0.2,
	"diplomatic":   -0.1,
}

// terrainDefenderModifiers multiplies defender strength on favorable ground.
var terrainDefenderModifiers = map[string]float64{
	"mountains": 1.3,
	"swamp":     1.25,
	"forest":    1.2,
	"hills":     1.15,
	"plains":    1.0,
	"desert":    1.0,
	"coast":     1.05,
}

// CalculateDisputedRegions returns the ordered list of region IDs contested
// between two factions. A region is disputed when both hold a nonzero claim,
// or one controls it while the other claims it.
func CalculateDisputedRegions(factionA, factionB string, regions []*faction.Region, cfg Config) []string {
	disputed := make([]string, 0)
	for _, r := range regions {
		claimA := r.ClaimOf(factionA)
		claimB := r.ClaimOf(factionB)

		bothClaim := claimA > 0 && claimB > 0
		controlVsClaim := (r.ControllerID == factionA && claimB > 0) ||
			(r.ControllerID == factionB && claimA > 0)

		if bothClaim || controlVsClaim {
			disputed = append(disputed, r.ID)
		}
	}
	return disputed
}

// CalculateWarChances computes the probability of escalation to open war.
// Base chance is (tension/100)^2, zero at or below zero tension; trait
// modifiers shift it; the result clamps to [0, 1].
func CalculateWarChances(tensionValue float64, traitsA, traitsB map[string]bool, cfg Config) float64 {
	chance := 0.0
	if tensionValue > 0 {
		chance = math.Pow(tensionValue/100.0, 2)
	}

	for trait, mod := range warChanceTraitModifiers {
		if traitsA[trait] {
			chance += mod
		}
		if traitsB[trait] {
			chance += mod
		}
	}

	return clamp(chance, 0, 1)
}

// EvaluateBattleOutcome resolves one engagement. Each side's effective
// strength is its military strength times a random multiplier in [0.8, 1.2];
// the defender additionally gets the terrain modifier and, when it controls
// the region, the configured defender advantage. The higher strength wins.
// Loss fractions land in [0.05, 0.7], the winner's lower.
func EvaluateBattleOutcome(attacker, defender *faction.Faction, region *faction.Region, cfg Config, rng entropy.Source) Battle {
	attackerStrength := attacker.MilitaryStrength * rng.Uniform(0.8, 1.2)
	defenderStrength := defender.MilitaryStrength * rng.Uniform(0.8, 1.2)

	terrain := ""
	if region != nil {
		terrain = region.TerrainType
		if mod, ok := terrainDefenderModifiers[terrain]; ok {
			defenderStrength *= mod
		}
		if region.ControllerID == defender.ID {
			defenderStrength *= cfg.DefenderAdvantage
		}
	}

	winnerID := attacker.ID
	if defenderStrength >= attackerStrength {
		winnerID = defender.ID
	}

	winnerLosses := clamp(0.05+rng.Float()*0.25, 0.05, 0.7)
	loserLosses := clamp(0.2+rng.Float()*0.5, 0.05, 0.7)

	attackerLosses, defenderLosses := loserLosses, winnerLosses
	if winnerID == attacker.ID {
		attackerLosses, defenderLosses = winnerLosses, loserLosses
	}

	regionID := ""
	if region != nil {
		regionID = region.ID
	}

	return Battle{
		WinnerID:         winnerID,
		AttackerID:       attacker.ID,
		DefenderID:       defender.ID,
		RegionID:         regionID,
		TerrainType:      terrain,
		AttackerStrength: attackerStrength,
		DefenderStrength: defenderStrength,
		AttackerLosses:   attackerLosses,
		DefenderLosses:   defenderLosses,
		Timestamp:        time.Now().UTC(),
	}
}

// CalculateResourceChanges derives per-faction resource deltas from a battle.
// Each side loses resource * ownLossFraction * ResourceLossFactor; the
// winner captures ResourceCaptureFactor of the loser's loss, which reduces
// the loser's net loss and credits the winner.
func CalculateResourceChanges(b Battle, regionResources map[string]float64, cfg Config) map[string]map[string]float64 {
	changes := map[string]map[string]float64{
		b.AttackerID: {},
		b.DefenderID: {},
	}

	winnerID := b.WinnerID
	loserID := b.DefenderID
	winnerLoss, loserLoss := b.AttackerLosses, b.DefenderLosses
	if winnerID == b.DefenderID {
		loserID = b.AttackerID
		winnerLoss, loserLoss = b.DefenderLosses, b.AttackerLosses
	}

	for name, amount := range regionResources {
		winnerBase := amount * winnerLoss * cfg.ResourceLossFactor
		loserBase := amount * loserLoss * cfg.ResourceLossFactor
		captured := loserBase * cfg.ResourceCaptureFactor

		changes[winnerID][name] = -winnerBase + captured
		changes[loserID][name] = -(loserBase - captured)
	}

	return changes
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
