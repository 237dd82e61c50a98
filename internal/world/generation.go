// Region generation using layered simplex noise.
// Samples elevation, rainfall, and temperature at region sites, then derives
// terrain, resources, stability, and initial faction claims.
package world

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

// GenConfig holds region generation parameters.
type GenConfig struct {
	RegionCount int     // Number of regions to generate
	Seed        int64   // Noise seed (0 = random)
	SeaLevel    float64 // Elevation threshold below which sites are rerolled
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		RegionCount: 12,
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		RegionCount: 4,
		Seed:        42,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
	}
}

var regionNames = []string{
	"Northreach", "The Amber Vale", "Greywater Marches", "Sunfall Steppe",
	"The Thornwood", "Ashfield", "Korrin's Gap", "The Saltshore",
	"High Crags", "Mirrormere", "The Dust Belt", "Oldwall",
	"Fennmoor", "The Shattered Coast", "Emberdowns", "Widow's Pass",
}

// Generate creates the region set for a new world. Terrain comes from
// layered noise; claims and control are distributed across the supplied
// factions so that neighboring powers contest ground from the start.
func Generate(cfg GenConfig, factions []*faction.Faction, rng entropy.Source) []*faction.Region {
	seed := cfg.Seed
	if seed == 0 {
		seed = int64(rng.IntN(1 << 30))
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	regions := make([]*faction.Region, 0, cfg.RegionCount)
	for i := 0; i < cfg.RegionCount; i++ {
		// Spread sites on a ring so adjacent regions sample nearby noise.
		angle := 2 * math.Pi * float64(i) / float64(cfg.RegionCount)
		radius := 10.0 + 6.0*float64(i%3)
		x := math.Cos(angle) * radius
		y := math.Sin(angle) * radius

		elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
		rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
		temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

		// Sites that would sit underwater get lifted onto the coast.
		if elev < cfg.SeaLevel {
			elev = cfg.SeaLevel + 0.05
		}

		terrain := deriveTerrain(elev, rain, temp, cfg)

		name := regionNames[i%len(regionNames)]
		r := &faction.Region{
			ID:          fmt.Sprintf("region_%02d", i+1),
			Name:        name,
			TerrainType: terrain,
			Claims:      make(map[string]float64),
			Stability:   0.4 + rain*0.3 + (1-elev)*0.3,
			Population:  50000 + int(rain*200000) + int((1-elev)*150000),
			Resources:   makeResources(terrain, elev, rain),
		}
		if r.Stability > 1 {
			r.Stability = 1
		}

		assignClaims(r, factions, rng)
		regions = append(regions, r)
	}
	return regions
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) string {
	switch {
	case elev > cfg.MountainLvl:
		return "mountains"
	case elev > 0.6:
		return "hills"
	case rain < 0.25 && temp > 0.5:
		return "desert"
	case rain > 0.7 && elev < 0.45:
		return "swamp"
	case rain > 0.45 && elev > 0.45:
		return "forest"
	case elev < cfg.SeaLevel+0.1:
		return "coast"
	default:
		return "plains"
	}
}

// makeResources populates initial resource yields based on terrain.
func makeResources(terrain string, elev, rain float64) map[string]float64 {
	res := make(map[string]float64)
	res["gold"] = 500 + elev*500

	switch terrain {
	case "plains":
		res["food"] = 800 + rain*400 // Rainfall boosts yield
		res["materials"] = 200
	case "forest":
		res["materials"] = 1000
		res["food"] = 400
	case "mountains":
		res["materials"] = 600 + elev*300
		res["gold"] = 1000 + elev*500
	case "hills":
		res["materials"] = 500
		res["food"] = 300
	case "coast":
		res["food"] = 800
		res["gold"] = 700 // Trade routes
	case "swamp":
		res["materials"] = 300
		res["food"] = 200
	case "desert":
		res["materials"] = 200
		if elev > 0.5 {
			res["gold"] = 1200 // Gem deposits
		}
	}
	return res
}

// assignClaims gives each region a controller and overlapping claims from
// one or two rival factions so the tension system has disputes to work with.
func assignClaims(r *faction.Region, factions []*faction.Faction, rng entropy.Source) {
	if len(factions) == 0 {
		return
	}

	controller := factions[rng.IntN(len(factions))]
	r.ControllerID = controller.ID
	r.Claims[controller.ID] = 60 + rng.Float()*40
	controller.Influence[r.ID] = 0.5 + rng.Float()*0.4
	controller.RegionalReputation[r.ID] = 0.4 + rng.Float()*0.4

	if len(factions) < 2 {
		return
	}

	// One rival claim, sometimes two.
	rivals := 1
	if rng.Float() < 0.3 {
		rivals = 2
	}
	for i := 0; i < rivals; i++ {
		rival := factions[rng.IntN(len(factions))]
		if rival.ID == controller.ID {
			continue
		}
		if _, claimed := r.Claims[rival.ID]; claimed {
			continue
		}
		r.Claims[rival.ID] = 10 + rng.Float()*50
		rival.Influence[r.ID] = 0.1 + rng.Float()*0.3
		rival.RegionalReputation[r.ID] = 0.2 + rng.Float()*0.3
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(regions []*faction.Region) map[string]int {
	counts := make(map[string]int)
	for _, r := range regions {
		counts[r.TerrainType]++
	}
	return counts
}
