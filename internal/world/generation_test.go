package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

var knownTerrains = map[string]bool{
	"mountains": true,
	"hills":     true,
	"desert":    true,
	"swamp":     true,
	"forest":    true,
	"coast":     true,
	"plains":    true,
}

func TestGenerateProducesRequestedRegions(t *testing.T) {
	factions := faction.SeedFactions()
	regions := Generate(DefaultGenConfig(), factions, entropy.NewSeeded(7))

	require.Len(t, regions, 12)
	seen := make(map[string]bool)
	for _, r := range regions {
		assert.False(t, seen[r.ID], "duplicate region id %s", r.ID)
		seen[r.ID] = true

		assert.NotEmpty(t, r.Name)
		assert.True(t, knownTerrains[r.TerrainType], "unknown terrain %q", r.TerrainType)
		assert.GreaterOrEqual(t, r.Stability, 0.0)
		assert.LessOrEqual(t, r.Stability, 1.0)
		assert.Positive(t, r.Population)
		assert.Positive(t, r.Resources["gold"])
	}
}

func TestGenerateAssignsControllersAndClaims(t *testing.T) {
	factions := faction.SeedFactions()
	regions := Generate(SmallTestConfig(), factions, entropy.NewSeeded(7))

	for _, r := range regions {
		require.NotEmpty(t, r.ControllerID)
		// The controller always holds the strongest claim.
		controllerClaim := r.ClaimOf(r.ControllerID)
		assert.GreaterOrEqual(t, controllerClaim, 60.0)
		for id, claim := range r.Claims {
			if id == r.ControllerID {
				continue
			}
			assert.Less(t, claim, controllerClaim)
		}
	}

	// Claims feed back into faction influence.
	influenced := 0
	for _, f := range factions {
		influenced += len(f.Influence)
	}
	assert.Positive(t, influenced)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	cfg := SmallTestConfig()

	a := Generate(cfg, faction.SeedFactions(), entropy.NewSeeded(9))
	b := Generate(cfg, faction.SeedFactions(), entropy.NewSeeded(9))

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].TerrainType, b[i].TerrainType)
		assert.Equal(t, a[i].ControllerID, b[i].ControllerID)
		assert.Equal(t, a[i].Claims, b[i].Claims)
		assert.Equal(t, a[i].Population, b[i].Population)
	}
}

func TestGenerateWithoutFactions(t *testing.T) {
	regions := Generate(SmallTestConfig(), nil, entropy.NewSeeded(1))
	require.Len(t, regions, 4)
	for _, r := range regions {
		assert.Empty(t, r.ControllerID)
		assert.Empty(t, r.Claims)
	}
}

func TestDeriveTerrainThresholds(t *testing.T) {
	cfg := DefaultGenConfig()

	assert.Equal(t, "mountains", deriveTerrain(0.9, 0.5, 0.5, cfg))
	assert.Equal(t, "hills", deriveTerrain(0.65, 0.3, 0.5, cfg))
	assert.Equal(t, "desert", deriveTerrain(0.5, 0.1, 0.8, cfg))
	assert.Equal(t, "swamp", deriveTerrain(0.4, 0.8, 0.5, cfg))
	assert.Equal(t, "forest", deriveTerrain(0.5, 0.5, 0.5, cfg))
	assert.Equal(t, "coast", deriveTerrain(0.3, 0.3, 0.3, cfg))
	assert.Equal(t, "plains", deriveTerrain(0.5, 0.3, 0.3, cfg))
}

func TestMakeResourcesByTerrain(t *testing.T) {
	mountains := makeResources("mountains", 0.8, 0.3)
	assert.Greater(t, mountains["gold"], 1000.0)
	assert.Positive(t, mountains["materials"])

	plains := makeResources("plains", 0.4, 0.6)
	assert.Greater(t, plains["food"], 800.0)

	// High desert hides gem deposits.
	highDesert := makeResources("desert", 0.6, 0.1)
	assert.Equal(t, 1200.0, highDesert["gold"])
	lowDesert := makeResources("desert", 0.4, 0.1)
	assert.Less(t, lowDesert["gold"], 1000.0)
}

func TestTerrainCounts(t *testing.T) {
	regions := []*faction.Region{
		{TerrainType: "plains"},
		{TerrainType: "plains"},
		{TerrainType: "swamp"},
	}
	counts := TerrainCounts(regions)
	assert.Equal(t, 2, counts["plains"])
	assert.Equal(t, 1, counts["swamp"])
}
