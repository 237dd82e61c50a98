package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/conflict-sim/internal/diplomacy"
	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
	"github.com/talgya/conflict-sim/internal/tension"
	"github.com/talgya/conflict-sim/internal/war"
)

func twoFactionWorld() ([]*faction.Faction, []*faction.Region) {
	factions := []*faction.Faction{
		{
			ID:               "alpha",
			Name:             "Alpha",
			MilitaryStrength: 90,
			Traits:           map[string]bool{},
			Ideology:         map[string]float64{},
			Influence:        map[string]float64{},
			Resources:        map[string]float64{"gold": 10000},
		},
		{
			ID:               "beta",
			Name:             "Beta",
			MilitaryStrength: 80,
			Traits:           map[string]bool{},
			Ideology:         map[string]float64{},
			Influence:        map[string]float64{},
			Resources:        map[string]float64{"gold": 10000},
		},
	}
	regions := []*faction.Region{
		{
			ID:         "r1",
			Name:       "Borderlands",
			Claims:     map[string]float64{"alpha": 60, "beta": 40},
			Stability:  0.6,
			Population: 5000,
			Resources:  map[string]float64{"gold": 500},
		},
		{
			ID:        "r2",
			Name:      "Hinterland",
			Claims:    map[string]float64{"alpha": 80},
			Stability: 0.8,
			Resources: map[string]float64{},
		},
	}
	return factions, regions
}

func TestNewSimulationSeedsContestedTensions(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewSeeded(1))

	// Both factions claim r1, so the pair starts tense there.
	v := sim.Tensions.GetFactionTension("r1", "alpha", "beta")
	assert.GreaterOrEqual(t, v, 20.0)
	assert.Less(t, v, 45.0)

	// r2 has a single claimant and stays quiet.
	assert.Empty(t, sim.Tensions.Records("r2"))
}

func TestTickDayEscalatesHostilePairsToWar(t *testing.T) {
	factions, regions := twoFactionWorld()
	// Constant low draws guarantee the escalation roll lands and every war
	// day produces a battle.
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.01))

	sim.Tensions.ModifyTension("r1", "alpha", "beta", 200, "setup")
	sim.TickDay(1)

	require.Equal(t, 1, sim.Stats.ActiveWars)
	w := sim.Wars.GetWarStatus("alpha", "beta")
	require.NotNil(t, w)
	assert.Equal(t, []string{"r1"}, w.DisputedRegions)
	assert.Equal(t, 1, sim.Stats.TotalBattles)
	assert.Positive(t, sim.Stats.TotalCasualties)

	declared := false
	for _, e := range sim.Events {
		if e.Category == "war" {
			declared = true
		}
	}
	assert.True(t, declared)
}

func TestTickDayDecaysQuietTensions(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.99))

	before := sim.Tensions.GetFactionTension("r1", "alpha", "beta")
	sim.TickDay(1)
	after := sim.Tensions.GetFactionTension("r1", "alpha", "beta")
	assert.Less(t, after, before)
}

func TestLongRunStaysWithinInvariants(t *testing.T) {
	sim := NewSimulation(faction.SeedFactions(), seededRegions(), entropy.NewSeeded(42))

	for day := uint64(1); day <= 200; day++ {
		sim.TickDay(day)

		cfg := sim.Tensions.Config()
		for _, r := range sim.Regions {
			for _, rec := range sim.Tensions.Records(r.ID) {
				assert.GreaterOrEqual(t, rec.Value, cfg.MinTension)
				assert.LessOrEqual(t, rec.Value, cfg.MaxTension)
			}
		}
		assert.Equal(t, len(sim.Wars.ActiveWars()), sim.Stats.ActiveWars)
		assert.GreaterOrEqual(t, sim.Stats.TotalCasualties, 0)
	}
	assert.Equal(t, uint64(200), sim.CurrentDay())

	// Stockpiles never go negative no matter how the wars went.
	for _, f := range sim.Factions {
		for name, amount := range f.Resources {
			assert.GreaterOrEqual(t, amount, 0.0, "%s %s", f.ID, name)
		}
	}
}

func seededRegions() []*faction.Region {
	return []*faction.Region{
		{
			ID:         "marches",
			Name:       "The Marches",
			Claims:     map[string]float64{"the_crown": 70, "iron_brotherhood": 55},
			Stability:  0.5,
			Population: 12000,
			Resources:  map[string]float64{"gold": 800, "food": 400},
		},
		{
			ID:         "freeports",
			Name:       "The Freeports",
			Claims:     map[string]float64{"merchants_compact": 80, "ashen_path": 30},
			Stability:  0.7,
			Population: 20000,
			Resources:  map[string]float64{"gold": 1500},
		},
		{
			ID:         "greenwood",
			Name:       "Greenwood",
			Claims:     map[string]float64{"verdant_circle": 90, "iron_brotherhood": 25},
			Stability:  0.8,
			Population: 8000,
			Resources:  map[string]float64{"food": 900},
		},
	}
}

func TestPickOutsiderExcludesBelligerents(t *testing.T) {
	factions, regions := twoFactionWorld()
	factions = append(factions, &faction.Faction{ID: "gamma", Resources: map[string]float64{}})
	sim := NewSimulation(factions, regions, entropy.NewSeeded(3))

	for i := 0; i < 10; i++ {
		assert.Equal(t, "gamma", sim.pickOutsider("alpha", "beta"))
	}

	// With only the belligerents in the world there is nobody to mediate.
	small, smallRegions := twoFactionWorld()
	lonely := NewSimulation(small, smallRegions, entropy.NewSeeded(3))
	assert.Empty(t, lonely.pickOutsider("alpha", "beta"))
}

func TestTransferResourcesIsCappedByStockpile(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewSeeded(1))

	sim.FactionIndex["alpha"].Resources["gold"] = 300
	sim.transferResources("alpha", "beta", map[string]float64{"gold": 1000})

	assert.Equal(t, 0.0, sim.FactionIndex["alpha"].Resources["gold"])
	assert.Equal(t, 10300.0, sim.FactionIndex["beta"].Resources["gold"])
}

func TestBattleFeedbackRaisesRegionalTension(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.01))

	sim.Tensions.ModifyTension("r1", "alpha", "beta", 200, "setup")
	sim.TickDay(1)

	// The battle pushed the pair back to the cap despite daily decay.
	assert.Equal(t, 100.0, sim.Tensions.GetFactionTension("r1", "alpha", "beta"))
	assert.Equal(t, tension.LevelWar, sim.Tensions.Level("r1", "alpha", "beta"))
}

func TestTickDayFormsAllianceBetweenWarmPairs(t *testing.T) {
	factions, regions := twoFactionWorld()
	// Constant low draws land the formation roll every time.
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.001))

	// Push the pair deep into alliance territory before the day runs.
	sim.Tensions.ModifyTension("r1", "alpha", "beta", -100, "setup")
	sim.TickDay(1)

	alliances := sim.Diplomacy.AlliancesOf("alpha")
	require.Len(t, alliances, 1)
	assert.Equal(t, diplomacy.AllianceMilitary, alliances[0].Type)
	assert.True(t, alliances[0].HasMember("beta"))
	assert.InDelta(t, 0.798, alliances[0].Stability, 0.001)

	signed := false
	for _, e := range sim.Events {
		if e.Category == "diplomacy" && strings.Contains(e.Description, "accord") {
			signed = true
		}
	}
	assert.True(t, signed)

	// An allied pair does not sign a second pact.
	sim.TickDay(2)
	assert.Len(t, sim.Diplomacy.AlliancesOf("alpha"), 1)
}

func TestTickWeekDissolvesStrainedAlliances(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.99))

	a, err := sim.Diplomacy.FormAlliance("border accord", diplomacy.AllianceTrade,
		sim.FactionIndex["alpha"], sim.FactionIndex["beta"], -80, nil)
	require.NoError(t, err)

	// Quiet members keep the pact at baseline cohesion.
	sim.Tensions.ModifyTension("r1", "alpha", "beta", -200, "setup")
	sim.TickWeek(7)
	require.Equal(t, "active", sim.Diplomacy.GetAlliance(a.ID).Status)
	assert.InDelta(t, 0.7, sim.Diplomacy.GetAlliance(a.ID).Stability, 0.001)

	// Tension at the cap drags stability under the threshold.
	sim.Tensions.ModifyTension("r1", "alpha", "beta", 300, "setup")
	sim.TickWeek(14)
	assert.Equal(t, "dissolved", sim.Diplomacy.GetAlliance(a.ID).Status)
	assert.Empty(t, sim.Diplomacy.AlliancesOf("alpha"))

	dissolved := false
	for _, e := range sim.Events {
		if e.Category == "diplomacy" && strings.Contains(e.Description, "dissolves") {
			dissolved = true
		}
	}
	assert.True(t, dissolved)

	// A dissolved pact is not reviewed again.
	sim.TickWeek(21)
	assert.Equal(t, "dissolved", sim.Diplomacy.GetAlliance(a.ID).Status)
}

func TestWarResolutionRecordsControlledRegions(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.99))

	w, err := sim.Wars.DeclareWar("alpha", "beta", []string{"r1", "r2"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		w.Battles = append(w.Battles, war.Battle{WinnerID: "alpha", RegionID: "r1"})
	}
	w.Day = 10

	sim.resolveEndedWars(10)

	require.NotNil(t, w.Outcome)
	assert.Equal(t, war.OutcomeDecisiveVictory, w.Outcome.Type)
	assert.Equal(t, []string{"r1"}, w.ControlledPOIs["alpha"])
	assert.Equal(t, "alpha", sim.RegionIndex["r1"].ControllerID)
}

func TestUpdateStatsCountsEachWarOnce(t *testing.T) {
	factions, regions := twoFactionWorld()
	sim := NewSimulation(factions, regions, entropy.NewFixed(0.99))

	w, err := sim.Wars.DeclareWar("alpha", "beta", []string{"r1"})
	require.NoError(t, err)
	w.Casualties["alpha"] = 100
	w.Casualties["beta"] = 200

	sim.updateStats()
	assert.Equal(t, 300, sim.Stats.TotalCasualties)
	assert.Equal(t, 1, sim.Stats.ActiveWars)
}
