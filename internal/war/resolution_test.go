package war

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeWar(battlesWonA, battlesWonB, day int, disputed ...string) *War {
	w := &War{
		ID:              "war_test",
		FactionAID:      "alpha",
		FactionBID:      "beta",
		StartDate:       time.Now().UTC().AddDate(0, 0, -day),
		Day:             day,
		DisputedRegions: disputed,
		Casualties:      map[string]int{"alpha": 100, "beta": 150},
		IsActive:        true,
	}
	for i := 0; i < battlesWonA; i++ {
		w.Battles = append(w.Battles, Battle{WinnerID: "alpha", AttackerID: "alpha", DefenderID: "beta"})
	}
	for i := 0; i < battlesWonB; i++ {
		w.Battles = append(w.Battles, Battle{WinnerID: "beta", AttackerID: "beta", DefenderID: "alpha"})
	}
	return w
}

func TestSimulateWarDecisiveVictory(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(8, 2, 30)

	report := SimulateWar(w, nil, nil, cfg)

	assert.Equal(t, 8, report.FactionAVictories)
	assert.Equal(t, 2, report.FactionBVictories)
	assert.InDelta(t, 80.0, report.WarScore, 1e-9)
	assert.True(t, report.Ended)

	require.NotNil(t, w.Outcome)
	assert.Equal(t, OutcomeDecisiveVictory, w.Outcome.Type)
	assert.Equal(t, "alpha", w.Outcome.WinnerID)
	assert.Equal(t, "beta", w.Outcome.LoserID)
	assert.False(t, w.IsActive)
}

func TestSimulateWarOrdinaryVictory(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(7, 3, 30)

	report := SimulateWar(w, nil, nil, cfg)

	assert.InDelta(t, 70.0, report.WarScore, 1e-9)
	require.NotNil(t, w.Outcome)
	assert.Equal(t, OutcomeVictory, w.Outcome.Type)
	assert.Equal(t, "alpha", w.Outcome.WinnerID)
}

func TestSimulateWarTrailingSideScoresNegative(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(1, 9, 20)

	report := SimulateWar(w, nil, nil, cfg)
	assert.InDelta(t, -90.0, report.WarScore, 1e-9)
	require.NotNil(t, w.Outcome)
	assert.Equal(t, "beta", w.Outcome.WinnerID)
}

func TestSimulateWarTooFewBattles(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(2, 0, 10)

	report := SimulateWar(w, nil, nil, cfg)
	assert.False(t, report.Ended)
	assert.Nil(t, w.Outcome)
	assert.True(t, w.IsActive)
}

func TestSimulateWarStalemate(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(1, 1, 95)

	report := SimulateWar(w, nil, nil, cfg)
	assert.True(t, report.Ended)
	require.NotNil(t, w.Outcome)
	assert.Equal(t, OutcomeStalemate, w.Outcome.Type)
	assert.Empty(t, w.Outcome.WinnerID)
}

func TestSimulateWarEndedPassesThrough(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(8, 2, 30)
	SimulateWar(w, nil, nil, cfg)
	require.NotNil(t, w.Outcome)
	first := w.Outcome

	report := SimulateWar(w, nil, nil, cfg)
	assert.True(t, report.Ended)
	assert.Same(t, first, w.Outcome)
}

func TestSimulateWarDisputedBattlesWeighMore(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(0, 0, 10, "front")
	// Two wins in the disputed region outweigh three skirmish wins elsewhere.
	w.Battles = append(w.Battles,
		Battle{WinnerID: "alpha", RegionID: "front"},
		Battle{WinnerID: "alpha", RegionID: "front"},
		Battle{WinnerID: "beta"},
		Battle{WinnerID: "beta"},
		Battle{WinnerID: "beta"},
	)

	report := SimulateWar(w, nil, nil, cfg)
	// Weighted: alpha 3.0, beta 3.0 — dead even, no verdict.
	assert.InDelta(t, 50.0, report.WarScore, 1e-9)
	assert.False(t, report.Ended)
}

func TestResolveWarDecisive(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(8, 2, 30, "r1", "r2", "r3", "r4", "r5")
	SimulateWar(w, nil, nil, cfg)
	require.NotNil(t, w.Outcome)

	res := ResolveWar(w, cfg)
	require.NotNil(t, res)
	assert.Equal(t, -30.0, res.TensionAdjustment)
	assert.Equal(t, 60, res.TreatyDurationMonths)
	assert.Len(t, res.TerritorialChanges, 4) // 80% of 5

	require.NotNil(t, res.Reparations)
	assert.Equal(t, "beta", res.Reparations.FromFaction)
	assert.Equal(t, "alpha", res.Reparations.ToFaction)
	assert.InDelta(t, 4000.0, res.Reparations.Resources["gold"], 1e-9)
	assert.Same(t, res, w.Resolution)
}

func TestResolveWarRecordsOutcomeLedgers(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(8, 2, 30, "r1", "r2", "r3", "r4", "r5")
	SimulateWar(w, nil, nil, cfg)
	require.NotNil(t, w.Outcome)

	res := ResolveWar(w, cfg)
	require.NotNil(t, res)

	out := w.Outcome
	assert.Len(t, out.TerritorialChanges, 4)
	assert.InDelta(t, -30.0, out.TensionChanges["alpha|beta"], 1e-9)
	assert.InDelta(t, 4000.0, out.ResourceTransfers["gold"], 1e-9)
	assert.InDelta(t, 1600.0, out.ResourceTransfers["materials"], 1e-9)

	// A decisive victory shifts standing 0.15 toward the winner.
	assert.InDelta(t, 0.15, out.ReputationChanges["alpha"], 1e-9)
	assert.InDelta(t, -0.15, out.ReputationChanges["beta"], 1e-9)

	// A drawn war settles tension but moves no goods or standing.
	draw := activeWar(1, 1, 95, "r1")
	SimulateWar(draw, nil, nil, cfg)
	require.NotNil(t, draw.Outcome)
	ResolveWar(draw, cfg)
	assert.InDelta(t, -10.0, draw.Outcome.TensionChanges["alpha|beta"], 1e-9)
	assert.Empty(t, draw.Outcome.ResourceTransfers)
	assert.Empty(t, draw.Outcome.ReputationChanges)
}

func TestResolveWarStalemate(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(1, 1, 95, "r1", "r2")
	SimulateWar(w, nil, nil, cfg)

	res := ResolveWar(w, cfg)
	require.NotNil(t, res)
	assert.Equal(t, -10.0, res.TensionAdjustment)
	assert.Equal(t, 12, res.TreatyDurationMonths)
	assert.Empty(t, res.TerritorialChanges)
	assert.Nil(t, res.Reparations)
}

func TestResolveWarActiveIsNoOp(t *testing.T) {
	w := activeWar(1, 0, 5)
	assert.Nil(t, ResolveWar(w, DefaultConfig()))
	assert.Nil(t, w.Resolution)
}

func TestCalculateTerritorialChangesFractions(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(0, 0, 10, "r1", "r2", "r3", "r4")

	conquest := CalculateTerritorialChanges("alpha", "beta", w, OutcomeConquest, cfg)
	assert.Len(t, conquest, 4)
	for _, tc := range conquest {
		assert.Equal(t, "alpha", tc.NewController)
		assert.Equal(t, "beta", tc.OldController)
		assert.Equal(t, "war_conquest", tc.ChangeType)
	}

	assert.Len(t, CalculateTerritorialChanges("alpha", "beta", w, OutcomeDecisiveVictory, cfg), 3)
	assert.Len(t, CalculateTerritorialChanges("alpha", "beta", w, OutcomeVictory, cfg), 2)
	assert.Empty(t, CalculateTerritorialChanges("alpha", "beta", w, OutcomeCeasefire, cfg))
	assert.Empty(t, CalculateTerritorialChanges("", "", w, OutcomeConquest, cfg))
}

func TestCalculatePopulationImpact(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(5, 2, 40)

	impact := CalculatePopulationImpact("alpha", "beta", w, OutcomeDecisiveVictory, cfg)
	assert.Less(t, impact.Casualties["alpha"], impact.Casualties["beta"])
	assert.Positive(t, impact.Refugees["beta"])
	assert.Empty(t, impact.Refugees["alpha"])
	assert.Negative(t, impact.PopulationChanges["beta"])

	// Ordinary victory drives no refugee wave.
	impact = CalculatePopulationImpact("alpha", "beta", w, OutcomeVictory, cfg)
	assert.Empty(t, impact.Refugees)

	// No winner means no computed impact.
	impact = CalculatePopulationImpact("", "", w, OutcomeStalemate, cfg)
	assert.Empty(t, impact.Casualties)
}

func TestCalculateCulturalImpact(t *testing.T) {
	cfg := DefaultConfig()
	w := activeWar(0, 0, 30, "r1", "r2")

	impact := CalculateCulturalImpact("alpha", "beta", w, OutcomeDecisiveVictory, cfg)
	require.Len(t, impact.CulturalShifts, 2)
	assert.Equal(t, 0.6, impact.CulturalShifts["r1"].WinnerInfluence)
	assert.Contains(t, impact.LanguageChanges, "r1")
	assert.InDelta(t, 1.2, impact.InfluenceChanges["alpha"], 1e-9)
	assert.InDelta(t, -1.2, impact.InfluenceChanges["beta"], 1e-9)

	// Below the 0.5 threshold language holds.
	impact = CalculateCulturalImpact("alpha", "beta", w, OutcomeVictory, cfg)
	assert.Equal(t, 0.3, impact.CulturalShifts["r1"].WinnerInfluence)
	assert.Empty(t, impact.LanguageChanges)
	assert.Empty(t, impact.TraditionLosses)

	// Stalemates leave culture untouched.
	impact = CalculateCulturalImpact("", "", w, OutcomeStalemate, cfg)
	assert.Empty(t, impact.CulturalShifts)
}
