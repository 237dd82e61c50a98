package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/conflict-sim/internal/diplomacy"
	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
	"github.com/talgya/conflict-sim/internal/tension"
	"github.com/talgya/conflict-sim/internal/war"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFactionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	factions := faction.SeedFactions()

	require.NoError(t, db.SaveFactions(factions))
	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	require.Len(t, loaded, len(factions))

	byID := faction.Index(loaded)
	for _, f := range factions {
		got := byID[f.ID]
		require.NotNil(t, got, "faction %s missing after reload", f.ID)
		assert.Equal(t, f.Name, got.Name)
		assert.Equal(t, f.MilitaryStrength, got.MilitaryStrength)
		assert.Equal(t, f.Traits, got.Traits)
		assert.Equal(t, f.Resources, got.Resources)
	}
}

func TestSaveFactionsReplacesPriorState(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveFactions(faction.SeedFactions()))
	require.NoError(t, db.SaveFactions([]*faction.Faction{{ID: "solo", Name: "Solo"}}))

	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "solo", loaded[0].ID)
}

func TestRegionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	regions := []*faction.Region{
		{
			ID:           "r1",
			Name:         "Borderlands",
			TerrainType:  "hills",
			ControllerID: "alpha",
			Stability:    0.62,
			Population:   42000,
			Claims:       map[string]float64{"alpha": 80, "beta": 25},
			Resources:    map[string]float64{"gold": 700, "food": 300},
		},
		{
			ID:          "r2",
			Name:        "Mirrormere",
			TerrainType: "coast",
			Stability:   0.9,
			Population:  9000,
			Claims:      map[string]float64{},
			Resources:   map[string]float64{},
		},
	}

	require.NoError(t, db.SaveRegions(regions))
	loaded, err := db.LoadRegions()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byID := faction.IndexRegions(loaded)
	r := byID["r1"]
	require.NotNil(t, r)
	assert.Equal(t, "hills", r.TerrainType)
	assert.Equal(t, "alpha", r.ControllerID)
	assert.Equal(t, 0.62, r.Stability)
	assert.Equal(t, 42000, r.Population)
	assert.Equal(t, regions[0].Claims, r.Claims)
	assert.Equal(t, regions[0].Resources, r.Resources)
}

func TestTensionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	tm := tension.NewManager(tension.DefaultConfig())
	tm.ModifyTension("r1", "alpha", "beta", 64, "test")
	tm.ModifyTension("r1", "alpha", "gamma", -20, "test")
	tm.ModifyTension("r2", "beta", "gamma", 12, "test")

	require.NoError(t, db.SaveTensions(tm))

	restored := tension.NewManager(tension.DefaultConfig())
	require.NoError(t, db.LoadTensions(restored))

	assert.Equal(t, 64.0, restored.GetFactionTension("r1", "alpha", "beta"))
	assert.Equal(t, -20.0, restored.GetFactionTension("r1", "gamma", "alpha"))
	assert.Equal(t, 12.0, restored.GetFactionTension("r2", "beta", "gamma"))
}

func TestWarRoundTrip(t *testing.T) {
	db := openTestDB(t)

	wm := war.NewManager(war.DefaultConfig(), entropy.NewFixed(0.99))
	w, err := wm.DeclareWar("alpha", "beta", []string{"r1"})
	require.NoError(t, err)
	_, err = wm.AdvanceWarDay(w.ID, nil, nil)
	require.NoError(t, err)

	ended, err := wm.DeclareWar("alpha", "gamma", nil)
	require.NoError(t, err)
	_, err = wm.EndWar(ended.ID, war.OutcomeCeasefire, "")
	require.NoError(t, err)

	require.NoError(t, db.SaveWars(wm, []string{"alpha", "beta", "gamma"}))

	restored := war.NewManager(war.DefaultConfig(), entropy.NewFixed(0.99))
	require.NoError(t, db.LoadWars(restored))

	got := restored.GetWar(w.ID)
	require.NotNil(t, got)
	assert.Equal(t, w.Day, got.Day)
	assert.True(t, restored.AtWar("alpha", "beta"))

	// The ceasefire stays sealed and leaves the pair free.
	assert.NotNil(t, restored.GetWar(ended.ID))
	assert.False(t, restored.AtWar("alpha", "gamma"))
}

func TestSaveDiplomacyAndMeta(t *testing.T) {
	db := openTestDB(t)

	dm := diplomacy.NewManager(diplomacy.DefaultConfig(), entropy.NewFixed(0.5))
	_, err := dm.BrokerPeace("war_1", "gamma", "alpha", "beta", nil, nil, 0.5, 0.5)
	require.NoError(t, err)
	_, err = dm.ApplyEconomicSanctions("alpha", "beta", diplomacy.SanctionTradeEmbargo, 0.6, 90, "rivalry", nil, nil)
	require.NoError(t, err)
	dm.RecordDiplomaticEvent("war_declared", []string{"alpha", "beta"}, nil)

	require.NoError(t, db.SaveDiplomacy(dm))

	var attempts, sanctions, events int
	require.NoError(t, db.conn.Get(&attempts, "SELECT COUNT(*) FROM peace_attempts"))
	require.NoError(t, db.conn.Get(&sanctions, "SELECT COUNT(*) FROM sanctions"))
	require.NoError(t, db.conn.Get(&events, "SELECT COUNT(*) FROM diplomatic_events"))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, sanctions)
	assert.Equal(t, 1, events)
}

func TestDiplomacyRoundTripKeepsSettledRecords(t *testing.T) {
	db := openTestDB(t)

	dm := diplomacy.NewManager(diplomacy.DefaultConfig(), entropy.NewFixed(0.05, 0.95))

	a := &faction.Faction{
		ID:       "merchants",
		Traits:   map[string]bool{"diplomatic": true, "mercantile": true},
		Ideology: map[string]float64{"authoritarianism": 0.2, "militarism": 0.3},
	}
	b := &faction.Faction{
		ID:       "circle",
		Traits:   map[string]bool{"diplomatic": true, "peaceful": true},
		Ideology: map[string]float64{"authoritarianism": 0.3, "militarism": 0.1},
	}
	alliance, err := dm.FormAlliance("Concord", diplomacy.AllianceTrade, a, b, -30, nil)
	require.NoError(t, err)
	_, err = dm.DissolveAlliance(alliance.ID, "drift")
	require.NoError(t, err)

	pw, err := dm.LaunchProxyWar("sponsor", "target", "proxy", "region_1", diplomacy.ProxyInsurgency, 0.7, 0.6)
	require.NoError(t, err)
	factions := map[string]*faction.Faction{
		"sponsor": {ID: "sponsor", CovertOpsStrength: 90},
		"target":  {ID: "target", CounterIntelligence: 60},
		"proxy":   {ID: "proxy", Influence: map[string]float64{"region_1": 0.8}},
	}
	regions := map[string]*faction.Region{
		"region_1": {ID: "region_1", Stability: 0.3},
	}
	_, err = dm.ResolveProxyWar(pw.ID, factions, regions)
	require.NoError(t, err)

	require.NoError(t, db.SaveDiplomacy(dm))

	restored := diplomacy.NewManager(diplomacy.DefaultConfig(), entropy.NewFixed(0.5))
	require.NoError(t, db.LoadDiplomacy(restored))

	// Settled records survive the round trip with their status intact.
	gotAlliance := restored.GetAlliance(alliance.ID)
	require.NotNil(t, gotAlliance)
	assert.Equal(t, "dissolved", gotAlliance.Status)
	assert.Empty(t, restored.AlliancesOf("merchants"))

	gotProxy := restored.GetProxyWar(pw.ID)
	require.NotNil(t, gotProxy)
	assert.Equal(t, "resolved", gotProxy.Status)
	assert.Empty(t, restored.ActiveProxyWars())
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("last_day", "42"))
	v, err := db.GetMeta("last_day")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	// Upserts replace.
	require.NoError(t, db.SaveMeta("last_day", "43"))
	v, err = db.GetMeta("last_day")
	require.NoError(t, err)
	assert.Equal(t, "43", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestSaveWorldState(t *testing.T) {
	db := openTestDB(t)

	factions := faction.SeedFactions()
	regions := []*faction.Region{{
		ID:          "r1",
		Name:        "Borderlands",
		TerrainType: "plains",
		Claims:      map[string]float64{"the_crown": 70},
		Resources:   map[string]float64{"gold": 100},
	}}
	tm := tension.NewManager(tension.DefaultConfig())
	tm.ModifyTension("r1", "the_crown", "iron_brotherhood", 30, "test")

	err := db.SaveWorldState(WorldState{
		Day:       7,
		Factions:  factions,
		Regions:   regions,
		Tensions:  tm,
		Wars:      war.NewManager(war.DefaultConfig(), entropy.NewFixed(0.99)),
		Diplomacy: diplomacy.NewManager(diplomacy.DefaultConfig(), entropy.NewFixed(0.5)),
	})
	require.NoError(t, err)

	day, err := db.GetMeta("last_day")
	require.NoError(t, err)
	assert.Equal(t, "7", day)

	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	assert.Len(t, loaded, len(factions))
}
