package war

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
)

var (
	// ErrNotFound means the war ID is unknown to the manager.
	ErrNotFound = errors.New("war: not found")
	// ErrInvalidState means the operation does not apply to the war's
	// current lifecycle state.
	ErrInvalidState = errors.New("war: invalid state")
)

// Manager owns the set of declared wars and enforces the single-active-war
// invariant per faction pair. Safe for concurrent use.
type Manager struct {
	cfg Config
	rng entropy.Source

	mu     sync.RWMutex
	wars   map[string]*War
	active map[string]string // canonical pair -> active war ID
}

// NewManager creates a war manager. A nil source falls back to crypto entropy.
func NewManager(cfg Config, rng entropy.Source) *Manager {
	if rng == nil {
		rng = entropy.Crypto{}
	}
	return &Manager{
		cfg:    cfg,
		rng:    rng,
		wars:   make(map[string]*War),
		active: make(map[string]string),
	}
}

// Config returns the immutable tuning the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// DeclareWar opens a war between two factions over the given regions. When an
// active war already exists for the pair the existing war is returned instead
// of a duplicate.
func (m *Manager) DeclareWar(factionA, factionB string, disputedRegions []string) (*War, error) {
	if factionA == "" || factionB == "" || factionA == factionB {
		return nil, fmt.Errorf("%w: need two distinct factions", ErrInvalidState)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(factionA, factionB)
	if id, ok := m.active[key]; ok {
		return m.wars[id], nil
	}

	regions := make([]string, len(disputedRegions))
	copy(regions, disputedRegions)

	w := &War{
		ID:              uuid.NewString(),
		FactionAID:      factionA,
		FactionBID:      factionB,
		StartDate:       time.Now().UTC(),
		Day:             1,
		DisputedRegions: regions,
		Battles:         make([]Battle, 0),
		Raids:           make([]Raid, 0),
		Casualties:      make(map[string]int),
		ControlledPOIs:  make(map[string][]string),
		IsActive:        true,
	}
	m.wars[w.ID] = w
	m.active[key] = w.ID

	slog.Info("war declared",
		"war_id", w.ID,
		"faction_a", factionA,
		"faction_b", factionB,
		"disputed_regions", len(regions),
	)
	return w, nil
}

// DayReport summarizes what one day of war produced.
type DayReport struct {
	WarID       string  `json:"war_id"`
	Day         int     `json:"day"`
	Battle      *Battle `json:"battle,omitempty"`
	Raids       []Raid  `json:"raids,omitempty"`
	ExhaustionA float64 `json:"exhaustion_a"`
	ExhaustionB float64 `json:"exhaustion_b"`
}

// AdvanceWarDay moves an active war forward one simulated day: exhaustion
// accrues, a battle may occur at the configured frequency, and raids may
// follow. Fails on unknown or ended wars.
func (m *Manager) AdvanceWarDay(warID string, factions map[string]*faction.Faction, regions map[string]*faction.Region) (*DayReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wars[warID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, warID)
	}
	if !w.IsActive {
		return nil, fmt.Errorf("%w: war %s has ended", ErrInvalidState, warID)
	}

	w.Day++
	w.ExhaustionA = clamp(w.ExhaustionA+m.cfg.ExhaustionRate, 0, m.cfg.MaxExhaustion)
	w.ExhaustionB = clamp(w.ExhaustionB+m.cfg.ExhaustionRate, 0, m.cfg.MaxExhaustion)

	report := &DayReport{
		WarID:       w.ID,
		Day:         w.Day,
		ExhaustionA: w.ExhaustionA,
		ExhaustionB: w.ExhaustionB,
	}

	attacker := factions[w.FactionAID]
	defender := factions[w.FactionBID]
	if attacker != nil && defender != nil {
		if m.rng.Float() < m.cfg.BattleFrequency {
			// The day's aggressor is random; the declared sides do not fix roles.
			if m.rng.Float() < 0.5 {
				attacker, defender = defender, attacker
			}
			b := EvaluateBattleOutcome(attacker, defender, m.pickBattleground(w, regions), m.cfg, m.rng)
			b.Day = w.Day
			w.Battles = append(w.Battles, b)
			m.recordCasualties(w, b)
			report.Battle = &b

			slog.Debug("battle resolved",
				"war_id", w.ID,
				"day", w.Day,
				"winner", b.WinnerID,
				"region", b.RegionID,
			)
		}
		if m.rng.Float() < m.cfg.RaidFrequency {
			raids := m.generateDailyRaids(w, factions, regions)
			w.Raids = append(w.Raids, raids...)
			report.Raids = raids
		}
	}

	return report, nil
}

// pickBattleground selects one disputed region for the day's battle, nil when
// the war has no resolvable region. Caller holds mu.
func (m *Manager) pickBattleground(w *War, regions map[string]*faction.Region) *faction.Region {
	if len(w.DisputedRegions) == 0 {
		return nil
	}
	id := w.DisputedRegions[m.rng.IntN(len(w.DisputedRegions))]
	return regions[id]
}

// generateDailyRaids produces 1-3 opportunistic raids for the day. Roughly
// 60% succeed; successful raids plunder a sliver of the target region's
// resources. Caller holds mu.
func (m *Manager) generateDailyRaids(w *War, factions map[string]*faction.Faction, regions map[string]*faction.Region) []Raid {
	count := 1 + m.rng.IntN(3)
	raids := make([]Raid, 0, count)
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		attackerID, defenderID := w.FactionAID, w.FactionBID
		if m.rng.Float() < 0.5 {
			attackerID, defenderID = defenderID, attackerID
		}

		raid := Raid{
			AttackerID: attackerID,
			DefenderID: defenderID,
			Success:    m.rng.Float() < 0.6,
			Losses:     5 + m.rng.IntN(20),
			Day:        w.Day,
			Timestamp:  now,
		}
		if len(w.DisputedRegions) > 0 {
			raid.TargetID = w.DisputedRegions[m.rng.IntN(len(w.DisputedRegions))]
		}
		if raid.Success {
			raid.Plunder = make(map[string]float64)
			if region := regions[raid.TargetID]; region != nil {
				for name, amount := range region.Resources {
					raid.Plunder[name] = amount * 0.02
				}
			}
			w.Casualties[defenderID] += raid.Losses
		} else {
			w.Casualties[attackerID] += raid.Losses
		}
		raids = append(raids, raid)
	}
	return raids
}

// recordCasualties converts a battle's loss fractions into headcounts scaled
// by each side's effective strength. Caller holds mu.
func (m *Manager) recordCasualties(w *War, b Battle) {
	w.Casualties[b.AttackerID] += int(b.AttackerStrength * b.AttackerLosses * 10 * m.cfg.AttritionFactor)
	w.Casualties[b.DefenderID] += int(b.DefenderStrength * b.DefenderLosses * 10 * m.cfg.AttritionFactor)
}

// EndWar terminates an active war with the given outcome. Victory-class
// outcomes require a winner that is a belligerent; stalemate-class outcomes
// must not name one.
func (m *Manager) EndWar(warID string, outcomeType OutcomeType, winnerID string) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wars[warID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, warID)
	}
	if !w.IsActive {
		return nil, fmt.Errorf("%w: war %s already ended", ErrInvalidState, warID)
	}

	if outcomeType.requiresWinner() {
		if winnerID == "" {
			return nil, fmt.Errorf("%w: outcome %s requires a winner", ErrInvalidState, outcomeType)
		}
		if !w.Involves(winnerID) {
			return nil, fmt.Errorf("%w: %s is not a belligerent of war %s", ErrInvalidState, winnerID, warID)
		}
	} else if winnerID != "" {
		return nil, fmt.Errorf("%w: outcome %s does not take a winner", ErrInvalidState, outcomeType)
	}

	endWithOutcome(w, outcomeType, winnerID)
	delete(m.active, pairKey(w.FactionAID, w.FactionBID))

	slog.Info("war ended",
		"war_id", w.ID,
		"outcome", outcomeType,
		"winner", winnerID,
		"duration_days", w.Day,
	)
	return w.Outcome, nil
}

// GetWar returns the war by ID, nil when unknown.
func (m *Manager) GetWar(warID string) *War {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wars[warID]
}

// GetWarStatus returns the active war between two factions, order-independent,
// nil when the pair is at peace.
func (m *Manager) GetWarStatus(factionA, factionB string) *War {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.active[pairKey(factionA, factionB)]
	if !ok {
		return nil
	}
	return m.wars[id]
}

// ActiveWars returns every war still in progress.
func (m *Manager) ActiveWars() []*War {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*War, 0, len(m.active))
	for _, id := range m.active {
		out = append(out, m.wars[id])
	}
	return out
}

// WarsInvolving returns all wars, active or ended, with the faction as a party.
func (m *Manager) WarsInvolving(factionID string) []*War {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*War, 0)
	for _, w := range m.wars {
		if w.Involves(factionID) {
			out = append(out, w)
		}
	}
	return out
}

// AtWar reports whether the pair currently has an active war.
func (m *Manager) AtWar(factionA, factionB string) bool {
	return m.GetWarStatus(factionA, factionB) != nil
}

// Restore loads a war and rebuilds the active index for its pair. Used by
// the persistence layer when reloading a world, and after external code
// seals a war outside EndWar.
func (m *Manager) Restore(w *War) {
	if w == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wars[w.ID] = w
	key := pairKey(w.FactionAID, w.FactionBID)
	if w.IsActive {
		m.active[key] = w.ID
	} else if m.active[key] == w.ID {
		delete(m.active, key)
	}
}
