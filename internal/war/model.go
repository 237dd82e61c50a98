package war

import "time"

// OutcomeType classifies how a war ended. Conquest is the total-annexation
// case; every threshold table in this package keys on these values.
type OutcomeType string

const (
	OutcomeConquest        OutcomeType = "conquest"
	OutcomeDecisiveVictory OutcomeType = "decisive_victory"
	OutcomeVictory         OutcomeType = "victory"
	OutcomeStalemate       OutcomeType = "stalemate"
	OutcomeCeasefire       OutcomeType = "ceasefire"
	OutcomeWhitePeace      OutcomeType = "white_peace"
)

// requiresWinner reports whether the outcome type is meaningless without a victor.
func (t OutcomeType) requiresWinner() bool {
	switch t {
	case OutcomeConquest, OutcomeDecisiveVictory, OutcomeVictory:
		return true
	}
	return false
}

// Battle is one resolved engagement. Loss fields are fractions in [0.05, 0.7].
type Battle struct {
	WinnerID         string    `json:"winner_id"`
	AttackerID       string    `json:"attacker_id"`
	DefenderID       string    `json:"defender_id"`
	RegionID         string    `json:"region_id"`
	TerrainType      string    `json:"terrain_type"`
	AttackerStrength float64   `json:"attacker_strength"`
	DefenderStrength float64   `json:"defender_strength"`
	AttackerLosses   float64   `json:"attacker_losses"`
	DefenderLosses   float64   `json:"defender_losses"`
	Day              int       `json:"day"`
	Timestamp        time.Time `json:"timestamp"`
}

// Raid is a small opportunistic strike generated alongside battles.
type Raid struct {
	AttackerID string             `json:"attacker_id"`
	DefenderID string             `json:"defender_id"`
	TargetID   string             `json:"target_id"`
	Success    bool               `json:"success"`
	Losses     int                `json:"losses"`
	Plunder    map[string]float64 `json:"plunder,omitempty"`
	Day        int                `json:"day"`
	Timestamp  time.Time          `json:"timestamp"`
}

// CallToArmsResponse records an ally's answer to a call to arms.
type CallToArmsResponse struct {
	AllianceID string    `json:"alliance_id"`
	FactionID  string    `json:"faction_id"`
	Joined     bool      `json:"joined"`
	Chance     float64   `json:"chance"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcome is the immutable terminal record attached to an ended war.
type Outcome struct {
	Type               OutcomeType         `json:"type"`
	WinnerID           string              `json:"winner_id,omitempty"`
	LoserID            string              `json:"loser_id,omitempty"`
	TerritorialChanges []TerritorialChange `json:"territorial_changes"`
	ResourceTransfers  map[string]float64  `json:"resource_transfers"`
	ReputationChanges  map[string]float64  `json:"reputation_changes"`
	TensionChanges     map[string]float64  `json:"tension_changes"`
	Casualties         map[string]int      `json:"casualties"`
	DurationDays       int                 `json:"duration_days"`
}

// TerritorialChange reassigns one region after a war.
type TerritorialChange struct {
	RegionID      string `json:"region_id"`
	NewController string `json:"new_controller"`
	OldController string `json:"old_controller"`
	ChangeType    string `json:"change_type"`
}

// War is the evolving state of one declared conflict.
type War struct {
	ID              string               `json:"id"`
	FactionAID      string               `json:"faction_a_id"`
	FactionBID      string               `json:"faction_b_id"`
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date,omitempty"`
	Day             int                  `json:"day"`
	DisputedRegions []string             `json:"disputed_regions"`
	Battles         []Battle             `json:"battles"`
	Raids           []Raid               `json:"raids"`
	ExhaustionA     float64              `json:"exhaustion_a"`
	ExhaustionB     float64              `json:"exhaustion_b"`
	Casualties      map[string]int       `json:"casualties"`
	ControlledPOIs  map[string][]string  `json:"controlled_pois"`
	CallToArms      []CallToArmsResponse `json:"call_to_arms"`
	IsActive        bool                 `json:"is_active"`
	Outcome         *Outcome             `json:"outcome,omitempty"`

	// Resolution is filled by ResolveWar once the outcome is set.
	Resolution *Resolution `json:"resolution,omitempty"`
}

// Involves reports whether the faction is a belligerent.
func (w *War) Involves(factionID string) bool {
	return w.FactionAID == factionID || w.FactionBID == factionID
}

// OpponentOf returns the other belligerent, empty if the faction is not a party.
func (w *War) OpponentOf(factionID string) string {
	switch factionID {
	case w.FactionAID:
		return w.FactionBID
	case w.FactionBID:
		return w.FactionAID
	}
	return ""
}

// Victories counts battle wins for a faction.
func (w *War) Victories(factionID string) int {
	n := 0
	for _, b := range w.Battles {
		if b.WinnerID == factionID {
			n++
		}
	}
	return n
}

// ElapsedDays is the simulated length of the war so far.
func (w *War) ElapsedDays() int {
	return w.Day
}

// Resolution is the post-war settlement computed by ResolveWar.
type Resolution struct {
	TensionAdjustment    float64             `json:"tension_adjustment"`
	TerritorialChanges   []TerritorialChange `json:"territorial_changes"`
	Reparations          *Reparations        `json:"reparations,omitempty"`
	TreatyDurationMonths int                 `json:"treaty_duration_months"`
}

// Reparations is a one-way post-war transfer.
type Reparations struct {
	FromFaction string             `json:"from_faction"`
	ToFaction   string             `json:"to_faction"`
	Resources   map[string]float64 `json:"resources"`
}
