package war

import (
	"time"

	"github.com/talgya/conflict-sim/internal/faction"
)

// territoryTransferFractions is the share of disputed regions handed to the
// winner per outcome type. Missing types transfer nothing.
var territoryTransferFractions = map[OutcomeType]float64{
	OutcomeConquest:        1.0,
	OutcomeDecisiveVictory: 0.8,
	OutcomeVictory:         0.5,
}

// tensionAdjustments is the post-war tension delta per outcome type. More
// decisive outcomes settle the question harder.
var tensionAdjustments = map[OutcomeType]float64{
	OutcomeConquest:        -40,
	OutcomeDecisiveVictory: -30,
	OutcomeVictory:         -20,
	OutcomeStalemate:       -10,
	OutcomeCeasefire:       -10,
	OutcomeWhitePeace:      -10,
}

// treatyDurations is the enforced peace, in months, per outcome type.
var treatyDurations = map[OutcomeType]int{
	OutcomeConquest:        72,
	OutcomeDecisiveVictory: 60,
	OutcomeVictory:         36,
	OutcomeStalemate:       12,
	OutcomeCeasefire:       12,
	OutcomeWhitePeace:      12,
}

// culturalInfluence is the winner's cultural weight per disputed region.
// Influence at or above 0.5 also flips the region's primary language.
var culturalInfluence = map[OutcomeType]float64{
	OutcomeConquest:        1.0,
	OutcomeDecisiveVictory: 0.6,
	OutcomeVictory:         0.3,
}

// SimulationReport summarizes a war-score pass over a war.
type SimulationReport struct {
	WarID             string    `json:"war_id"`
	FactionAVictories int       `json:"faction_a_victories"`
	FactionBVictories int       `json:"faction_b_victories"`
	WarScore          float64   `json:"war_score"`
	Ended             bool      `json:"ended"`
	LastUpdated       time.Time `json:"last_updated"`
}

// SimulateWar recomputes the aggregate war score from battle victories and
// ends the war when a threshold is crossed. The score is the leading side's
// weighted share of battle wins on a 0–100 scale, signed positive when
// faction A leads. Battles fought in disputed regions weigh half again as
// much as skirmishes elsewhere. Already-ended wars pass through unchanged.
func SimulateWar(w *War, factions map[string]*faction.Faction, regions map[string]*faction.Region, cfg Config) SimulationReport {
	report := SimulationReport{LastUpdated: time.Now().UTC()}
	if w == nil {
		return report
	}
	report.WarID = w.ID

	report.FactionAVictories = w.Victories(w.FactionAID)
	report.FactionBVictories = w.Victories(w.FactionBID)

	if !w.IsActive || w.Outcome != nil {
		report.Ended = true
		return report
	}

	disputed := make(map[string]bool, len(w.DisputedRegions))
	for _, id := range w.DisputedRegions {
		disputed[id] = true
	}

	var weightA, weightB float64
	for _, b := range w.Battles {
		weight := 1.0
		if disputed[b.RegionID] {
			weight = 1.5
		}
		switch b.WinnerID {
		case w.FactionAID:
			weightA += weight
		case w.FactionBID:
			weightB += weight
		}
	}

	total := weightA + weightB
	if total > 0 {
		leaderShare := weightA / total * 100
		if weightB > weightA {
			leaderShare = weightB / total * 100
		}
		if weightA >= weightB {
			report.WarScore = leaderShare
		} else {
			report.WarScore = -leaderShare
		}

		if len(w.Battles) >= cfg.MinBattlesForVerdict {
			winner := w.FactionAID
			if weightB > weightA {
				winner = w.FactionBID
			}
			switch {
			case leaderShare >= cfg.DecisiveVictoryThreshold:
				endWithOutcome(w, OutcomeDecisiveVictory, winner)
				report.Ended = true
				return report
			case leaderShare >= cfg.VictoryThreshold:
				endWithOutcome(w, OutcomeVictory, winner)
				report.Ended = true
				return report
			}
		}
	}

	if w.ElapsedDays() > cfg.StalemateDuration {
		endWithOutcome(w, OutcomeStalemate, "")
		report.Ended = true
	}

	return report
}

// endWithOutcome seals a war in place. Used by SimulateWar's threshold exits;
// external callers go through Manager.EndWar.
func endWithOutcome(w *War, t OutcomeType, winnerID string) {
	loserID := ""
	if winnerID != "" {
		loserID = w.OpponentOf(winnerID)
	}
	w.Outcome = &Outcome{
		Type:         t,
		WinnerID:     winnerID,
		LoserID:      loserID,
		Casualties:   copyCasualties(w.Casualties),
		DurationDays: w.Day,
	}
	w.IsActive = false
	w.EndDate = time.Now().UTC()
}

// ResolveWar computes the settlement for an ended war: tension adjustment,
// territorial changes, reparations, and treaty duration. It is a no-op
// returning nil when the war is still active or has no outcome.
func ResolveWar(w *War, cfg Config) *Resolution {
	if w == nil || w.IsActive || w.Outcome == nil {
		return nil
	}

	out := w.Outcome
	res := &Resolution{
		TensionAdjustment:    tensionAdjustments[out.Type],
		TerritorialChanges:   CalculateTerritorialChanges(out.WinnerID, out.LoserID, w, out.Type, cfg),
		TreatyDurationMonths: treatyDurations[out.Type],
	}

	if out.WinnerID != "" && out.LoserID != "" {
		factor := 0.0
		switch out.Type {
		case OutcomeConquest:
			factor = 1.0
		case OutcomeDecisiveVictory:
			factor = 0.8
		case OutcomeVictory:
			factor = 0.5
		}
		if factor > 0 {
			res.Reparations = &Reparations{
				FromFaction: out.LoserID,
				ToFaction:   out.WinnerID,
				Resources: map[string]float64{
					"gold":      5000 * factor,
					"materials": 2000 * factor,
				},
			}
		}
	}

	out.TerritorialChanges = res.TerritorialChanges
	out.TensionChanges = map[string]float64{
		pairKey(w.FactionAID, w.FactionBID): res.TensionAdjustment,
	}
	if res.Reparations != nil {
		out.ResourceTransfers = make(map[string]float64, len(res.Reparations.Resources))
		for name, amount := range res.Reparations.Resources {
			out.ResourceTransfers[name] = amount
		}
	}
	if out.WinnerID != "" && out.LoserID != "" {
		// A decisive settlement shifts standing further than a narrow one.
		shift := -tensionAdjustments[out.Type] / 200
		out.ReputationChanges = map[string]float64{
			out.WinnerID: shift,
			out.LoserID:  -shift,
		}
	}

	w.Resolution = res
	return res
}

// CalculateTerritorialChanges transfers a fraction of the disputed regions
// to the winner: all for conquest, 80% for decisive victory, half for an
// ordinary victory, none otherwise. No winner means no changes.
func CalculateTerritorialChanges(winnerID, loserID string, w *War, t OutcomeType, cfg Config) []TerritorialChange {
	changes := make([]TerritorialChange, 0)
	if winnerID == "" || w == nil {
		return changes
	}

	fraction := territoryTransferFractions[t]
	count := int(float64(len(w.DisputedRegions)) * fraction)
	for i := 0; i < count && i < len(w.DisputedRegions); i++ {
		changes = append(changes, TerritorialChange{
			RegionID:      w.DisputedRegions[i],
			NewController: winnerID,
			OldController: loserID,
			ChangeType:    "war_conquest",
		})
	}
	return changes
}

// PopulationImpact aggregates the human cost of a war.
type PopulationImpact struct {
	Casualties        map[string]int `json:"casualties"`
	Refugees          map[string]int `json:"refugees"`
	PopulationChanges map[string]int `json:"population_changes"`
}

// CalculatePopulationImpact scales casualties with war length and battle
// count, keeping the winner's consistently below the loser's. Conquest-class
// outcomes drive refugees out of the losing side.
func CalculatePopulationImpact(winnerID, loserID string, w *War, t OutcomeType, cfg Config) PopulationImpact {
	impact := PopulationImpact{
		Casualties:        make(map[string]int),
		Refugees:          make(map[string]int),
		PopulationChanges: make(map[string]int),
	}
	if winnerID == "" || loserID == "" || w == nil {
		return impact
	}

	base := float64(w.Day)*50*cfg.AttritionFactor + float64(len(w.Battles))*200
	if base < 1 {
		base = 1
	}
	winnerCasualties := int(base * 0.6)
	loserCasualties := int(base)

	impact.Casualties[winnerID] = winnerCasualties
	impact.Casualties[loserID] = loserCasualties
	impact.PopulationChanges[winnerID] = -winnerCasualties
	impact.PopulationChanges[loserID] = -loserCasualties

	if t == OutcomeConquest || t == OutcomeDecisiveVictory {
		refugees := loserCasualties * 2
		impact.Refugees[loserID] = refugees
		impact.PopulationChanges[loserID] -= refugees
	}

	return impact
}

// RegionalShift records the cultural consequence of a war in one region.
type RegionalShift struct {
	DominantCulture string  `json:"dominant_culture"`
	WinnerInfluence float64 `json:"winner_influence"`
}

// CulturalImpact aggregates post-war cultural drift across disputed regions.
type CulturalImpact struct {
	CulturalShifts   map[string]RegionalShift `json:"cultural_shifts"`
	LanguageChanges  map[string]string        `json:"language_changes"`
	TraditionLosses  map[string]float64       `json:"tradition_losses"`
	InfluenceChanges map[string]float64       `json:"influence_changes"`
}

// CalculateCulturalImpact records the winner's influence per disputed region
// (1.0 conquest, 0.6 decisive, 0.3 victory). Influence at or above 0.5 also
// shifts the region's primary language toward the winner's; aggregate
// influence rises for the winner and falls for the loser.
func CalculateCulturalImpact(winnerID, loserID string, w *War, t OutcomeType, cfg Config) CulturalImpact {
	impact := CulturalImpact{
		CulturalShifts:   make(map[string]RegionalShift),
		LanguageChanges:  make(map[string]string),
		TraditionLosses:  make(map[string]float64),
		InfluenceChanges: make(map[string]float64),
	}
	if winnerID == "" || loserID == "" || w == nil {
		return impact
	}

	influence, ok := culturalInfluence[t]
	if !ok || influence <= 0 {
		return impact
	}

	for _, regionID := range w.DisputedRegions {
		impact.CulturalShifts[regionID] = RegionalShift{
			DominantCulture: winnerID,
			WinnerInfluence: influence,
		}
		if influence >= 0.5 {
			impact.LanguageChanges[regionID] = winnerID + "_language"
			impact.TraditionLosses[regionID] = influence * 0.5
		}
		impact.InfluenceChanges[winnerID] += influence
		impact.InfluenceChanges[loserID] -= influence
	}

	return impact
}

func copyCasualties(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
