// Simulation ties together the conflict systems and runs them each day.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/conflict-sim/internal/diplomacy"
	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
	"github.com/talgya/conflict-sim/internal/tension"
	"github.com/talgya/conflict-sim/internal/war"
)

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	Factions     []*faction.Faction
	FactionIndex map[string]*faction.Faction
	Regions      []*faction.Region
	RegionIndex  map[string]*faction.Region

	Tensions  *tension.Manager
	Wars      *war.Manager
	Diplomacy *diplomacy.Manager

	Events  []Event // Recent events (ring buffer in production)
	LastDay uint64  // Most recent day processed

	rng entropy.Source

	// Statistics tracked per day.
	Stats SimStats
}

// CurrentDay returns the most recently processed day number.
func (s *Simulation) CurrentDay() uint64 {
	return s.LastDay
}

// Event is a notable occurrence in the world.
type Event struct {
	Day         uint64 `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"` // "war", "battle", "diplomacy", "tension", etc.
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	ActiveWars      int     `json:"active_wars"`
	TotalBattles    int     `json:"total_battles"`
	TotalRaids      int     `json:"total_raids"`
	TotalCasualties int     `json:"total_casualties"`
	ActiveSanctions int     `json:"active_sanctions"`
	AvgTension      float64 `json:"avg_tension"`
}

// NewSimulation creates a Simulation from generated components.
func NewSimulation(factions []*faction.Faction, regions []*faction.Region, rng entropy.Source) *Simulation {
	if rng == nil {
		rng = entropy.Crypto{}
	}

	sim := &Simulation{
		Factions:     factions,
		FactionIndex: faction.Index(factions),
		Regions:      regions,
		RegionIndex:  faction.IndexRegions(regions),
		Tensions:     tension.NewManager(tension.DefaultConfig()),
		Wars:         war.NewManager(war.DefaultConfig(), rng),
		Diplomacy:    diplomacy.NewManager(diplomacy.DefaultConfig(), rng),
		rng:          rng,
	}
	sim.seedInitialTensions()
	sim.updateStats()
	return sim
}

// seedInitialTensions derives starting tension from overlapping claims.
// Factions contesting the same ground start in rivalry territory.
func (s *Simulation) seedInitialTensions() {
	for _, r := range s.Regions {
		claimants := make([]string, 0, len(r.Claims))
		for id := range r.Claims {
			claimants = append(claimants, id)
		}
		for i := 0; i < len(claimants); i++ {
			for j := i + 1; j < len(claimants); j++ {
				base := 20 + s.rng.Float()*25
				s.Tensions.ModifyTension(r.ID, claimants[i], claimants[j], base, "overlapping claims")
			}
		}
	}
}

// TickDay runs the daily conflict pipeline: tension decay, escalation
// checks, war advancement, resolution, and occasional diplomacy.
func (s *Simulation) TickDay(day uint64) {
	s.LastDay = day

	s.Tensions.DecayAll(1)
	s.checkEscalations(day)
	s.advanceWars(day)
	s.resolveEndedWars(day)
	s.runDiplomacy(day)
	s.updateStats()
}

// TickWeek reviews standing alliances and logs the weekly summary.
func (s *Simulation) TickWeek(day uint64) {
	s.reviewAlliances(day)

	slog.Info("weekly report",
		"day", day,
		"time", SimTime(day),
		"active_wars", s.Stats.ActiveWars,
		"battles", s.Stats.TotalBattles,
		"casualties", s.Stats.TotalCasualties,
		"avg_tension", fmt.Sprintf("%.1f", s.Stats.AvgTension),
	)
}

// checkEscalations looks for pairs hot enough to fight. Tension at the cap
// forces war; hostile pairs roll against their computed war chance.
func (s *Simulation) checkEscalations(day uint64) {
	cfg := s.Wars.Config()
	for _, r := range s.Regions {
		for _, rec := range s.Tensions.Records(r.ID) {
			a, b := rec.Pair.A, rec.Pair.B
			if s.Wars.AtWar(a, b) {
				continue
			}

			level := tension.Classify(rec.Value)
			forced := level == tension.LevelWar
			rolled := false
			if !forced && level == tension.LevelHostile {
				fa, fb := s.FactionIndex[a], s.FactionIndex[b]
				var traitsA, traitsB map[string]bool
				if fa != nil {
					traitsA = fa.Traits
				}
				if fb != nil {
					traitsB = fb.Traits
				}
				chance := war.CalculateWarChances(rec.Value, traitsA, traitsB, cfg)
				// A daily roll at the full chance would make war near-certain
				// within a week, so scale it down.
				rolled = s.rng.Float() < chance*0.1
			}
			if !forced && !rolled {
				continue
			}

			disputed := war.CalculateDisputedRegions(a, b, s.Regions, cfg)
			w, err := s.Wars.DeclareWar(a, b, disputed)
			if err != nil {
				slog.Warn("war declaration failed", "error", err)
				continue
			}
			s.record(day, fmt.Sprintf("war declared between %s and %s over %d regions", a, b, len(disputed)), "war")
			s.Diplomacy.RecordDiplomaticEvent("war_declared", []string{a, b}, map[string]any{
				"war_id":  w.ID,
				"tension": rec.Value,
			})
		}
	}
}

// advanceWars moves every active war forward one day and feeds its battles
// back into regional tension.
func (s *Simulation) advanceWars(day uint64) {
	for _, w := range s.Wars.ActiveWars() {
		report, err := s.Wars.AdvanceWarDay(w.ID, s.FactionIndex, s.RegionIndex)
		if err != nil {
			slog.Warn("war advance failed", "war_id", w.ID, "error", err)
			continue
		}

		if report.Battle != nil {
			b := report.Battle
			s.record(day, fmt.Sprintf("battle in %s, %s prevails", b.RegionID, b.WinnerID), "battle")
			if b.RegionID != "" {
				s.Tensions.CalculateEventImpact(b.RegionID, "battle", 2.0,
					[]tension.PairKey{tension.NewPairKey(w.FactionAID, w.FactionBID)}, "battle fallout")

				if region := s.RegionIndex[b.RegionID]; region != nil {
					s.applyResourceChanges(war.CalculateResourceChanges(*b, region.Resources, s.Wars.Config()))
				}
			}
		}
		s.Stats.TotalRaids += len(report.Raids)
	}
}

// resolveEndedWars runs the war score over every active war and settles the
// ones that cross a threshold, feeding the settlement back into the world.
func (s *Simulation) resolveEndedWars(day uint64) {
	cfg := s.Wars.Config()
	for _, w := range s.Wars.ActiveWars() {
		report := war.SimulateWar(w, s.FactionIndex, s.RegionIndex, cfg)
		if !report.Ended || w.Outcome == nil {
			continue
		}

		// The score pass sealed the war directly, so clear the pair index
		// through the manager's bookkeeping.
		s.Wars.Restore(w)

		res := war.ResolveWar(w, cfg)
		if res == nil {
			continue
		}

		out := w.Outcome
		s.record(day, fmt.Sprintf("war between %s and %s ends in %s", w.FactionAID, w.FactionBID, out.Type), "war")

		// Settlement feeds back into tension everywhere the war was fought.
		for _, regionID := range w.DisputedRegions {
			s.Tensions.ModifyTension(regionID, w.FactionAID, w.FactionBID, res.TensionAdjustment, "war resolution")
		}

		for _, tc := range res.TerritorialChanges {
			if region := s.RegionIndex[tc.RegionID]; region != nil {
				region.ControllerID = tc.NewController
				region.Claims[tc.NewController] = 100
				delete(region.Claims, tc.OldController)
			}
			if w.ControlledPOIs == nil {
				w.ControlledPOIs = make(map[string][]string)
			}
			w.ControlledPOIs[tc.NewController] = append(w.ControlledPOIs[tc.NewController], tc.RegionID)
		}

		if res.Reparations != nil {
			s.transferResources(res.Reparations.FromFaction, res.Reparations.ToFaction, res.Reparations.Resources)
		}

		pop := war.CalculatePopulationImpact(out.WinnerID, out.LoserID, w, out.Type, cfg)
		for _, regionID := range w.DisputedRegions {
			if region := s.RegionIndex[regionID]; region != nil {
				for _, delta := range pop.PopulationChanges {
					region.Population += delta / max(1, len(w.DisputedRegions))
				}
			}
		}

		cultural := war.CalculateCulturalImpact(out.WinnerID, out.LoserID, w, out.Type, cfg)
		for id, delta := range cultural.InfluenceChanges {
			if f := s.FactionIndex[id]; f != nil {
				for _, regionID := range w.DisputedRegions {
					f.Influence[regionID] = clamp01(f.Influence[regionID] + delta/float64(max(1, len(w.DisputedRegions))))
				}
			}
		}

		for id, delta := range out.ReputationChanges {
			if f := s.FactionIndex[id]; f != nil {
				if f.RegionalReputation == nil {
					f.RegionalReputation = make(map[string]float64)
				}
				for _, regionID := range w.DisputedRegions {
					f.RegionalReputation[regionID] = clamp01(f.RegionalReputation[regionID] + delta)
				}
			}
		}

		s.Diplomacy.RecordDiplomaticEvent("war_resolved", []string{w.FactionAID, w.FactionBID}, map[string]any{
			"war_id":  w.ID,
			"outcome": string(out.Type),
			"winner":  out.WinnerID,
		})
	}
}

// runDiplomacy gives the world's powers their daily chance at statecraft:
// brokering peace in exhausting wars, sanctioning rivals, and the
// occasional proxy war.
func (s *Simulation) runDiplomacy(day uint64) {
	// Exhausted belligerents attract mediators.
	for _, w := range s.Wars.ActiveWars() {
		if w.ExhaustionA < 0.5 && w.ExhaustionB < 0.5 {
			continue
		}
		if s.rng.Float() > 0.1 {
			continue
		}
		broker := s.pickOutsider(w.FactionAID, w.FactionBID)
		if broker == "" {
			continue
		}
		attempt, err := s.Diplomacy.BrokerPeace(w.ID, broker, w.FactionAID, w.FactionBID,
			map[string]any{"status_quo": true}, nil, w.ExhaustionA, w.ExhaustionB)
		if err != nil {
			continue
		}
		s.record(day, fmt.Sprintf("%s offers to broker peace between %s and %s", broker, w.FactionAID, w.FactionBID), "diplomacy")

		// Each side consults its own brokered odds.
		for _, id := range []string{w.FactionAID, w.FactionBID} {
			response := "reject"
			if s.rng.Float() < attempt.AcceptanceChances[id] {
				response = "accept"
			}
			updated, err := s.Diplomacy.RespondToPeaceBrokering(attempt.ID, id, response, nil)
			if err != nil {
				break
			}
			if updated.Status == diplomacy.PeaceRejected {
				break
			}
		}
		if a := s.Diplomacy.GetPeaceBrokeringAttempt(attempt.ID); a != nil && a.Status == diplomacy.PeaceAccepted {
			if _, err := s.Wars.EndWar(w.ID, war.OutcomeWhitePeace, ""); err == nil {
				s.record(day, fmt.Sprintf("brokered peace ends the war between %s and %s", w.FactionAID, w.FactionBID), "diplomacy")
				if res := war.ResolveWar(w, s.Wars.Config()); res != nil {
					for _, regionID := range w.DisputedRegions {
						s.Tensions.ModifyTension(regionID, w.FactionAID, w.FactionBID, res.TensionAdjustment, "peace settlement")
					}
				}
			}
		}
	}

	// Rivalries occasionally turn into sanctions or proxy wars; warm pairs
	// occasionally formalize their alignment into a pact.
	for _, r := range s.Regions {
		for _, rec := range s.Tensions.Records(r.ID) {
			level := tension.Classify(rec.Value)
			if level == tension.LevelFriendly || level == tension.LevelAlliance {
				if s.rng.Float() < 0.01 {
					s.maybeFormAlliance(day, rec)
				}
				continue
			}
			if level != tension.LevelRivalry {
				continue
			}
			if s.rng.Float() < 0.02 {
				issuer, target := s.FactionIndex[rec.Pair.A], s.FactionIndex[rec.Pair.B]
				if sn, err := s.Diplomacy.ApplyEconomicSanctions(rec.Pair.A, rec.Pair.B,
					diplomacy.SanctionTradeEmbargo, 0, 0, "regional rivalry", issuer, target); err == nil {
					s.record(day, fmt.Sprintf("%s sanctions %s", rec.Pair.A, rec.Pair.B), "diplomacy")
					s.Tensions.ModifyTension(r.ID, rec.Pair.A, rec.Pair.B, sn.Impact.TensionChange, "sanctions imposed")
				}
			}
			if s.rng.Float() < 0.01 {
				proxy := s.pickOutsider(rec.Pair.A, rec.Pair.B)
				if proxy == "" {
					continue
				}
				if pw, err := s.Diplomacy.LaunchProxyWar(rec.Pair.A, rec.Pair.B, proxy, r.ID,
					diplomacy.ProxyInsurgency, 0.5+s.rng.Float()*0.4, 0.3+s.rng.Float()*0.4); err == nil {
					s.record(day, fmt.Sprintf("%s rises in %s", pw.ProxyGroupName, r.Name), "diplomacy")
				}
			}
		}
	}

	// Long-running proxy wars come to a head.
	for _, pw := range s.Diplomacy.ActiveProxyWars() {
		if s.rng.Float() > 0.05 {
			continue
		}
		result, err := s.Diplomacy.ResolveProxyWar(pw.ID, s.FactionIndex, s.RegionIndex)
		if err != nil {
			continue
		}
		s.record(day, fmt.Sprintf("proxy war in %s resolves: %s", pw.RegionID, result.Outcome), "diplomacy")
		if result.Discovered {
			// An exposed sponsor pays in tension with the target.
			s.Tensions.CalculateEventImpact(pw.RegionID, "treaty_violation", 2.0,
				[]tension.PairKey{tension.NewPairKey(pw.SponsorID, pw.TargetID)}, "sponsorship exposed")
		}
	}
}

// maybeFormAlliance turns a warm tension record into a standing pact. Pairs
// deep in alliance territory sign a military pact; merely friendly ones
// settle for trade terms.
func (s *Simulation) maybeFormAlliance(day uint64, rec tension.Record) {
	a, b := rec.Pair.A, rec.Pair.B
	if s.allied(a, b) {
		return
	}
	fa, fb := s.FactionIndex[a], s.FactionIndex[b]
	if fa == nil || fb == nil {
		return
	}

	allianceType := diplomacy.AllianceTrade
	if tension.Classify(rec.Value) == tension.LevelAlliance {
		allianceType = diplomacy.AllianceMilitary
	}
	name := fmt.Sprintf("%s-%s accord", fa.Name, fb.Name)
	alliance, err := s.Diplomacy.FormAlliance(name, allianceType, fa, fb, rec.Value, nil)
	if err != nil {
		return
	}
	s.record(day, fmt.Sprintf("%s and %s sign the %s", fa.Name, fb.Name, alliance.Name), "diplomacy")
}

// allied reports whether the two factions already share an active alliance.
func (s *Simulation) allied(a, b string) bool {
	for _, al := range s.Diplomacy.AlliancesOf(a) {
		if al.HasMember(b) {
			return true
		}
	}
	return false
}

// reviewAlliances rescores every active pact and dissolves the ones that
// have frayed past the configured threshold. Runs weekly.
func (s *Simulation) reviewAlliances(day uint64) {
	cfg := s.Diplomacy.Config().Alliance
	seen := make(map[string]bool)
	for _, f := range s.Factions {
		for _, a := range s.Diplomacy.AlliancesOf(f.ID) {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true

			members := make([]*faction.Faction, 0, len(a.Members))
			for _, id := range a.Members {
				if m := s.FactionIndex[id]; m != nil {
					members = append(members, m)
				}
			}
			report := diplomacy.EvaluateAllianceStability(a, members, s.maxPairTension(a.Members), time.Now().UTC(), cfg)
			s.Diplomacy.UpdateAllianceStability(a.ID, report.StabilityScore)

			if report.StabilityScore < cfg.StabilityThreshold {
				if _, err := s.Diplomacy.DissolveAlliance(a.ID, "stability collapse"); err == nil {
					s.record(day, fmt.Sprintf("the %s dissolves", a.Name), "diplomacy")
				}
			}
		}
	}
}

// maxPairTension is the hottest tension between any two of the factions
// across all regions.
func (s *Simulation) maxPairTension(members []string) float64 {
	worst := 0.0
	first := true
	for _, r := range s.Regions {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				v := s.Tensions.GetFactionTension(r.ID, members[i], members[j])
				if first || v > worst {
					worst = v
					first = false
				}
			}
		}
	}
	return worst
}

// pickOutsider returns a random faction that is neither a nor b, empty when
// none exists.
func (s *Simulation) pickOutsider(a, b string) string {
	candidates := make([]string, 0, len(s.Factions))
	for _, f := range s.Factions {
		if f.ID != a && f.ID != b {
			candidates = append(candidates, f.ID)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// applyResourceChanges applies per-faction resource deltas from a battle.
func (s *Simulation) applyResourceChanges(changes map[string]map[string]float64) {
	for factionID, deltas := range changes {
		f := s.FactionIndex[factionID]
		if f == nil {
			continue
		}
		for name, delta := range deltas {
			f.Resources[name] += delta
			if f.Resources[name] < 0 {
				f.Resources[name] = 0
			}
		}
	}
}

// transferResources moves reparations from one stockpile to another, capped
// at what the payer actually holds.
func (s *Simulation) transferResources(fromID, toID string, resources map[string]float64) {
	from, to := s.FactionIndex[fromID], s.FactionIndex[toID]
	if from == nil || to == nil {
		return
	}
	for name, amount := range resources {
		paid := amount
		if from.Resources[name] < paid {
			paid = from.Resources[name]
		}
		from.Resources[name] -= paid
		to.Resources[name] += paid
	}
}

// record appends an event to the log.
func (s *Simulation) record(day uint64, description, category string) {
	s.Events = append(s.Events, Event{
		Day:         day,
		Description: description,
		Category:    category,
	})
}

// updateStats recomputes aggregate statistics.
func (s *Simulation) updateStats() {
	stats := SimStats{TotalRaids: s.Stats.TotalRaids}

	stats.ActiveWars = len(s.Wars.ActiveWars())

	battles, casualties := 0, 0
	for _, f := range s.Factions {
		for _, w := range s.Wars.WarsInvolving(f.ID) {
			if w.FactionAID != f.ID {
				continue // Count each war once.
			}
			battles += len(w.Battles)
			for _, c := range w.Casualties {
				casualties += c
			}
		}
	}
	stats.TotalBattles = battles
	stats.TotalCasualties = casualties

	var sum float64
	var count int
	for _, r := range s.Regions {
		for _, rec := range s.Tensions.Records(r.ID) {
			sum += rec.Value
			count++
		}
	}
	if count > 0 {
		stats.AvgTension = sum / float64(count)
	}

	for _, f := range s.Factions {
		for _, sn := range s.Diplomacy.SanctionsByFaction(f.ID) {
			if sn.Status == "active" && sn.SanctioningFactionID == f.ID {
				stats.ActiveSanctions++
			}
		}
	}

	s.Stats = stats
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
