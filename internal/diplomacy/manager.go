package diplomacy

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
	// ErrNotFound means the referenced diplomatic record does not exist.
	ErrNotFound = errors.New("diplomacy: not found")
	// ErrInvalidResponder means the faction is not a party to the attempt.
	ErrInvalidResponder = errors.New("diplomacy: faction is not a party")
	// ErrInvalidState means the operation does not apply to the record's
	// current state.
	ErrInvalidState = errors.New("diplomacy: invalid state")
	// ErrIncompatible means the factions fall below the alliance
	// compatibility floor.
	ErrIncompatible = errors.New("diplomacy: factions are incompatible")
)

// Manager owns all diplomatic state: peace brokering attempts, sanctions,
// alliances, proxy wars, and the event log. Safe for concurrent use.
type Manager struct {
	cfg Config
	rng entropy.Source

	mu        sync.RWMutex
	attempts  map[string]*PeaceBrokeringAttempt
	sanctions map[string]*Sanction
	events    map[string]*DiplomaticEvent
	alliances map[string]*Alliance
	proxyWars map[string]*ProxyWar
}

// NewManager creates a diplomatic manager. A nil source falls back to
// crypto entropy.
func NewManager(cfg Config, rng entropy.Source) *Manager {
	if rng == nil {
		rng = entropy.Crypto{}
	}
	return &Manager{
		cfg:       cfg,
		rng:       rng,
		attempts:  make(map[string]*PeaceBrokeringAttempt),
		sanctions: make(map[string]*Sanction),
		events:    make(map[string]*DiplomaticEvent),
		alliances: make(map[string]*Alliance),
		proxyWars: make(map[string]*ProxyWar),
	}
}

// Config returns the immutable tuning the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

// BrokerPeace opens a mediation attempt for an active war. The attempt
// starts in the proposed state with an acceptance chance estimated from the
// belligerents' exhaustion and the incentives on the table.
func (m *Manager) BrokerPeace(warID, brokerID, factionA, factionB string, terms, incentives map[string]any, exhaustionA, exhaustionB float64) (*PeaceBrokeringAttempt, error) {
	if warID == "" || brokerID == "" || factionA == "" || factionB == "" {
		return nil, fmt.Errorf("%w: war, broker, and both factions are required", ErrInvalidState)
	}
	if incentives == nil {
		incentives = make(map[string]any)
	}
	if terms == nil {
		terms = make(map[string]any)
	}

	now := time.Now().UTC()
	attempt := &PeaceBrokeringAttempt{
		ID:              uuid.NewString(),
		WarID:           warID,
		BrokerFactionID: brokerID,
		FactionAID:      factionA,
		FactionBID:      factionB,
		ProposedTerms:   terms,
		Incentives:      incentives,
		Status:          PeaceProposed,
		Responses:       make(map[string]PeaceResponse),
		CreatedAt:       now,
		History: []HistoryEntry{{
			Action:    "proposed",
			FactionID: brokerID,
			Timestamp: now,
		}},
	}

	pc := m.cfg.Peace
	attempt.AcceptanceChances = map[string]float64{
		factionA: calculateAcceptanceChance(factionA, exhaustionA, terms, incentives, pc),
		factionB: calculateAcceptanceChance(factionB, exhaustionB, terms, incentives, pc),
	}

	m.mu.Lock()
	m.attempts[attempt.ID] = attempt
	m.mu.Unlock()

	slog.Info("peace brokering proposed",
		"attempt_id", attempt.ID,
		"war_id", warID,
		"broker", brokerID,
		"acceptance_chances", attempt.AcceptanceChances,
	)
	return attempt, nil
}

// calculateAcceptanceChance estimates how likely one belligerent is to take
// the brokered terms: its own exhaustion, sweeteners on the table, and how
// far the proposed terms tilt in its favor.
func calculateAcceptanceChance(factionID string, exhaustion float64, terms, incentives map[string]any, pc PeaceConfig) float64 {
	chance := pc.BaseAcceptanceChance
	chance += clamp01(exhaustion) * pc.ExhaustionWeight
	if len(incentives) > 0 {
		chance += pc.IncentiveWeight
	}
	chance += termsFavorability(factionID, terms) * pc.TermsWeight
	return clamp(chance, 0.1, 0.9)
}

// termsFavorability scores proposed terms from one faction's point of view:
// positive when territory or reparations flow its way, negative when they
// flow to the other side.
func termsFavorability(factionID string, terms map[string]any) float64 {
	score := 0.0
	if tc, ok := terms["territory_changes"].(map[string]any); ok {
		if to, ok := tc["to_faction"].(string); ok {
			if to == factionID {
				score += 1.0
			} else {
				score -= 0.5
			}
		}
	}
	if rep, ok := terms["reparations"].(map[string]any); ok {
		if to, ok := rep["to_faction"].(string); ok {
			if to == factionID {
				score += 0.5
			} else {
				score -= 0.25
			}
		}
	}
	return score
}

// RespondToPeaceBrokering records one belligerent's response. Accept from
// both sides settles the attempt; a counter moves it to countered; a reject
// ends it immediately. Only the named belligerents may respond.
func (m *Manager) RespondToPeaceBrokering(attemptID, factionID, response string, counterTerms map[string]any) (*PeaceBrokeringAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[attemptID]
	if !ok {
		return nil, fmt.Errorf("%w: attempt %s", ErrNotFound, attemptID)
	}
	if factionID != attempt.FactionAID && factionID != attempt.FactionBID {
		return nil, fmt.Errorf("%w: %s in attempt %s", ErrInvalidResponder, factionID, attemptID)
	}
	if attempt.Status.terminal() {
		return nil, fmt.Errorf("%w: attempt %s is %s", ErrInvalidState, attemptID, attempt.Status)
	}

	now := time.Now().UTC()
	attempt.Responses[factionID] = PeaceResponse{
		FactionID:    factionID,
		Response:     response,
		CounterTerms: counterTerms,
		Timestamp:    now,
	}
	attempt.History = append(attempt.History, HistoryEntry{
		Action:    "responded",
		FactionID: factionID,
		Detail:    response,
		Timestamp: now,
	})

	switch response {
	case "reject":
		attempt.Status = PeaceRejected
	case "counter":
		attempt.Status = PeaceCountered
	case "accept":
		a, aOK := attempt.Responses[attempt.FactionAID]
		b, bOK := attempt.Responses[attempt.FactionBID]
		if aOK && bOK && a.Response == "accept" && b.Response == "accept" {
			attempt.Status = PeaceAccepted
		}
	default:
		return nil, fmt.Errorf("%w: unknown response %q", ErrInvalidState, response)
	}

	slog.Debug("peace brokering response",
		"attempt_id", attemptID,
		"faction", factionID,
		"response", response,
		"status", attempt.Status,
	)
	return attempt, nil
}

// GetPeaceBrokeringAttempt returns an attempt by ID, nil when unknown.
func (m *Manager) GetPeaceBrokeringAttempt(attemptID string) *PeaceBrokeringAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts[attemptID]
}

// PeaceAttemptsByWar returns all attempts brokered for one war.
func (m *Manager) PeaceAttemptsByWar(warID string) []*PeaceBrokeringAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*PeaceBrokeringAttempt, 0)
	for _, a := range m.attempts {
		if a.WarID == warID {
			out = append(out, a)
		}
	}
	return out
}

// PeaceAttemptsByBroker returns all attempts mediated by one faction.
func (m *Manager) PeaceAttemptsByBroker(brokerID string) []*PeaceBrokeringAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*PeaceBrokeringAttempt, 0)
	for _, a := range m.attempts {
		if a.BrokerFactionID == brokerID {
			out = append(out, a)
		}
	}
	return out
}

// PeaceAttemptsByFaction returns all attempts where the faction is a
// belligerent.
func (m *Manager) PeaceAttemptsByFaction(factionID string) []*PeaceBrokeringAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*PeaceBrokeringAttempt, 0)
	for _, a := range m.attempts {
		if a.FactionAID == factionID || a.FactionBID == factionID {
			out = append(out, a)
		}
	}
	return out
}

// ApplyEconomicSanctions places a sanction on a target faction. Zero
// duration and severity fall back to the configured defaults and an empty
// type applies full sanctions. The impact is computed at application time
// from the issuer's leverage and the target's exposure.
func (m *Manager) ApplyEconomicSanctions(sanctioningID, targetID string, sanctionType SanctionType, severity float64, durationDays int, reason string, issuer, target *faction.Faction) (*Sanction, error) {
	if sanctioningID == "" || targetID == "" || sanctioningID == targetID {
		return nil, fmt.Errorf("%w: need two distinct factions", ErrInvalidState)
	}
	if durationDays <= 0 {
		durationDays = m.cfg.Peace.DefaultSanctionDays
	}
	if severity <= 0 {
		severity = m.cfg.Peace.DefaultSanctionSeverity
	}
	if sanctionType == "" {
		sanctionType = SanctionFull
	}

	s := &Sanction{
		ID:                   uuid.NewString(),
		SanctioningFactionID: sanctioningID,
		TargetFactionID:      targetID,
		Type:                 sanctionType,
		Severity:             severity,
		DurationDays:         durationDays,
		Reason:               reason,
		Status:               "active",
		Impact:               EvaluateSanctionImpact(sanctionType, severity, target, issuer, durationDays),
		CreatedAt:            time.Now().UTC(),
	}

	m.mu.Lock()
	m.sanctions[s.ID] = s
	m.mu.Unlock()

	slog.Info("sanctions applied",
		"sanction_id", s.ID,
		"from", sanctioningID,
		"target", targetID,
		"type", sanctionType,
		"duration_days", durationDays,
	)
	return s, nil
}

// LiftEconomicSanctions lifts an active sanction. Lifting twice is an error.
func (m *Manager) LiftEconomicSanctions(sanctionID, reason string) (*Sanction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sanctions[sanctionID]
	if !ok {
		return nil, fmt.Errorf("%w: sanction %s", ErrNotFound, sanctionID)
	}
	if s.Status != "active" {
		return nil, fmt.Errorf("%w: sanction %s is %s", ErrInvalidState, sanctionID, s.Status)
	}

	s.Status = "lifted"
	s.LiftedAt = time.Now().UTC()
	s.LiftedReason = reason

	slog.Info("sanctions lifted", "sanction_id", sanctionID, "reason", reason)
	return s, nil
}

// GetSanction returns a sanction by ID, nil when unknown.
func (m *Manager) GetSanction(sanctionID string) *Sanction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sanctions[sanctionID]
}

// SanctionsBetween returns sanctions from one faction against another,
// direction-sensitive.
func (m *Manager) SanctionsBetween(sanctioningID, targetID string) []*Sanction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Sanction, 0)
	for _, s := range m.sanctions {
		if s.SanctioningFactionID == sanctioningID && s.TargetFactionID == targetID {
			out = append(out, s)
		}
	}
	return out
}

// SanctionsByFaction returns every sanction the faction imposes or suffers.
func (m *Manager) SanctionsByFaction(factionID string) []*Sanction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Sanction, 0)
	for _, s := range m.sanctions {
		if s.SanctioningFactionID == factionID || s.TargetFactionID == factionID {
			out = append(out, s)
		}
	}
	return out
}

// RecordDiplomaticEvent appends an entry to the diplomatic record.
func (m *Manager) RecordDiplomaticEvent(eventType string, factions []string, data map[string]any) *DiplomaticEvent {
	if data == nil {
		data = make(map[string]any)
	}
	ev := &DiplomaticEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Factions:  append([]string(nil), factions...),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	m.mu.Lock()
	m.events[ev.ID] = ev
	m.mu.Unlock()
	return ev
}

// EventFilter narrows a diplomatic event query. Zero fields match everything.
type EventFilter struct {
	FactionID string
	EventType string
	From      time.Time
	To        time.Time
}

// GetDiplomaticEvents returns events matching the filter, unordered.
func (m *Manager) GetDiplomaticEvents(filter EventFilter) []*DiplomaticEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*DiplomaticEvent, 0)
	for _, ev := range m.events {
		if filter.EventType != "" && ev.EventType != filter.EventType {
			continue
		}
		if filter.FactionID != "" && !containsString(ev.Factions, filter.FactionID) {
			continue
		}
		if !filter.From.IsZero() && ev.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && ev.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// FormAlliance creates a pact between two factions when their compatibility
// clears the configured floor. Terms are generated from the pact type and
// compatibility unless explicitly supplied.
func (m *Manager) FormAlliance(name string, allianceType AllianceType, a, b *faction.Faction, tensionValue float64, terms map[string]any) (*Alliance, error) {
	if a == nil || b == nil || a.ID == b.ID {
		return nil, fmt.Errorf("%w: need two distinct factions", ErrInvalidState)
	}

	compat := EvaluateAllianceCompatibility(a, b, tensionValue, m.cfg.Alliance)
	if compat.OverallScore < m.cfg.Alliance.MinCompatibility {
		return nil, fmt.Errorf("%w: score %.2f below floor %.2f",
			ErrIncompatible, compat.OverallScore, m.cfg.Alliance.MinCompatibility)
	}

	if terms == nil {
		terms = GenerateAllianceTerms(a, b, allianceType, compat.OverallScore, m.cfg.Alliance)
	}
	months := m.cfg.Alliance.DefaultDurationMonths
	if v, ok := terms["duration_months"].(int); ok {
		months = v
	}

	alliance := &Alliance{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           allianceType,
		Members:        []string{a.ID, b.ID},
		Terms:          terms,
		DurationMonths: months,
		CreatedDate:    time.Now().UTC(),
		Status:         "active",
		Stability:      compat.OverallScore,
	}

	m.mu.Lock()
	m.alliances[alliance.ID] = alliance
	m.mu.Unlock()

	slog.Info("alliance formed",
		"alliance_id", alliance.ID,
		"type", allianceType,
		"members", alliance.Members,
		"compatibility", compat.OverallScore,
	)
	return alliance, nil
}

// UpdateAllianceStability records a fresh stability score for an alliance.
func (m *Manager) UpdateAllianceStability(allianceID string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alliances[allianceID]
	if !ok {
		return fmt.Errorf("%w: alliance %s", ErrNotFound, allianceID)
	}
	a.Stability = score
	return nil
}

// DissolveAlliance ends an active alliance. Dissolving twice is an error.
func (m *Manager) DissolveAlliance(allianceID, reason string) (*Alliance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alliances[allianceID]
	if !ok {
		return nil, fmt.Errorf("%w: alliance %s", ErrNotFound, allianceID)
	}
	if a.Status != "active" {
		return nil, fmt.Errorf("%w: alliance %s is %s", ErrInvalidState, allianceID, a.Status)
	}

	a.Status = "dissolved"
	slog.Info("alliance dissolved", "alliance_id", allianceID, "reason", reason)
	return a, nil
}

// GetAlliance returns an alliance by ID, nil when unknown.
func (m *Manager) GetAlliance(allianceID string) *Alliance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alliances[allianceID]
}

// AlliancesOf returns every active alliance the faction belongs to.
func (m *Manager) AlliancesOf(factionID string) []*Alliance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Alliance, 0)
	for _, a := range m.alliances {
		if a.Status == "active" && a.HasMember(factionID) {
			out = append(out, a)
		}
	}
	return out
}

// LaunchProxyWar opens a sponsored conflict. The proxy group gets a stable
// cover name derived from the region.
func (m *Manager) LaunchProxyWar(sponsorID, targetID, proxyID, regionID string, warType ProxyWarType, fundingLevel, intensity float64) (*ProxyWar, error) {
	if sponsorID == "" || targetID == "" || sponsorID == targetID {
		return nil, fmt.Errorf("%w: need distinct sponsor and target", ErrInvalidState)
	}

	pw := &ProxyWar{
		ID:             uuid.NewString(),
		SponsorID:      sponsorID,
		TargetID:       targetID,
		ProxyID:        proxyID,
		RegionID:       regionID,
		WarType:        warType,
		Status:         "active",
		StartDate:      time.Now().UTC(),
		FundingLevel:   clamp01(fundingLevel),
		Intensity:      clamp01(intensity),
		ProxyGroupName: GenerateProxyGroupName(regionID),
	}

	m.mu.Lock()
	m.proxyWars[pw.ID] = pw
	m.mu.Unlock()

	slog.Info("proxy war launched",
		"proxy_war_id", pw.ID,
		"sponsor", sponsorID,
		"target", targetID,
		"region", regionID,
		"war_type", warType,
	)
	return pw, nil
}

// ResolveProxyWar simulates an active proxy war to completion. Resolving a
// finished war is an error.
func (m *Manager) ResolveProxyWar(proxyWarID string, factions map[string]*faction.Faction, regions map[string]*faction.Region) (*ProxyWarResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pw, ok := m.proxyWars[proxyWarID]
	if !ok {
		return nil, fmt.Errorf("%w: proxy war %s", ErrNotFound, proxyWarID)
	}
	if pw.Status != "active" {
		return nil, fmt.Errorf("%w: proxy war %s is %s", ErrInvalidState, proxyWarID, pw.Status)
	}

	result := SimulateProxyWar(pw, factions, regions, m.cfg.ProxyWar, m.rng)

	slog.Info("proxy war resolved",
		"proxy_war_id", pw.ID,
		"outcome", result.Outcome,
		"discovered", result.Discovered,
	)
	return result, nil
}

// GetProxyWar returns a proxy war by ID, nil when unknown.
func (m *Manager) GetProxyWar(proxyWarID string) *ProxyWar {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.proxyWars[proxyWarID]
}

// ActiveProxyWars returns every unresolved proxy war.
func (m *Manager) ActiveProxyWars() []*ProxyWar {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ProxyWar, 0)
	for _, pw := range m.proxyWars {
		if pw.Status == "active" {
			out = append(out, pw)
		}
	}
	return out
}

// AllPeaceAttempts returns every brokering attempt regardless of status.
func (m *Manager) AllPeaceAttempts() []*PeaceBrokeringAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*PeaceBrokeringAttempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		out = append(out, a)
	}
	return out
}

// AllSanctions returns every sanction regardless of status.
func (m *Manager) AllSanctions() []*Sanction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Sanction, 0, len(m.sanctions))
	for _, s := range m.sanctions {
		out = append(out, s)
	}
	return out
}

// AllAlliances returns every alliance regardless of status.
func (m *Manager) AllAlliances() []*Alliance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Alliance, 0, len(m.alliances))
	for _, a := range m.alliances {
		out = append(out, a)
	}
	return out
}

// AllProxyWars returns every proxy war regardless of status.
func (m *Manager) AllProxyWars() []*ProxyWar {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ProxyWar, 0, len(m.proxyWars))
	for _, pw := range m.proxyWars {
		out = append(out, pw)
	}
	return out
}

// RestorePeaceAttempt reinstates a previously persisted attempt.
func (m *Manager) RestorePeaceAttempt(a *PeaceBrokeringAttempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
}

// RestoreSanction reinstates a previously persisted sanction.
func (m *Manager) RestoreSanction(s *Sanction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sanctions[s.ID] = s
}

// RestoreAlliance reinstates a previously persisted alliance.
func (m *Manager) RestoreAlliance(a *Alliance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alliances[a.ID] = a
}

// RestoreProxyWar reinstates a previously persisted proxy war.
func (m *Manager) RestoreProxyWar(pw *ProxyWar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proxyWars[pw.ID] = pw
}

// RestoreEvent reinstates a previously persisted diplomatic event.
func (m *Manager) RestoreEvent(ev *DiplomaticEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
