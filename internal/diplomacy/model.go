// Package diplomacy covers the non-war instruments of faction conflict:
// peace brokering, sanctions, alliances, proxy wars, and the diplomatic
// event log.
package diplomacy

import "time"

// PeaceBrokeringStatus is the lifecycle state of a mediation attempt.
type PeaceBrokeringStatus string

const (
	PeaceProposed  PeaceBrokeringStatus = "proposed"
	PeaceCountered PeaceBrokeringStatus = "countered"
	PeaceAccepted  PeaceBrokeringStatus = "accepted"
	PeaceRejected  PeaceBrokeringStatus = "rejected"
	PeaceExpired   PeaceBrokeringStatus = "expired"
)

// terminal reports whether the status admits no further responses.
func (s PeaceBrokeringStatus) terminal() bool {
	return s == PeaceAccepted || s == PeaceRejected || s == PeaceExpired
}

// PeaceResponse is one belligerent's answer to a brokering attempt.
type PeaceResponse struct {
	FactionID    string         `json:"faction_id"`
	Response     string         `json:"response"` // accept, counter, reject
	CounterTerms map[string]any `json:"counter_terms,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// HistoryEntry is one line in an attempt's audit trail.
type HistoryEntry struct {
	Action    string    `json:"action"`
	FactionID string    `json:"faction_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PeaceBrokeringAttempt is a third party's mediation of an active war.
type PeaceBrokeringAttempt struct {
	ID                string                   `json:"id"`
	WarID             string                   `json:"war_id"`
	BrokerFactionID   string                   `json:"broker_faction_id"`
	FactionAID        string                   `json:"faction_a_id"`
	FactionBID        string                   `json:"faction_b_id"`
	ProposedTerms     map[string]any           `json:"proposed_terms"`
	Incentives        map[string]any           `json:"incentives"`
	Status            PeaceBrokeringStatus     `json:"status"`
	AcceptanceChances map[string]float64       `json:"acceptance_chances"`
	Responses         map[string]PeaceResponse `json:"responses"`
	History           []HistoryEntry           `json:"history"`
	CreatedAt         time.Time                `json:"created_at"`
}

// SanctionType classifies the scope of an economic sanction.
type SanctionType string

const (
	SanctionTradeEmbargo SanctionType = "trade_embargo"
	SanctionMilitary     SanctionType = "military"
	SanctionDiplomatic   SanctionType = "diplomatic"
	SanctionFull         SanctionType = "full"
)

// Sanction is an active or lifted economic measure between two factions.
type Sanction struct {
	ID                   string         `json:"id"`
	SanctioningFactionID string         `json:"sanctioning_faction_id"`
	TargetFactionID      string         `json:"target_faction_id"`
	Type                 SanctionType   `json:"sanction_type"`
	Severity             float64        `json:"severity"`
	DurationDays         int            `json:"duration_days"`
	Reason               string         `json:"reason"`
	Status               string         `json:"status"` // active, lifted, expired
	Impact               SanctionImpact `json:"impact"`
	CreatedAt            time.Time      `json:"created_at"`
	LiftedAt             time.Time      `json:"lifted_at,omitempty"`
	LiftedReason         string         `json:"lifted_reason,omitempty"`
}

// SanctionImpact quantifies what a sanction costs its target across the
// economic, military, and standing channels, plus the tension it adds
// between issuer and target. Impact fields are negative fractions of the
// target's exposed capacity.
type SanctionImpact struct {
	EconomicImpact   float64  `json:"economic_impact"`
	ReputationImpact float64  `json:"reputation_impact"`
	MilitaryImpact   float64  `json:"military_impact"`
	TensionChange    float64  `json:"tension_change"`
	DurationMonths   int      `json:"duration_months"`
	Effects          []string `json:"effects"`
}

// DiplomaticEvent is one entry in the diplomatic record.
type DiplomaticEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Factions  []string       `json:"factions"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// AllianceType classifies a pact's scope.
type AllianceType string

const (
	AllianceMilitary      AllianceType = "military"
	AllianceEconomic      AllianceType = "economic"
	AllianceTrade         AllianceType = "trade"
	AllianceNonAggression AllianceType = "non_aggression"
	AllianceFull          AllianceType = "full"
)

// Alliance is a standing pact between two or more factions.
type Alliance struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           AllianceType   `json:"type"`
	Members        []string       `json:"members"`
	Terms          map[string]any `json:"terms"`
	DurationMonths int            `json:"duration_months"`
	CreatedDate    time.Time      `json:"created_date"`
	Status         string         `json:"status"` // active, dissolved, expired
	Stability      float64        `json:"stability"`
}

// HasMember reports whether the faction belongs to the alliance.
func (a *Alliance) HasMember(factionID string) bool {
	for _, m := range a.Members {
		if m == factionID {
			return true
		}
	}
	return false
}

// AgeMonths is the alliance's age in whole months at the given time.
func (a *Alliance) AgeMonths(at time.Time) int {
	if at.Before(a.CreatedDate) {
		return 0
	}
	return int(at.Sub(a.CreatedDate).Hours() / (24 * 30))
}

// ProxyWarType classifies a sponsored conflict.
type ProxyWarType string

const (
	ProxyInsurgency        ProxyWarType = "insurgency"
	ProxyBorderConflict    ProxyWarType = "border_conflict"
	ProxySabotage          ProxyWarType = "sabotage"
	ProxyArmedIntervention ProxyWarType = "armed_intervention"
	ProxyCoup              ProxyWarType = "coup"
)

// ProxyWarOutcome is the terminal state of a sponsored conflict.
type ProxyWarOutcome string

const (
	ProxyOutcomeSuccess           ProxyWarOutcome = "success"
	ProxyOutcomeFailure           ProxyWarOutcome = "failure"
	ProxyOutcomeDiscoveredSuccess ProxyWarOutcome = "discovered_success"
	ProxyOutcomeDiscoveredFailure ProxyWarOutcome = "discovered_failure"
)

// ProxyWar is a covert conflict a sponsor wages through a proxy faction.
type ProxyWar struct {
	ID             string       `json:"id"`
	SponsorID      string       `json:"sponsor_faction_id"`
	TargetID       string       `json:"target_faction_id"`
	ProxyID        string       `json:"proxy_faction_id"`
	RegionID       string       `json:"region_id"`
	WarType        ProxyWarType `json:"war_type"`
	Status         string       `json:"status"` // active, resolved
	StartDate      time.Time    `json:"start_date"`
	FundingLevel   float64      `json:"funding_level"`
	Intensity      float64      `json:"intensity"`
	ProxyGroupName string       `json:"proxy_group_name"`

	Result *ProxyWarResult `json:"result,omitempty"`
}

// ProxyWarResult records how a sponsored conflict played out.
type ProxyWarResult struct {
	Outcome       ProxyWarOutcome `json:"outcome"`
	Succeeded     bool            `json:"succeeded"`
	Discovered    bool            `json:"discovered"`
	SuccessChance float64         `json:"success_chance"`
	DiscoveryRisk float64         `json:"discovery_risk"`
	ResolvedAt    time.Time       `json:"resolved_at"`
}
