package tension

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// eventWeights scales event impact per event type. Unlisted types use 1.0.
var eventWeights = map[string]float64{
	"battle":           2.0,
	"raid":             1.5,
	"border_dispute":   1.2,
	"trade_conflict":   1.0,
	"assassination":    2.5,
	"treaty_violation": 1.8,
	"festival":         -0.5,
	"trade_agreement":  -1.0,
}

// Manager owns per-region tension state. All mutation goes through it so the
// clamp and canonical-pair invariants hold. Safe for concurrent use.
type Manager struct {
	cfg Config

	mu      sync.RWMutex
	regions map[string]*RegionTension
}

// NewManager creates a tension manager with the given config.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		regions: make(map[string]*RegionTension),
	}
}

// Config returns the immutable tuning the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

// GetTension returns the region's tension state. An untouched region yields
// a fresh empty snapshot without creating state.
func (m *Manager) GetTension(regionID string) *RegionTension {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.regions[regionID]
	if !ok {
		return newRegionTension(regionID)
	}
	return snapshotRegion(rt)
}

// ModifyTension applies a delta to the canonicalized pair's value, clamped
// to the configured bounds. Creates the record lazily.
func (m *Manager) ModifyTension(regionID, factionA, factionB string, delta float64, reason string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordLocked(regionID, NewPairKey(factionA, factionB))
	rec.Value = m.cfg.clamp(rec.Value + delta)
	rec.LastUpdated = time.Now().UTC()

	slog.Debug("tension modified",
		"region", regionID,
		"pair_a", rec.Pair.A,
		"pair_b", rec.Pair.B,
		"delta", delta,
		"value", rec.Value,
		"reason", reason,
	)
	return rec.Value
}

// GetFactionTension returns the scalar tension for a pair, order-independent.
// Unknown pairs read as BaseTension.
func (m *Manager) GetFactionTension(regionID, factionA, factionB string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.regions[regionID]
	if !ok {
		return m.cfg.BaseTension
	}
	rec, ok := rt.Pairs[NewPairKey(factionA, factionB)]
	if !ok {
		return m.cfg.BaseTension
	}
	return rec.Value
}

// DecayTension moves every pair in the region toward BaseTension by
// DecayRate*days, never overshooting.
func (m *Manager) DecayTension(regionID string, days float64) {
	if days <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rt, ok := m.regions[regionID]
	if !ok {
		return
	}

	amount := m.cfg.DecayRate * days
	now := time.Now().UTC()
	for _, rec := range rt.Pairs {
		diff := rec.Value - m.cfg.BaseTension
		if diff == 0 {
			continue
		}
		step := math.Min(amount, math.Abs(diff))
		if diff > 0 {
			rec.Value -= step
		} else {
			rec.Value += step
		}
		rec.LastUpdated = now
	}
	rt.LastUpdated = now
}

// DecayAll applies DecayTension to every tracked region.
func (m *Manager) DecayAll(days float64) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.DecayTension(id, days)
	}
}

// ResetTension clears all pairs in a region back to BaseTension.
func (m *Manager) ResetTension(regionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, ok := m.regions[regionID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	for _, rec := range rt.Pairs {
		rec.Value = m.cfg.BaseTension
		rec.LastUpdated = now
	}
	rt.LastUpdated = now
}

// CalculateEventImpact applies one event's weighted delta across all supplied
// pairs. The delta is severity * EventImpact scaled by the event type weight.
// Returns the applied delta.
func (m *Manager) CalculateEventImpact(regionID, eventType string, severity float64, pairs []PairKey, reason string) float64 {
	weight, ok := eventWeights[eventType]
	if !ok {
		weight = 1.0
	}
	delta := severity * m.cfg.EventImpact * weight

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for _, pair := range pairs {
		rec := m.recordLocked(regionID, pair)
		rec.Value = m.cfg.clamp(rec.Value + delta)
		rec.LastUpdated = now
	}

	slog.Debug("event impact applied",
		"region", regionID,
		"event_type", eventType,
		"severity", severity,
		"delta", delta,
		"pairs", len(pairs),
		"reason", reason,
	)
	return delta
}

// Level classifies the current tension between two factions in a region.
func (m *Manager) Level(regionID, factionA, factionB string) Level {
	return Classify(m.GetFactionTension(regionID, factionA, factionB))
}

// Regions returns the IDs of all regions with tracked tension.
func (m *Manager) Regions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	return ids
}

// Records returns snapshots of every record in a region.
func (m *Manager) Records(regionID string) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.regions[regionID]
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(rt.Pairs))
	for _, rec := range rt.Pairs {
		out = append(out, *rec)
	}
	return out
}

// Restore loads a record snapshot, replacing any existing value. Used by the
// persistence layer when reloading a saved world.
func (m *Manager) Restore(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.recordLocked(rec.RegionID, rec.Pair)
	r.Value = m.cfg.clamp(rec.Value)
	r.LastUpdated = rec.LastUpdated
}

// recordLocked fetches or lazily creates the record for a pair. Caller holds mu.
func (m *Manager) recordLocked(regionID string, pair PairKey) *Record {
	rt, ok := m.regions[regionID]
	if !ok {
		rt = newRegionTension(regionID)
		m.regions[regionID] = rt
	}
	rec, ok := rt.Pairs[pair]
	if !ok {
		rec = &Record{
			RegionID: regionID,
			Pair:     pair,
			Value:    m.cfg.BaseTension,
		}
		rt.Pairs[pair] = rec
	}
	return rec
}

func snapshotRegion(rt *RegionTension) *RegionTension {
	out := newRegionTension(rt.RegionID)
	out.LastUpdated = rt.LastUpdated
	for k, rec := range rt.Pairs {
		cp := *rec
		out.Pairs[k] = &cp
	}
	return out
}
