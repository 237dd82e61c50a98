package tension

import "time"

// PairKey is a canonical unordered faction pair. Construction normalizes
// order so (a,b) and (b,a) resolve to the same key.
type PairKey struct {
	A string
	B string
}

// NewPairKey canonicalizes a faction pair by lexicographic order.
func NewPairKey(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Involves reports whether the pair contains the given faction.
func (k PairKey) Involves(factionID string) bool {
	return k.A == factionID || k.B == factionID
}

// Record is the tension state for one faction pair in one region.
type Record struct {
	RegionID    string    `json:"region_id"`
	Pair        PairKey   `json:"pair"`
	Value       float64   `json:"value"`
	LastUpdated time.Time `json:"last_updated"`
}

// RegionTension holds all pair records for a region. A missing pair reads
// as BaseTension; records are created lazily on first modification.
type RegionTension struct {
	RegionID    string              `json:"region_id"`
	Pairs       map[PairKey]*Record `json:"pairs"`
	LastUpdated time.Time           `json:"last_updated"`
}

func newRegionTension(regionID string) *RegionTension {
	return &RegionTension{
		RegionID: regionID,
		Pairs:    make(map[PairKey]*Record),
	}
}
