package faction

// Region is a contestable territory. Claims and control drive war eligibility;
// terrain and stability feed battle and proxy-war formulas.
type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TerrainType string `json:"terrain_type"`

	// Claim strength per faction (faction ID → 0–100). A zero entry is no claim.
	Claims map[string]float64 `json:"claims"`

	// ControllerID is the faction currently holding the region, empty if none.
	ControllerID string `json:"controller_id"`

	// Stability in [0, 1]; low values invite insurgencies.
	Stability float64 `json:"stability"`

	Population int                `json:"population"`
	Resources  map[string]float64 `json:"resources"`
}

// ClaimOf returns a faction's claim strength on the region, zero if none.
func (r *Region) ClaimOf(factionID string) float64 {
	if r == nil || r.Claims == nil {
		return 0
	}
	return r.Claims[factionID]
}

// IndexRegions builds a lookup map from a region slice.
func IndexRegions(regions []*Region) map[string]*Region {
	idx := make(map[string]*Region, len(regions))
	for _, r := range regions {
		idx[r.ID] = r
	}
	return idx
}
