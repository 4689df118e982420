package models

// Resolution is the outcome of resolving one page: for every zone, the ads to
// render in order. It is computed fresh per call and never mutated afterwards.
type Resolution struct {
	PageKey string                   `json:"page_key"`
	Date    Date                     `json:"date"`
	Viewer  ViewerContext            `json:"viewer"`
	Zones   map[Placement][]AdRecord `json:"zones"`
}

// Zone returns the ordered ads for p. Unknown zones yield nil.
func (r Resolution) Zone(p Placement) []AdRecord {
	return r.Zones[p]
}

// Count returns the number of ads across all zones.
func (r Resolution) Count() int {
	n := 0
	for _, ads := range r.Zones {
		n += len(ads)
	}
	return n
}

// Find returns the resolved ad with the given ID, if it is present in any zone.
func (r Resolution) Find(id string) (AdRecord, bool) {
	for _, p := range Placements {
		for _, ad := range r.Zones[p] {
			if ad.ID == id {
				return ad, true
			}
		}
	}
	return AdRecord{}, false
}
