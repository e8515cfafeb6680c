package atlas

import (
	"github.com/mrsinham/roiforge/internal/mni"
)

// SummaryEntry is the representative candidate chosen for one anatomical
// region. IDs are sequential, 1-based, assigned in coordinate registration
// order.
type SummaryEntry struct {
	ID        int
	Region    string
	Percent   int
	Candidate Candidate
}

// Rank collapses resolved candidates to one representative per distinct
// best-cortical region.
//
// Stage one picks each coordinate's best cortical match; coordinates without
// one drop out of summary consideration. Stage two groups by region name and
// keeps, per region, the coordinate with the globally highest probability —
// earlier registration wins ties. Entries are emitted in registration order
// so several coordinates landing in the same structure never produce
// near-duplicate ROIs.
func Rank(order []mni.Coord, resolved map[string]Candidate) []SummaryEntry {
	// Representative coordinate key per region.
	repKey := make(map[string]string)
	repPct := make(map[string]int)
	for _, c := range order {
		cand, ok := resolved[c.Key()]
		if !ok {
			continue
		}
		best, ok := cand.BestCortical()
		if !ok {
			continue
		}
		// Strictly greater keeps the earliest coordinate on ties.
		if prev, seen := repPct[best.Region]; !seen || best.Percent > prev {
			repPct[best.Region] = best.Percent
			repKey[best.Region] = c.Key()
		}
	}

	var entries []SummaryEntry
	for _, c := range order {
		cand, ok := resolved[c.Key()]
		if !ok {
			continue
		}
		best, ok := cand.BestCortical()
		if !ok {
			continue
		}
		if repKey[best.Region] != c.Key() {
			continue
		}
		entries = append(entries, SummaryEntry{
			ID:        len(entries) + 1,
			Region:    best.Region,
			Percent:   best.Percent,
			Candidate: cand,
		})
	}
	return entries
}
