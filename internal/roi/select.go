package roi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/mni"
)

// DefaultRadiusMM is the sphere radius used when the caller supplies none.
const DefaultRadiusMM = 5

// Request describes one spherical mask to synthesize.
type Request struct {
	Region     string
	MNI        mni.Coord
	Voxel      mni.Coord
	CopeLabel  string
	RadiusMM   int
	OutputRoot string
}

// SelectionError reports invalid caller input at the selection boundary.
// The caller owns any retry loop; this layer validates exactly once.
type SelectionError struct {
	Input  string
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: %s", e.Input, e.Reason)
}

// ParseRadius reads a radius in millimeters. The empty string yields the
// default; a trailing "mm" unit marker is accepted ("7" and "7mm" both parse
// to 7). Anything non-numeric or non-positive is a validation error.
func ParseRadius(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return DefaultRadiusMM, nil
	}
	trimmed = strings.TrimSuffix(strings.ToLower(trimmed), "mm")
	trimmed = strings.TrimSpace(trimmed)

	r, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &SelectionError{Input: s, Reason: "radius must be a whole number of millimeters"}
	}
	if r <= 0 {
		return 0, &SelectionError{Input: s, Reason: "radius must be positive"}
	}
	return r, nil
}

// ParseIDSelection reads a comma- or space-separated set of entry IDs.
// Empty input and the word "all" select every entry. Each ID must be a
// positive integer no greater than max.
func ParseIDSelection(s string, max int) ([]int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		ids := make([]int, max)
		for i := range ids {
			ids[i] = i + 1
		}
		return ids, nil
	}

	var ids []int
	for _, tok := range strings.FieldsFunc(trimmed, func(r rune) bool { return r == ',' || r == ' ' }) {
		id, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &SelectionError{Input: s, Reason: fmt.Sprintf("%q is not an ROI ID", tok)}
		}
		if id < 1 || id > max {
			return nil, &SelectionError{Input: s, Reason: fmt.Sprintf("ID %d is out of range 1-%d", id, max)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Select builds one mask request per selected summary entry. An empty ID set
// selects every entry. IDs are validated against the summary even when they
// arrive pre-parsed. The region name is carried verbatim: the abbreviation
// table keys on full atlas names, parentheticals included, so cleaning
// happens only at display time.
func Select(entries []atlas.SummaryEntry, ids []int, radiusMM int, copeLabel, outputRoot string) ([]Request, error) {
	if radiusMM <= 0 {
		return nil, &SelectionError{Input: strconv.Itoa(radiusMM), Reason: "radius must be positive"}
	}

	byID := make(map[int]atlas.SummaryEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	if len(ids) == 0 {
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
	}

	requests := make([]Request, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, &SelectionError{Input: strconv.Itoa(id), Reason: fmt.Sprintf("no ROI with ID %d", id)}
		}
		requests = append(requests, Request{
			Region:     e.Region,
			MNI:        e.Candidate.MNI,
			Voxel:      e.Candidate.Voxel,
			CopeLabel:  copeLabel,
			RadiusMM:   radiusMM,
			OutputRoot: outputRoot,
		})
	}
	return requests, nil
}
