// Package coords deduplicates coordinates gathered from every report source
// while preserving first-registration order. That order is load-bearing: it
// drives tie-breaking and ID assignment during ranking.
package coords

import (
	"github.com/mrsinham/roiforge/internal/mni"
	"github.com/mrsinham/roiforge/internal/report"
)

// ID identifies a registered coordinate. IDs are dense and ordered by first
// registration.
type ID int

// Registry is an insertion-ordered set of coordinates keyed by their exact
// textual triple.
type Registry struct {
	ids   map[string]ID
	order []mni.Coord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]ID)}
}

// Register adds a coordinate and returns its ID. Registering the same
// textual triple again returns the original ID without duplicating storage.
func (r *Registry) Register(c mni.Coord) ID {
	if id, ok := r.ids[c.Key()]; ok {
		return id
	}
	id := ID(len(r.order))
	r.ids[c.Key()] = id
	r.order = append(r.order, c)
	return id
}

// All returns the registered coordinates in first-registration order. The
// returned slice is the registry's own backing store and must not be
// modified.
func (r *Registry) All() []mni.Coord {
	return r.order
}

// Len reports the number of distinct coordinates registered.
func (r *Registry) Len() int {
	return len(r.order)
}

// FromReports registers every cluster-derived coordinate: for each cluster
// its z-max, z-center-of-gravity and cope-max triples, then every local
// maximum, in report order.
func FromReports(clusters []report.ClusterRecord, maxima []report.LocalMaximum) *Registry {
	r := NewRegistry()
	for _, c := range clusters {
		r.Register(c.ZMaxCoord)
		r.Register(c.ZCOGCoord)
		r.Register(c.CopeMaxCoord)
	}
	for _, m := range maxima {
		r.Register(m.Coord)
	}
	return r
}
