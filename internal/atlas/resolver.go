// Package atlas resolves MNI coordinates against probabilistic anatomical
// atlases and ranks the resulting candidates into one representative
// coordinate per anatomical region.
package atlas

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mrsinham/roiforge/internal/coords"
	"github.com/mrsinham/roiforge/internal/mni"
)

// DefaultMinProbability is the percentage below which atlas matches are
// discarded. Dropped matches never reappear in later ranking.
const DefaultMinProbability = 5

// Kind distinguishes the two atlases queried per coordinate.
type Kind string

const (
	Cortical    Kind = "cortical"
	Subcortical Kind = "subcortical"
)

// Label is one probabilistic atlas match.
type Label struct {
	Region  string
	Percent int
}

// Transformer converts an MNI coordinate to a voxel index in the
// standard-space grid. Implementations are fail-soft consumers: the resolver
// falls back to the MNI values when the transform fails.
type Transformer interface {
	VoxelFor(ctx context.Context, c mni.Coord) (mni.Coord, error)
}

// Querier looks a coordinate up in a named probabilistic atlas.
type Querier interface {
	Lookup(ctx context.Context, atlasName string, c mni.Coord) ([]Label, error)
}

// Candidate is the resolution result for one coordinate.
type Candidate struct {
	MNI         mni.Coord
	Voxel       mni.Coord
	Cortical    []Label
	Subcortical []Label
}

// BestCortical returns the surviving cortical match with the highest
// probability. Ties keep the first-seen match. The second return is false
// when the coordinate has no surviving cortical match.
func (c Candidate) BestCortical() (Label, bool) {
	if len(c.Cortical) == 0 {
		return Label{}, false
	}
	best := c.Cortical[0]
	for _, l := range c.Cortical[1:] {
		if l.Percent > best.Percent {
			best = l
		}
	}
	return best, true
}

// Resolver queries the transform and atlas services per coordinate,
// applying the probability threshold. Service failures degrade rather than
// abort: a failed transform yields the identity voxel coordinate, a failed
// atlas query yields zero matches for that atlas kind.
type Resolver struct {
	Transform        Transformer
	Query            Querier
	CorticalAtlas    string
	SubcorticalAtlas string
	MinProbability   int
	Log              *zap.Logger
}

// NewResolver wires a resolver with the default threshold.
func NewResolver(t Transformer, q Querier, corticalAtlas, subcorticalAtlas string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		Transform:        t,
		Query:            q,
		CorticalAtlas:    corticalAtlas,
		SubcorticalAtlas: subcorticalAtlas,
		MinProbability:   DefaultMinProbability,
		Log:              log,
	}
}

// Resolve maps one coordinate to its voxel index and surviving atlas
// matches.
func (r *Resolver) Resolve(ctx context.Context, c mni.Coord) Candidate {
	cand := Candidate{MNI: c, Voxel: c}

	voxel, err := r.Transform.VoxelFor(ctx, c)
	if err != nil {
		r.Log.Warn("coordinate transform unavailable, keeping MNI values",
			zap.String("coord", c.String()), zap.Error(err))
	} else {
		cand.Voxel = voxel
	}

	cand.Cortical = r.lookup(ctx, Cortical, r.CorticalAtlas, c)
	cand.Subcortical = r.lookup(ctx, Subcortical, r.SubcorticalAtlas, c)
	return cand
}

// ResolveAll resolves every registered coordinate exactly once, keyed by the
// coordinate's textual identity.
func (r *Resolver) ResolveAll(ctx context.Context, reg *coords.Registry) map[string]Candidate {
	resolved := make(map[string]Candidate, reg.Len())
	for _, c := range reg.All() {
		resolved[c.Key()] = r.Resolve(ctx, c)
	}
	return resolved
}

func (r *Resolver) lookup(ctx context.Context, kind Kind, atlasName string, c mni.Coord) []Label {
	labels, err := r.Query.Lookup(ctx, atlasName, c)
	if err != nil {
		r.Log.Warn("atlas query unavailable",
			zap.String("atlas", atlasName),
			zap.String("kind", string(kind)),
			zap.String("coord", c.String()),
			zap.Error(err))
		return nil
	}

	var kept []Label
	for _, l := range labels {
		if l.Percent >= r.MinProbability {
			kept = append(kept, l)
		}
	}
	return kept
}

// NoLabelSentinel marks the query service's explicit "nothing here"
// response.
const NoLabelSentinel = "No label found"

// ParseLabelTable reads the atlas query response: one match per row, the
// final whitespace-delimited field an integer proportion (a trailing '%' is
// tolerated), the remaining fields the region name. A row carrying the
// no-label sentinel yields zero matches.
func ParseLabelTable(text string) ([]Label, error) {
	var labels []Label
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, NoLabelSentinel) {
			return nil, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("atlas row %q: need a region name and a proportion", line)
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(fields[len(fields)-1], "%"))
		if err != nil {
			return nil, fmt.Errorf("atlas row %q: proportion: %w", line, err)
		}
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("atlas row %q: proportion %d out of range", line, pct)
		}
		labels = append(labels, Label{
			Region:  strings.Join(fields[:len(fields)-1], " "),
			Percent: pct,
		})
	}
	return labels, nil
}
