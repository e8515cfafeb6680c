// Package mask builds spherical region-of-interest masks in standard space.
// The morphological work (seed voxel, sphere growth, binarization) is
// delegated to an external builder; this package owns artifact naming,
// directory layout and the idempotency check that makes re-runs safe.
package mask

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mrsinham/roiforge/internal/mni"
	"github.com/mrsinham/roiforge/internal/roi"
)

// Builder performs the three morphological steps against the standard-space
// template grid. Each step writes its output image to the given path.
type Builder interface {
	// SeedMask writes a mask holding 1 at the voxel index and 0 elsewhere.
	SeedMask(ctx context.Context, voxel mni.Coord, out string) error
	// GrowSphere mean-filters the seed with a spherical kernel of the given
	// radius in millimeters, producing a graded sphere.
	GrowSphere(ctx context.Context, in string, radiusMM int, out string) error
	// Binarize thresholds the graded sphere at >0 into the final mask.
	Binarize(ctx context.Context, in, out string) error
}

// Artifact names the three mask files produced for one request.
type Artifact struct {
	Region    string
	Center    string
	Sphere    string
	Binarized string
	// Existed is true when the binarized mask was already present and no
	// work was performed.
	Existed bool
}

// Synthesizer turns selection requests into mask artifacts.
type Synthesizer struct {
	Builder Builder
	Log     *zap.Logger
}

// NewSynthesizer wires a synthesizer around a builder.
func NewSynthesizer(b Builder, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{Builder: b, Log: log}
}

// Paths computes the artifact layout for a request:
// outputRoot/roi/<copeLabel>/<abbr>_space-MNI152_desc-…_mask.nii.gz.
func Paths(req roi.Request) Artifact {
	abbr := roi.AbbreviateRegion(req.Region)
	dir := filepath.Join(req.OutputRoot, "roi", req.CopeLabel)
	name := func(desc string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_space-MNI152_desc-%s_mask.nii.gz", abbr, desc))
	}
	return Artifact{
		Region:    req.Region,
		Center:    name("center"),
		Sphere:    name(fmt.Sprintf("sphere%dmm", req.RadiusMM)),
		Binarized: name(fmt.Sprintf("sphere%dmm_binarized", req.RadiusMM)),
	}
}

// Synthesize builds the three mask files for a request. When the binarized
// mask already exists the call is a no-op and the returned artifact has
// Existed set; re-running a pipeline never rebuilds or clobbers masks.
func (s *Synthesizer) Synthesize(ctx context.Context, req roi.Request) (Artifact, error) {
	art := Paths(req)

	if _, err := os.Stat(art.Binarized); err == nil {
		s.Log.Debug("mask already present, skipping",
			zap.String("region", req.Region),
			zap.String("mask", art.Binarized))
		art.Existed = true
		return art, nil
	}

	if err := os.MkdirAll(filepath.Dir(art.Binarized), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create roi directory: %w", err)
	}

	if err := s.Builder.SeedMask(ctx, req.Voxel, art.Center); err != nil {
		return Artifact{}, fmt.Errorf("seed mask for %s at voxel %s: %w", req.Region, req.Voxel, err)
	}
	if err := s.Builder.GrowSphere(ctx, art.Center, req.RadiusMM, art.Sphere); err != nil {
		return Artifact{}, fmt.Errorf("grow %dmm sphere for %s: %w", req.RadiusMM, req.Region, err)
	}
	if err := s.Builder.Binarize(ctx, art.Sphere, art.Binarized); err != nil {
		return Artifact{}, fmt.Errorf("binarize sphere for %s: %w", req.Region, err)
	}

	s.Log.Info("mask synthesized",
		zap.String("region", req.Region),
		zap.Int("radius_mm", req.RadiusMM),
		zap.String("mask", art.Binarized))
	return art, nil
}
