// Package pipeline drives one cope's processing: parse the statistical
// reports, register and resolve coordinates, rank candidates into a summary,
// and synthesize the selected masks. All bookkeeping lives in the run
// context; nothing is process-global, so separate copes can run in parallel
// when the caller wants to.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/config"
	"github.com/mrsinham/roiforge/internal/coords"
	"github.com/mrsinham/roiforge/internal/mask"
	"github.com/mrsinham/roiforge/internal/report"
	"github.com/mrsinham/roiforge/internal/roi"
)

// Services are the external collaborators a run needs.
type Services struct {
	Transform atlas.Transformer
	Query     atlas.Querier
	Masks     mask.Builder
}

// Run is the context for one cope's pipeline pass.
type Run struct {
	ID       string
	Cfg      *config.Config
	Services Services
	Log      *zap.Logger
}

// New builds a run context. Every log line carries the run ID so interleaved
// sessions stay separable.
func New(cfg *config.Config, services Services, log *zap.Logger) *Run {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Run{
		ID:       id,
		Cfg:      cfg,
		Services: services,
		Log:      log.With(zap.String("run_id", id)),
	}
}

// Resolution is everything derived from one cope's reports.
type Resolution struct {
	Clusters    []report.ClusterRecord
	LocalMaxima []report.LocalMaximum
	Registry    *coords.Registry
	Resolved    map[string]atlas.Candidate
	Summary     []atlas.SummaryEntry
	ZStats      report.ZSummary
}

// Resolve runs parse → register → resolve → rank for the cope directory.
// Missing or unreadable reports are fatal; an empty summary is not.
func (r *Run) Resolve(ctx context.Context, copeDir string) (*Resolution, error) {
	clusters, err := report.LoadClusters(filepath.Join(copeDir, r.Cfg.Reports.Cluster))
	if err != nil {
		return nil, fmt.Errorf("cope %s: %w", copeDir, err)
	}
	maxima, err := report.LoadLocalMaxima(filepath.Join(copeDir, r.Cfg.Reports.LocalMaxima))
	if err != nil {
		return nil, fmt.Errorf("cope %s: %w", copeDir, err)
	}

	registry := coords.FromReports(clusters, maxima)
	zstats := report.Summarize(clusters, maxima)
	r.Log.Info("reports parsed",
		zap.Int("clusters", zstats.Clusters),
		zap.Int("local_maxima", zstats.LocalMaxima),
		zap.Int("distinct_coordinates", registry.Len()),
		zap.Float64("max_z", zstats.MaxZ),
		zap.Float64("mean_cluster_zmax", zstats.MeanZMax))

	resolver := atlas.NewResolver(r.Services.Transform, r.Services.Query,
		r.Cfg.Atlas.Cortical, r.Cfg.Atlas.Subcortical, r.Log)
	resolver.MinProbability = r.Cfg.Atlas.MinProbability
	resolved := resolver.ResolveAll(ctx, registry)

	summary := atlas.Rank(registry.All(), resolved)
	if len(summary) == 0 {
		r.Log.Info("no ROIs found", zap.String("cope_dir", copeDir))
	} else {
		r.Log.Info("candidates ranked", zap.Int("rois", len(summary)))
	}

	return &Resolution{
		Clusters:    clusters,
		LocalMaxima: maxima,
		Registry:    registry,
		Resolved:    resolved,
		Summary:     summary,
		ZStats:      zstats,
	}, nil
}

// Result pairs one request with its synthesis outcome.
type Result struct {
	Request  roi.Request
	Artifact mask.Artifact
	Preview  string
	Err      error
}

// Synthesize builds every requested mask. A failed request never stops the
// batch; its error is recorded and the remaining requests still run.
// Overlap advisories belong to the selection surface, not to synthesis.
func (r *Run) Synthesize(ctx context.Context, requests []roi.Request) []Result {
	synth := mask.NewSynthesizer(r.Services.Masks, r.Log)
	results := make([]Result, 0, len(requests))
	for _, req := range requests {
		res := Result{Request: req}
		res.Artifact, res.Err = synth.Synthesize(ctx, req)
		if res.Err != nil {
			r.Log.Error("mask synthesis failed",
				zap.String("region", req.Region),
				zap.Error(res.Err))
			results = append(results, res)
			continue
		}

		if r.Cfg.Masks.WritePreviews && !res.Artifact.Existed {
			preview, err := mask.WritePreview(req)
			if err != nil {
				// QC aid only; the masks themselves are intact.
				r.Log.Warn("preview rendering failed",
					zap.String("region", req.Region), zap.Error(err))
			} else {
				res.Preview = preview
			}
		}
		results = append(results, res)
	}
	return results
}
