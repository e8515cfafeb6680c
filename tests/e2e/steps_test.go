package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/config"
	"github.com/mrsinham/roiforge/internal/mni"
	"github.com/mrsinham/roiforge/internal/pipeline"
	"github.com/mrsinham/roiforge/internal/roi"
)

// The scenarios drive the pipeline in-process with fake services: the real
// ones are FSL command-line tools that are not available in CI.

const clusterReport = `Cluster Index	Voxels	P	-log10(P)	Z-MAX	Z-MAX X (mm)	Z-MAX Y (mm)	Z-MAX Z (mm)	Z-COG X (mm)	Z-COG Y (mm)	Z-COG Z (mm)	COPE-MAX	COPE-MAX X (mm)	COPE-MAX Y (mm)	COPE-MAX Z (mm)	COPE-MEAN
1	1543	1.2e-08	7.92	6.41	6.00	-52.00	10.00	6.00	-52.00	10.00	112.0	6.00	-52.00	10.00	54.2
2	412	0.00031	3.51	4.87	-46.00	6.00	30.00	-46.00	6.00	30.00	88.5	-46.00	6.00	30.00	41.7
`

const localMaxReport = `Cluster Index	Z	x	y	z
1	6.41	6.00	-52.00	10.00
2	4.87	-46.00	6.00	30.00
`

type fakeTransform struct{}

func (fakeTransform) VoxelFor(_ context.Context, c mni.Coord) (mni.Coord, error) {
	return c, nil
}

type fakeQuery struct {
	cortical map[string][]atlas.Label
}

func (f *fakeQuery) Lookup(_ context.Context, atlasName string, c mni.Coord) ([]atlas.Label, error) {
	if !strings.Contains(atlasName, "Cortical") {
		return nil, nil
	}
	return f.cortical[c.Key()], nil
}

type countingBuilder struct {
	runs int
}

func (b *countingBuilder) SeedMask(_ context.Context, _ mni.Coord, out string) error {
	return b.write(out)
}
func (b *countingBuilder) GrowSphere(_ context.Context, _ string, _ int, out string) error {
	return b.write(out)
}
func (b *countingBuilder) Binarize(_ context.Context, _ string, out string) error {
	b.runs++ // one full build ends in exactly one binarize
	return b.write(out)
}
func (b *countingBuilder) write(out string) error {
	return os.WriteFile(out, []byte("mask"), 0o644)
}

type scenarioContext struct {
	copeDir string
	outDir  string
	query   *fakeQuery
	builder *countingBuilder
	run     *pipeline.Run

	resolution *pipeline.Resolution
	resolveErr error
	requests   []roi.Request
}

func (tc *scenarioContext) reset(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	tc.copeDir = ""
	tc.outDir = ""
	tc.query = &fakeQuery{cortical: map[string][]atlas.Label{}}
	tc.builder = &countingBuilder{}
	tc.resolution = nil
	tc.resolveErr = nil
	tc.requests = nil

	cfg := config.Default()
	cfg.Masks.WritePreviews = false
	tc.run = pipeline.New(cfg, pipeline.Services{
		Transform: fakeTransform{},
		Query:     tc.query,
		Masks:     tc.builder,
	}, nil)
	return ctx, nil
}

func (tc *scenarioContext) aCopeDirectoryWithReferenceReports() error {
	dir, err := os.MkdirTemp("", "roiforge-e2e-*")
	if err != nil {
		return err
	}
	tc.copeDir = dir
	tc.outDir = filepath.Join(dir, "out")
	if err := os.WriteFile(filepath.Join(dir, "cluster_zstat1_std.txt"), []byte(clusterReport), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "lmax_zstat1_std.txt"), []byte(localMaxReport), 0o644)
}

func (tc *scenarioContext) anEmptyCopeDirectory() error {
	dir, err := os.MkdirTemp("", "roiforge-e2e-*")
	if err != nil {
		return err
	}
	tc.copeDir = dir
	tc.outDir = filepath.Join(dir, "out")
	return nil
}

func (tc *scenarioContext) corticalAtlasLabels(coord, region string, pct int) error {
	parts := strings.Split(coord, ",")
	if len(parts) != 3 {
		return fmt.Errorf("bad coordinate %q", coord)
	}
	key := mni.New(parts[0], parts[1], parts[2]).Key()
	tc.query.cortical[key] = append(tc.query.cortical[key], atlas.Label{Region: region, Percent: pct})
	return nil
}

func (tc *scenarioContext) iResolveTheCope() error {
	tc.resolution, tc.resolveErr = tc.run.Resolve(context.Background(), tc.copeDir)
	return nil
}

func (tc *scenarioContext) resolutionFails() error {
	if tc.resolveErr == nil {
		return fmt.Errorf("resolution succeeded, expected failure")
	}
	return nil
}

func (tc *scenarioContext) summaryHasNEntries(n int) error {
	if tc.resolveErr != nil {
		return tc.resolveErr
	}
	if got := len(tc.resolution.Summary); got != n {
		return fmt.Errorf("summary has %d entries, want %d", got, n)
	}
	return nil
}

func (tc *scenarioContext) entryIs(id int, region string) error {
	for _, e := range tc.resolution.Summary {
		if e.ID == id {
			if e.Region != region {
				return fmt.Errorf("entry %d is %q, want %q", id, e.Region, region)
			}
			return nil
		}
	}
	return fmt.Errorf("no entry with ID %d", id)
}

func (tc *scenarioContext) iSelectIDsWithRadius(ids, radius string) error {
	parsedIDs, err := roi.ParseIDSelection(ids, len(tc.resolution.Summary))
	if err != nil {
		return err
	}
	parsedRadius, err := roi.ParseRadius(radius)
	if err != nil {
		return err
	}
	tc.requests, err = roi.Select(tc.resolution.Summary, parsedIDs, parsedRadius, "cope1", tc.outDir)
	return err
}

func (tc *scenarioContext) iSynthesizeTheSelectedMasks() error {
	for _, res := range tc.run.Synthesize(context.Background(), tc.requests) {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

func (tc *scenarioContext) maskExists(name string) error {
	path := filepath.Join(tc.outDir, "roi", "cope1", name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("mask %s missing: %w", name, err)
	}
	return nil
}

func (tc *scenarioContext) builderRanNTimes(n int) error {
	if tc.builder.runs != n {
		return fmt.Errorf("builder ran %d times, want %d", tc.builder.runs, n)
	}
	return nil
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &scenarioContext{}

	sc.Before(tc.reset)
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if tc.copeDir != "" {
			os.RemoveAll(tc.copeDir)
		}
		return ctx, nil
	})

	sc.Step(`^a cope directory with the reference cluster reports$`, tc.aCopeDirectoryWithReferenceReports)
	sc.Step(`^an empty cope directory$`, tc.anEmptyCopeDirectory)
	sc.Step(`^the cortical atlas labels "([^"]*)" as "([^"]*)" at (\d+) percent$`, tc.corticalAtlasLabels)
	sc.Step(`^I resolve the cope$`, tc.iResolveTheCope)
	sc.Step(`^resolution fails$`, tc.resolutionFails)
	sc.Step(`^the summary has (\d+) entries$`, tc.summaryHasNEntries)
	sc.Step(`^entry (\d+) is "([^"]*)"$`, tc.entryIs)
	sc.Step(`^I select IDs "([^"]*)" with radius "([^"]*)"$`, tc.iSelectIDsWithRadius)
	sc.Step(`^I synthesize the selected masks$`, tc.iSynthesizeTheSelectedMasks)
	sc.Step(`^mask "([^"]*)" exists$`, tc.maskExists)
	sc.Step(`^the mask builder ran (\d+) time(?:s)?$`, tc.builderRanNTimes)
}
