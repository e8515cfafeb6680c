package mask

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/mni"
	"github.com/mrsinham/roiforge/internal/roi"
)

// fakeBuilder records calls and writes placeholder files like the real
// builder would.
type fakeBuilder struct {
	seedCalls, growCalls, binCalls int
	failOn                         string
}

func (f *fakeBuilder) SeedMask(_ context.Context, _ mni.Coord, out string) error {
	f.seedCalls++
	if f.failOn == "seed" {
		return errors.New("fslmaths: seed failed")
	}
	return os.WriteFile(out, []byte("seed"), 0o644)
}

func (f *fakeBuilder) GrowSphere(_ context.Context, _ string, _ int, out string) error {
	f.growCalls++
	if f.failOn == "grow" {
		return errors.New("fslmaths: kernel failed")
	}
	return os.WriteFile(out, []byte("sphere"), 0o644)
}

func (f *fakeBuilder) Binarize(_ context.Context, _ string, out string) error {
	f.binCalls++
	if f.failOn == "bin" {
		return errors.New("fslmaths: bin failed")
	}
	return os.WriteFile(out, []byte("bin"), 0o644)
}

func request(root string) roi.Request {
	return roi.Request{
		Region:     "Precuneous Cortex",
		MNI:        mni.New("6.00", "-52.00", "10.00"),
		Voxel:      mni.New("42", "19", "41"),
		CopeLabel:  "cope3",
		RadiusMM:   5,
		OutputRoot: root,
	}
}

func TestPaths(t *testing.T) {
	art := Paths(request("/out"))

	want := filepath.Join("/out", "roi", "cope3", "Precuneous_space-MNI152_desc-sphere5mm_binarized_mask.nii.gz")
	assert.Equal(t, want, art.Binarized)
	assert.Equal(t, filepath.Join("/out", "roi", "cope3", "Precuneous_space-MNI152_desc-center_mask.nii.gz"), art.Center)
	assert.Equal(t, filepath.Join("/out", "roi", "cope3", "Precuneous_space-MNI152_desc-sphere5mm_mask.nii.gz"), art.Sphere)
}

func TestSynthesizeIdempotent(t *testing.T) {
	root := t.TempDir()
	b := &fakeBuilder{}
	s := NewSynthesizer(b, nil)
	req := request(root)

	first, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Existed)
	assert.FileExists(t, first.Center)
	assert.FileExists(t, first.Sphere)
	assert.FileExists(t, first.Binarized)
	assert.Equal(t, 1, b.seedCalls)
	assert.Equal(t, 1, b.growCalls)
	assert.Equal(t, 1, b.binCalls)

	second, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Existed, "second synthesis must be a no-op")
	assert.Equal(t, first.Binarized, second.Binarized)
	assert.Equal(t, 1, b.seedCalls, "builder must not run again")
	assert.Equal(t, 1, b.growCalls)
	assert.Equal(t, 1, b.binCalls)
}

func TestSynthesizeDifferentRadiusIsSeparate(t *testing.T) {
	root := t.TempDir()
	b := &fakeBuilder{}
	s := NewSynthesizer(b, nil)

	req := request(root)
	_, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)

	req.RadiusMM = 7
	art, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, art.Existed, "a new radius keys a new artifact")
	assert.Contains(t, art.Binarized, "sphere7mm_binarized")
	assert.Equal(t, 2, b.binCalls)
}

func TestSynthesizeStepFailures(t *testing.T) {
	for _, step := range []string{"seed", "grow", "bin"} {
		t.Run(step, func(t *testing.T) {
			s := NewSynthesizer(&fakeBuilder{failOn: step}, nil)
			_, err := s.Synthesize(context.Background(), request(t.TempDir()))
			require.Error(t, err)
		})
	}
}

func TestWritePreview(t *testing.T) {
	root := t.TempDir()
	req := request(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "roi", "cope3"), 0o755))

	path, err := WritePreview(req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "roi", "cope3", "Precuneous_space-MNI152_desc-sphere5mm_preview.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, gridX*previewScale, img.Bounds().Dx())
	assert.Equal(t, gridY*previewScale, img.Bounds().Dy())
}

func TestWritePreviewBadVoxel(t *testing.T) {
	req := request(t.TempDir())
	req.Voxel = mni.New("a", "b", "c")
	_, err := WritePreview(req)
	require.Error(t, err)
}

// Regions whose atlas names carry parenthetical annotations must still hit
// the abbreviation table when requests come through Select.
func TestPathsAbbreviatesParentheticalRegionsFromSelect(t *testing.T) {
	entries := []atlas.SummaryEntry{
		{
			ID:      1,
			Region:  "Juxtapositional Lobule Cortex (formerly Supplementary Motor Cortex)",
			Percent: 52,
			Candidate: atlas.Candidate{
				MNI:   mni.New("-4.00", "-2.00", "54.00"),
				Voxel: mni.New("47", "62", "63"),
			},
		},
		{
			ID:      2,
			Region:  "Heschl's Gyrus (includes H1 and H2)",
			Percent: 44,
			Candidate: atlas.Candidate{
				MNI:   mni.New("-46.00", "-20.00", "8.00"),
				Voxel: mni.New("68", "54", "40"),
			},
		},
	}

	requests, err := roi.Select(entries, []int{1, 2}, 5, "cope2", "/out")
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, "SMA_space-MNI152_desc-sphere5mm_binarized_mask.nii.gz",
		filepath.Base(Paths(requests[0]).Binarized))
	assert.Equal(t, "HG_space-MNI152_desc-sphere5mm_binarized_mask.nii.gz",
		filepath.Base(Paths(requests[1]).Binarized))
}

func TestPathsAbbreviationFallback(t *testing.T) {
	req := request("/out")
	req.Region = "Right Cerebral White Matter"
	art := Paths(req)
	assert.Equal(t,
		fmt.Sprintf("Right_Cerebral_White_Matter_space-MNI152_desc-sphere%dmm_binarized_mask.nii.gz", req.RadiusMM),
		filepath.Base(art.Binarized))
}
