package picker

import (
	"strings"
	"testing"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/mni"
	"github.com/mrsinham/roiforge/internal/roi"
)

func TestSummaryTable(t *testing.T) {
	entries := []atlas.SummaryEntry{
		{
			ID:      1,
			Region:  "Precuneous Cortex",
			Percent: 37,
			Candidate: atlas.Candidate{
				MNI:   mni.New("6.00", "-52.00", "10.00"),
				Voxel: mni.New("42", "19", "41"),
			},
		},
		{
			ID:      2,
			Region:  "Inferior Frontal Gyrus, pars opercularis",
			Percent: 31,
			Candidate: atlas.Candidate{
				MNI:   mni.New("-46.00", "6.00", "30.00"),
				Voxel: mni.New("68", "67", "51"),
			},
		},
	}

	table := SummaryTable(entries)
	for _, want := range []string{
		"Precuneous Cortex",
		"Inferior Frontal Gyrus, pars opercularis",
		"37%",
		"(6.00, -52.00, 10.00)",
		"(68, 67, 51)",
	} {
		if !strings.Contains(table, want) {
			t.Errorf("summary table missing %q:\n%s", want, table)
		}
	}

	if strings.Index(table, "Precuneous") > strings.Index(table, "Inferior Frontal") {
		t.Error("entries must render in ID order")
	}
}

func TestOverlapWarnings(t *testing.T) {
	overlaps := []roi.Overlap{{
		A:          roi.Request{Region: "Precuneous Cortex"},
		B:          roi.Request{Region: "Heschl's Gyrus (includes H1 and H2)"},
		DistanceMM: 6.2,
	}}

	out := OverlapWarnings(overlaps)
	if !strings.Contains(out, "Precuneous Cortex") || !strings.Contains(out, "6.2mm") {
		t.Errorf("unexpected warning output: %q", out)
	}
	// Requests carry raw atlas names; the warning shows the cleaned label.
	if !strings.Contains(out, "Heschl's Gyrus") || strings.Contains(out, "includes H1") {
		t.Errorf("parenthetical annotation should be stripped from the warning: %q", out)
	}

	if got := OverlapWarnings(nil); got != "" {
		t.Errorf("no overlaps should render nothing, got %q", got)
	}
}
