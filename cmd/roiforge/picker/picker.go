// Package picker is the interactive selection surface in front of the
// pipeline: it shows the ranked ROI summary as a table and asks which
// entries to turn into spherical masks, at what radius. All validation is
// delegated to the roi package; the picker only owns the terminal loop.
package picker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/roi"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("244"))

	rowStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("208"))
)

// Selection is the picker's result: entry IDs plus the sphere radius.
type Selection struct {
	IDs      []int
	RadiusMM int
}

// SummaryTable renders the ranked entries for display.
func SummaryTable(entries []atlas.SummaryEntry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Anatomical ROI candidates"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-45s %-6s %-22s %-16s", "ID", "Region", "Prob", "MNI (mm)", "Voxel")))
	b.WriteString("\n")
	for _, e := range entries {
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-4d %-45s %3d%%  %-22s %-16s",
			e.ID, e.Region, e.Percent, e.Candidate.MNI.String(), e.Candidate.Voxel.String())))
		b.WriteString("\n")
	}
	return b.String()
}

// OverlapWarnings renders the advisory lines for overlapping spheres.
func OverlapWarnings(overlaps []roi.Overlap) string {
	var b strings.Builder
	for _, o := range overlaps {
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"warning: %s and %s spheres overlap (centers %.1fmm apart)",
			roi.CleanRegion(o.A.Region), roi.CleanRegion(o.B.Region), o.DistanceMM)))
		b.WriteString("\n")
	}
	return b.String()
}

// Pick runs the interactive form over the ranked summary. The returned
// selection is already validated.
func Pick(entries []atlas.SummaryEntry, defaultRadiusMM int) (Selection, error) {
	options := make([]huh.Option[int], 0, len(entries))
	for _, e := range entries {
		label := fmt.Sprintf("%d  %s (%d%%) at %s", e.ID, roi.CleanRegion(e.Region), e.Percent, e.Candidate.MNI.String())
		options = append(options, huh.NewOption(label, e.ID).Selected(true))
	}

	var ids []int
	radiusStr := strconv.Itoa(defaultRadiusMM)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Regions of interest").
				Description("Deselect any entries you do not want masks for.").
				Options(options...).
				Value(&ids).
				Validate(func(selected []int) error {
					if len(selected) == 0 {
						return fmt.Errorf("select at least one ROI")
					}
					return nil
				}),
			huh.NewInput().
				Title("Sphere radius").
				Description(`Millimeters; "7" and "7mm" are equivalent.`).
				Value(&radiusStr).
				Validate(func(s string) error {
					_, err := roi.ParseRadius(s)
					return err
				}),
		),
	)

	if err := form.Run(); err != nil {
		return Selection{}, err
	}

	radius, err := roi.ParseRadius(radiusStr)
	if err != nil {
		return Selection{}, err
	}
	return Selection{IDs: ids, RadiusMM: radius}, nil
}
