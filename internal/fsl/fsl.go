// Package fsl adapts the external FSL command-line tools behind the
// pipeline's service interfaces: std2imgcoord for the MNI→voxel transform,
// atlasquery for probabilistic atlas lookups, and fslmaths for the
// morphological mask steps. Commands run behind a Runner seam so tests never
// touch real binaries.
package fsl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrsinham/roiforge/internal/atlas"
	"github.com/mrsinham/roiforge/internal/mni"
)

// Runner executes one external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, stdin, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the host. A zero Timeout means the caller's
// context governs alone.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, stdin, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return stdout.String(), nil
}

// Tools exposes the FSL commands as pipeline services.
type Tools struct {
	Runner   Runner
	Template string // standard-space image (MNI152 template)
}

// NewTools wires the FSL adapters with a per-call timeout.
func NewTools(template string, timeout time.Duration) *Tools {
	return &Tools{Runner: ExecRunner{Timeout: timeout}, Template: template}
}

// VoxelFor implements atlas.Transformer via std2imgcoord, reading the voxel
// triple from the first three numeric tokens of stdout.
func (t *Tools) VoxelFor(ctx context.Context, c mni.Coord) (mni.Coord, error) {
	out, err := t.Runner.Run(ctx,
		fmt.Sprintf("%s %s %s\n", c.X, c.Y, c.Z),
		"std2imgcoord", "-img", t.Template, "-std", t.Template, "-vox", "-")
	if err != nil {
		return mni.Coord{}, err
	}
	voxel, err := mni.ParseTokens(out)
	if err != nil {
		return mni.Coord{}, fmt.Errorf("std2imgcoord output: %w", err)
	}
	return voxel, nil
}

var htmlTags = regexp.MustCompile(`<b>.*?</b>`)

// Lookup implements atlas.Querier via atlasquery. The tool wraps its output
// in minimal HTML (a bold atlas title, <br> row separators); that wrapping
// is normalized away before the rows are parsed.
func (t *Tools) Lookup(ctx context.Context, atlasName string, c mni.Coord) ([]atlas.Label, error) {
	out, err := t.Runner.Run(ctx, "",
		"atlasquery", "-a", atlasName, "-c", fmt.Sprintf("%s,%s,%s", c.X, c.Y, c.Z))
	if err != nil {
		return nil, err
	}

	normalized := strings.ReplaceAll(out, "<br>", "\n")
	normalized = htmlTags.ReplaceAllString(normalized, "")
	return atlas.ParseLabelTable(normalized)
}

// SeedMask implements mask.Builder: a single-voxel region of the template
// grid set to 1.
func (t *Tools) SeedMask(ctx context.Context, voxel mni.Coord, out string) error {
	x, y, z, err := voxel.Ints()
	if err != nil {
		return fmt.Errorf("seed voxel index: %w", err)
	}
	_, err = t.Runner.Run(ctx, "", "fslmaths",
		t.Template, "-mul", "0", "-add", "1",
		"-roi", strconv.Itoa(x), "1", strconv.Itoa(y), "1", strconv.Itoa(z), "1", "0", "1",
		out, "-odt", "float")
	return err
}

// GrowSphere implements mask.Builder: mean filtering with a spherical
// kernel turns the seed into a graded sphere.
func (t *Tools) GrowSphere(ctx context.Context, in string, radiusMM int, out string) error {
	_, err := t.Runner.Run(ctx, "", "fslmaths",
		in, "-kernel", "sphere", strconv.Itoa(radiusMM), "-fmean", out, "-odt", "float")
	return err
}

// Binarize implements mask.Builder: everything above zero becomes 1.
func (t *Tools) Binarize(ctx context.Context, in, out string) error {
	_, err := t.Runner.Run(ctx, "", "fslmaths", in, "-bin", out)
	return err
}
