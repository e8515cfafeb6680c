// Package mni holds the coordinate value type shared across the pipeline.
//
// Coordinates keep the exact text the cluster report emitted: two triples
// are the same coordinate if and only if their textual components match.
// Deduplication and tie-breaking downstream depend on that identity, so the
// components are never reformatted or numerically normalized.
package mni

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coord is an (x, y, z) triple in millimeters (MNI space) or grid indices
// (voxel space), carried as the original text tokens.
type Coord struct {
	X string
	Y string
	Z string
}

// New builds a Coord from three raw tokens.
func New(x, y, z string) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// Key is the registry/deduplication key for the coordinate.
func (c Coord) Key() string {
	return c.X + "," + c.Y + "," + c.Z
}

// String renders the triple for display and service arguments.
func (c Coord) String() string {
	return fmt.Sprintf("(%s, %s, %s)", c.X, c.Y, c.Z)
}

// Floats parses the three components as float64 values.
func (c Coord) Floats() (x, y, z float64, err error) {
	if x, err = strconv.ParseFloat(c.X, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("parse x %q: %w", c.X, err)
	}
	if y, err = strconv.ParseFloat(c.Y, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("parse y %q: %w", c.Y, err)
	}
	if z, err = strconv.ParseFloat(c.Z, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("parse z %q: %w", c.Z, err)
	}
	return x, y, z, nil
}

// Ints parses the components as integers, rounding fractional values to the
// nearest whole number. Used only at the voxel-index boundary.
func (c Coord) Ints() (x, y, z int, err error) {
	fx, fy, fz, err := c.Floats()
	if err != nil {
		return 0, 0, 0, err
	}
	return int(math.Round(fx)), int(math.Round(fy)), int(math.Round(fz)), nil
}

// ParseTokens builds a Coord from the first three tokens of a
// whitespace-delimited string. It is used to read service responses such as
// the voxel triple returned by the coordinate-transform tool.
func ParseTokens(s string) (Coord, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Coord{}, fmt.Errorf("expected 3 coordinate tokens, got %d in %q", len(fields), s)
	}
	for _, f := range fields[:3] {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return Coord{}, fmt.Errorf("non-numeric coordinate token %q", f)
		}
	}
	return Coord{X: fields[0], Y: fields[1], Z: fields[2]}, nil
}
