package roi

import (
	"gonum.org/v1/gonum/floats"
)

// Overlap flags two selected spheres whose center distance is smaller than
// the sum of their radii. Overlaps are advisory: masks are still built.
type Overlap struct {
	A, B       Request
	DistanceMM float64
}

// Overlaps reports every pair of requests whose spheres intersect in MNI
// space. Requests with unparseable coordinates are skipped (their masks are
// validated later at the synthesis boundary).
func Overlaps(requests []Request) []Overlap {
	type center struct {
		req Request
		xyz []float64
	}

	centers := make([]center, 0, len(requests))
	for _, r := range requests {
		x, y, z, err := r.MNI.Floats()
		if err != nil {
			continue
		}
		centers = append(centers, center{req: r, xyz: []float64{x, y, z}})
	}

	var overlaps []Overlap
	for i := 0; i < len(centers); i++ {
		for j := i + 1; j < len(centers); j++ {
			d := floats.Distance(centers[i].xyz, centers[j].xyz, 2)
			if d < float64(centers[i].req.RadiusMM+centers[j].req.RadiusMM) {
				overlaps = append(overlaps, Overlap{
					A:          centers[i].req,
					B:          centers[j].req,
					DistanceMM: d,
				})
			}
		}
	}
	return overlaps
}
