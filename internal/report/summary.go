package report

import "gonum.org/v1/gonum/stat"

// ZSummary describes the z-statistic distribution of one cope's reports.
// It is logged once per run so sessions can be compared without reopening
// the raw tables.
type ZSummary struct {
	Clusters    int
	LocalMaxima int
	MaxZ        float64
	MeanZMax    float64
	MeanLocalZ  float64
}

// Summarize computes the z-statistic summary for a parsed report pair.
func Summarize(clusters []ClusterRecord, maxima []LocalMaximum) ZSummary {
	s := ZSummary{Clusters: len(clusters), LocalMaxima: len(maxima)}

	if len(clusters) > 0 {
		zs := make([]float64, len(clusters))
		for i, c := range clusters {
			zs[i] = c.ZMax
			if c.ZMax > s.MaxZ {
				s.MaxZ = c.ZMax
			}
		}
		s.MeanZMax = stat.Mean(zs, nil)
	}

	if len(maxima) > 0 {
		zs := make([]float64, len(maxima))
		for i, m := range maxima {
			zs[i] = m.Z
			if m.Z > s.MaxZ {
				s.MaxZ = m.Z
			}
		}
		s.MeanLocalZ = stat.Mean(zs, nil)
	}

	return s
}
