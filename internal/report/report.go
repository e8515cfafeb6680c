// Package report parses the fixed-column statistical reports produced by
// cluster-level thresholding: the cluster summary table and the local-maxima
// table. Both are whitespace-delimited with a single header line; rows that
// do not carry enough columns (blank lines, truncated footers) are skipped.
package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mrsinham/roiforge/internal/mni"
)

// Cluster summary rows carry at least 16 positional fields; local-maxima
// rows carry at least 5.
const (
	minClusterFields  = 16
	minLocalMaxFields = 5
)

// ClusterRecord is one row of the cluster summary report.
type ClusterRecord struct {
	Index        int
	Voxels       int
	P            float64
	NegLog10P    float64
	ZMax         float64
	ZMaxCoord    mni.Coord
	ZCOGCoord    mni.Coord
	CopeMaxCoord mni.Coord
}

// LocalMaximum is one row of the local-maxima report: a secondary peak
// within a cluster.
type LocalMaximum struct {
	ClusterIndex int
	Z            float64
	Coord        mni.Coord
}

// ParseClusters reads the cluster summary table from text.
func ParseClusters(text string) ([]ClusterRecord, error) {
	var records []ClusterRecord
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < minClusterFields {
			continue
		}
		if isHeader(fields) {
			continue
		}

		rec, err := parseClusterRow(fields)
		if err != nil {
			return nil, fmt.Errorf("cluster row %q: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseLocalMaxima reads the local-maxima table from text.
func ParseLocalMaxima(text string) ([]LocalMaximum, error) {
	var maxima []LocalMaximum
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < minLocalMaxFields {
			continue
		}
		if isHeader(fields) {
			continue
		}

		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("local maximum row %q: cluster index: %w", line, err)
		}
		z, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("local maximum row %q: z value: %w", line, err)
		}
		maxima = append(maxima, LocalMaximum{
			ClusterIndex: idx,
			Z:            z,
			Coord:        mni.New(fields[2], fields[3], fields[4]),
		})
	}
	return maxima, nil
}

// LoadClusters reads and parses a cluster report file. A missing or
// unreadable file is fatal for the cope being processed.
func LoadClusters(path string) ([]ClusterRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cluster report: %w", err)
	}
	return ParseClusters(string(data))
}

// LoadLocalMaxima reads and parses a local-maxima report file.
func LoadLocalMaxima(path string) ([]LocalMaximum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local-maxima report: %w", err)
	}
	return ParseLocalMaxima(string(data))
}

// isHeader recognizes the column-header line. The reports label the first
// column "Cluster Index"; any non-numeric first token is treated the same
// way.
func isHeader(fields []string) bool {
	if strings.EqualFold(fields[0], "cluster") {
		return true
	}
	_, err := strconv.Atoi(fields[0])
	return err != nil
}

// Column layout of a cluster summary row:
// index(0) voxels(1) p(2) -log10p(3) zmax(4) zmax x,y,z(5-7)
// zcog x,y,z(8-10) copemax(11, unused) copemax x,y,z(12-14).
func parseClusterRow(fields []string) (ClusterRecord, error) {
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("index: %w", err)
	}
	voxels, err := strconv.Atoi(fields[1])
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("voxel count: %w", err)
	}
	p, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("p value: %w", err)
	}
	negLogP, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("-log10(p): %w", err)
	}
	zmax, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("z max: %w", err)
	}

	return ClusterRecord{
		Index:        idx,
		Voxels:       voxels,
		P:            p,
		NegLog10P:    negLogP,
		ZMax:         zmax,
		ZMaxCoord:    mni.New(fields[5], fields[6], fields[7]),
		ZCOGCoord:    mni.New(fields[8], fields[9], fields[10]),
		CopeMaxCoord: mni.New(fields[12], fields[13], fields[14]),
	}, nil
}
