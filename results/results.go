// Package results summarises a completed parameter search: per-parameter
// statistics of the best points, convergence of the trajectory, and the
// centroid optimum.
package results

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/scorelog"
)

// stableWindow is the number of trailing generations whose best point must
// agree for the search to count as converged.
const stableWindow = 3

// ParameterStats describes one search-space parameter across the best points
// of all generations.
type ParameterStats struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Mode  int     `json:"mode"`
	Final int     `json:"final"`
}

// Summary is the digest of one search run.
type Summary struct {
	Generations  int              `json:"generations"`
	Parameters   []ParameterStats `json:"parameters"`
	OptimalPoint []int            `json:"optimalPoint"`
	Converged    bool             `json:"converged"`
	ConvergedAt  int              `json:"convergedAt,omitempty"`
	BestCoords   []int            `json:"bestCoords"`
	BestObj      float64          `json:"bestObjective"`
}

// Summarize digests the best point scores of a run, one per generation.
func Summarize(best []score.PointScore) (*Summary, error) {
	if len(best) == 0 {
		return nil, fmt.Errorf("no generations to summarise")
	}
	names := make([]string, 0)
	for _, p := range best[0].Point().Space().Parameters() {
		names = append(names, p.Name)
	}
	coords := make([][]int, len(best))
	for i, ps := range best {
		coords[i] = ps.Point().Coordinates()
	}
	summary := summarise(names, coords)

	final := best[len(best)-1]
	summary.BestObj = final.Score().Objective()
	return summary, nil
}

// FromRecords digests archived records, using the best-flagged row of each
// generation. Parameter names are synthesised as p0, p1, ...
func FromRecords(records []scorelog.Record) (*Summary, error) {
	byGeneration := make(map[int]scorelog.Record)
	maxGeneration := -1
	for _, rec := range records {
		if !rec.Best {
			continue
		}
		byGeneration[rec.Generation] = rec
		if rec.Generation > maxGeneration {
			maxGeneration = rec.Generation
		}
	}
	if maxGeneration < 0 {
		return nil, fmt.Errorf("no best-flagged records found")
	}
	coords := make([][]int, 0, maxGeneration+1)
	var last scorelog.Record
	for i := 0; i <= maxGeneration; i++ {
		rec, ok := byGeneration[i]
		if !ok {
			return nil, fmt.Errorf("missing best record for generation %d", i)
		}
		coords = append(coords, rec.Coordinates)
		last = rec
	}
	names := make([]string, len(coords[0]))
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	summary := summarise(names, coords)
	summary.BestObj = last.Objective
	return summary, nil
}

func summarise(names []string, coords [][]int) *Summary {
	dimension := len(names)
	summary := &Summary{
		Generations: len(coords),
		BestCoords:  coords[len(coords)-1],
	}

	for d := 0; d < dimension; d++ {
		sum := 0.0
		counts := make(map[int]int)
		for _, c := range coords {
			sum += float64(c[d])
			counts[c[d]]++
		}
		mode, modeCount := 0, 0
		values := make([]int, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Ints(values)
		for _, v := range values {
			if counts[v] > modeCount {
				mode, modeCount = v, counts[v]
			}
		}
		mean := sum / float64(len(coords))
		summary.Parameters = append(summary.Parameters, ParameterStats{
			Name:  names[d],
			Mean:  mean,
			Mode:  mode,
			Final: coords[len(coords)-1][d],
		})
		summary.OptimalPoint = append(summary.OptimalPoint, int(math.Round(mean)))
	}

	summary.Converged, summary.ConvergedAt = convergence(coords)
	return summary
}

// convergence finds the first generation from which the best point never
// changes again, requiring at least stableWindow stable generations.
func convergence(coords [][]int) (bool, int) {
	last := coords[len(coords)-1]
	start := len(coords) - 1
	for start > 0 && equalCoords(coords[start-1], last) {
		start--
	}
	if len(coords)-start >= stableWindow {
		return true, start
	}
	return false, 0
}

func equalCoords(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SaveJSON writes the summary to a file, indented.
func (s *Summary) SaveJSON(filename string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// LoadJSON reads a summary written by SaveJSON.
func LoadJSON(filename string) (*Summary, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	return &s, nil
}
