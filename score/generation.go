package score

import (
	"fmt"
	"sort"

	"github.com/ariadne-cps/pExplore/space"
)

// PointScore couples a search point with the score its output earned.
type PointScore struct {
	point space.Point
	score Score
}

// NewPointScore creates a PointScore.
func NewPointScore(p space.Point, s Score) PointScore {
	return PointScore{point: p, score: s}
}

// Point returns the search point.
func (ps PointScore) Point() space.Point { return ps.point }

// Score returns the score.
func (ps PointScore) Score() Score { return ps.score }

// Compare orders by score first, breaking ties by point order.
func (ps PointScore) Compare(o PointScore) int {
	if c := ps.score.Compare(o.score); c != 0 {
		return c
	}
	return ps.point.Compare(o.point)
}

// Less reports whether ps orders strictly before o.
func (ps PointScore) Less(o PointScore) bool {
	return ps.Compare(o) < 0
}

func (ps PointScore) String() string {
	return fmt.Sprintf("{%v: %v}", ps.point, ps.score)
}

// Generation is the duplicate-free, ascending-ordered set of point scores
// produced by one iteration of the parameter-search runner. The first element
// is the best under the score order.
type Generation []PointScore

// NewGeneration sorts and deduplicates the given point scores.
func NewGeneration(scores ...PointScore) Generation {
	sorted := make([]PointScore, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	var result Generation
	for _, ps := range sorted {
		if len(result) > 0 && result[len(result)-1].Compare(ps) == 0 {
			continue
		}
		result = append(result, ps)
	}
	return result
}

// Best returns the best-scoring element.
func (g Generation) Best() PointScore {
	return g[0]
}

// Len returns the number of point scores in the generation.
func (g Generation) Len() int {
	return len(g)
}

// Points returns the search points of the generation, in score order.
func (g Generation) Points() []space.Point {
	points := make([]space.Point, len(g))
	for i, ps := range g {
		points[i] = ps.point
	}
	return points
}
