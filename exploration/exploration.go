// Package exploration provides the strategies that derive the next
// generation of search points from a scored one.
package exploration

import (
	"fmt"

	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/space"
)

// Strategy produces the next points to evaluate from a scored generation.
// The returned set has the same cardinality as the input and holds no
// duplicates.
type Strategy interface {
	Name() string
	NextPoints(generation score.Generation) ([]space.Point, error)
}

// ShiftAndKeepBestHalf keeps the best half of the generation and pads it with
// shift-neighbours of the kept points back up to the generation size.
type ShiftAndKeepBestHalf struct{}

func (ShiftAndKeepBestHalf) Name() string { return "shift_and_keep_best_half" }

func (ShiftAndKeepBestHalf) NextPoints(generation score.Generation) ([]space.Point, error) {
	k := generation.Len()
	if k == 0 {
		return nil, fmt.Errorf("cannot explore from an empty generation")
	}
	keep := (k + 1) / 2
	seeds := generation.Points()[:keep]
	return space.ExtendByShifting(seeds, k)
}
