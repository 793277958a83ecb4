package space

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is an assignment of one coordinate per parameter of its space.
// The zero Point is not valid; points are created through a Space.
type Point struct {
	space  *Space
	coords []int
}

// Space returns the space the point belongs to.
func (p Point) Space() *Space {
	return p.space
}

// Coordinates returns a copy of the coordinate tuple, in parameter order.
func (p Point) Coordinates() []int {
	coords := make([]int, len(p.coords))
	copy(coords, p.coords)
	return coords
}

// Coordinate returns the coordinate at position i.
func (p Point) Coordinate(i int) int {
	return p.coords[i]
}

// Value returns the coordinate of the named parameter.
func (p Point) Value(name string) (int, error) {
	i := p.space.index(name)
	if i < 0 {
		return 0, fmt.Errorf("no parameter named %q", name)
	}
	return p.coords[i], nil
}

// Compare orders points lexicographically over their coordinates.
// It returns -1, 0 or +1.
func (p Point) Compare(q Point) int {
	for i := range p.coords {
		if p.coords[i] < q.coords[i] {
			return -1
		}
		if p.coords[i] > q.coords[i] {
			return 1
		}
	}
	return 0
}

// Equal reports whether the two points have identical coordinates.
func (p Point) Equal(q Point) bool {
	return len(p.coords) == len(q.coords) && p.Compare(q) == 0
}

// Key returns a canonical string form of the coordinates, usable as a map key.
func (p Point) Key() string {
	var b strings.Builder
	for i, c := range p.coords {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}

func (p Point) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range p.coords {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.space.parameters[i].Name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c))
	}
	b.WriteByte('}')
	return b.String()
}

// Neighbours returns every point at Hamming distance 1, staying within bounds.
func (p Point) Neighbours() []Point {
	var result []Point
	for i, param := range p.space.parameters {
		for _, delta := range []int{-1, 1} {
			c := p.coords[i] + delta
			if c < param.Lower || c > param.Upper {
				continue
			}
			coords := make([]int, len(p.coords))
			copy(coords, p.coords)
			coords[i] = c
			result = append(result, Point{space: p.space, coords: coords})
		}
	}
	return result
}

// RandomShifted grows a set of n distinct points from p, including p itself,
// by repeatedly shifting members of the set one coordinate at a time.
func (p Point) RandomShifted(n int) ([]Point, error) {
	return ExtendByShifting([]Point{p}, n)
}

// ExtendByShifting pads the seed set with shift-neighbours of its members
// until it holds target distinct points. Neighbours at Hamming distance 1 of
// the seeds are preferred; when the seeds have none left, the frontier moves
// outward through the neighbours of points added earlier. The seeds are
// always retained.
func ExtendByShifting(seeds []Point, target int) ([]Point, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("cannot extend an empty point set")
	}
	s := seeds[0].space
	if target > s.TotalPoints() {
		return nil, fmt.Errorf("requested %d points from a space of %d", target, s.TotalPoints())
	}
	result := make([]Point, 0, target)
	members := make(map[string]bool, target)
	for _, p := range seeds {
		if members[p.Key()] {
			continue
		}
		members[p.Key()] = true
		result = append(result, p)
	}
	seedCount := len(result)
	for len(result) < target {
		var frontier []Point
		for _, scope := range [][]Point{result[:seedCount], result} {
			for _, p := range scope {
				for _, q := range p.Neighbours() {
					if !members[q.Key()] {
						frontier = append(frontier, q)
					}
				}
			}
			if len(frontier) > 0 {
				break
			}
		}
		if len(frontier) == 0 {
			// Bounded integer grids are connected under unit shifts, so the
			// frontier only empties once every point is already a member.
			return nil, fmt.Errorf("exhausted the space at %d of %d points", len(result), target)
		}
		q := frontier[s.rng.Intn(len(frontier))]
		members[q.Key()] = true
		result = append(result, q)
	}
	return result, nil
}
