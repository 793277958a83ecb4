// Package space defines discrete search spaces of named integer parameters,
// the points that address them, and the contract a task configuration must
// satisfy to be collapsed onto a single point.
package space

import (
	"fmt"
	"math/rand"
)

// Parameter is one named dimension of a search space. Bounds are inclusive.
type Parameter struct {
	Name  string
	Lower int
	Upper int
}

// Size returns the number of admissible values for the parameter.
func (p Parameter) Size() int {
	return p.Upper - p.Lower + 1
}

// Space is the cross product of its parameter domains.
type Space struct {
	parameters []Parameter
	rng        *rand.Rand
}

// New creates a search space over the given parameters.
// Parameter names must be unique and non-empty, and bounds must be ordered.
func New(parameters ...Parameter) (*Space, error) {
	if len(parameters) == 0 {
		return nil, fmt.Errorf("a search space needs at least one parameter")
	}
	seen := make(map[string]bool, len(parameters))
	for _, p := range parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter name must not be empty")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Lower > p.Upper {
			return nil, fmt.Errorf("parameter %q has lower bound %d above upper bound %d", p.Name, p.Lower, p.Upper)
		}
	}
	params := make([]Parameter, len(parameters))
	copy(params, parameters)
	return &Space{parameters: params, rng: rand.New(rand.NewSource(1))}, nil
}

// Reseed resets the space's random source, making shift generation reproducible.
func (s *Space) Reseed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Dimension returns the number of parameters.
func (s *Space) Dimension() int {
	return len(s.parameters)
}

// Parameters returns a copy of the parameter list, in declaration order.
func (s *Space) Parameters() []Parameter {
	params := make([]Parameter, len(s.parameters))
	copy(params, s.parameters)
	return params
}

// TotalPoints returns the number of distinct points in the space.
func (s *Space) TotalPoints() int {
	total := 1
	for _, p := range s.parameters {
		total *= p.Size()
	}
	return total
}

// index returns the position of the named parameter, or -1.
func (s *Space) index(name string) int {
	for i, p := range s.parameters {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// InitialPoint returns the midpoint of every parameter domain.
func (s *Space) InitialPoint() Point {
	coords := make([]int, len(s.parameters))
	for i, p := range s.parameters {
		coords[i] = (p.Lower + p.Upper) / 2
	}
	return Point{space: s, coords: coords}
}

// Point binds the given coordinates to the space.
func (s *Space) Point(coordinates []int) (Point, error) {
	if len(coordinates) != len(s.parameters) {
		return Point{}, fmt.Errorf("expected %d coordinates, got %d", len(s.parameters), len(coordinates))
	}
	for i, c := range coordinates {
		p := s.parameters[i]
		if c < p.Lower || c > p.Upper {
			return Point{}, fmt.Errorf("coordinate %d for parameter %q outside [%d,%d]", c, p.Name, p.Lower, p.Upper)
		}
	}
	coords := make([]int, len(coordinates))
	copy(coords, coordinates)
	return Point{space: s, coords: coords}, nil
}

// RandomPoint draws a uniformly random point from the space.
func (s *Space) RandomPoint() Point {
	coords := make([]int, len(s.parameters))
	for i, p := range s.parameters {
		coords[i] = p.Lower + s.rng.Intn(p.Size())
	}
	return Point{space: s, coords: coords}
}

func (s *Space) String() string {
	out := "{"
	for i, p := range s.parameters {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s:[%d,%d]", p.Name, p.Lower, p.Upper)
	}
	return out + "}"
}
