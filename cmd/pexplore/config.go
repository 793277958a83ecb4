package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParameterConfig describes one search dimension in a search file.
type ParameterConfig struct {
	Name  string `yaml:"name"`
	Lower int    `yaml:"lower"`
	Upper int    `yaml:"upper"`
}

// SearchDescription is the YAML surface of the search command.
type SearchDescription struct {
	Name        string            `yaml:"name"`
	Target      float64           `yaml:"target"`
	Input       float64           `yaml:"input"`
	Iterations  int               `yaml:"iterations"`
	Concurrency int               `yaml:"concurrency"`
	Seed        int64             `yaml:"seed"`
	Parameters  []ParameterConfig `yaml:"parameters"`
}

// DefaultSearchDescription returns the built-in demo search: two parameters,
// order and level, steering the output towards a target of 5.
func DefaultSearchDescription() *SearchDescription {
	return &SearchDescription{
		Name:        "demo",
		Target:      5.0,
		Input:       1.0,
		Iterations:  10,
		Concurrency: 4,
		Seed:        1,
		Parameters: []ParameterConfig{
			{Name: "order", Lower: 1, Upper: 10},
			{Name: "level", Lower: 0, Upper: 4},
		},
	}
}

// LoadSearchDescription reads a search description file, filling omitted
// fields from the defaults.
func LoadSearchDescription(path string) (*SearchDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	desc := DefaultSearchDescription()
	if err := yaml.Unmarshal(data, desc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := desc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

func (d *SearchDescription) validate() error {
	if d.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", d.Iterations)
	}
	if d.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", d.Concurrency)
	}
	if len(d.Parameters) == 0 {
		return fmt.Errorf("at least one parameter is required")
	}
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter name must not be empty")
		}
		if p.Lower > p.Upper {
			return fmt.Errorf("parameter %q has inverted bounds", p.Name)
		}
	}
	return nil
}
