package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config failed: %v", err)
	}
	return path
}

func TestLoadSearchDescription(t *testing.T) {
	path := writeConfig(t, `
name: tuning
target: 12.5
iterations: 20
concurrency: 8
seed: 42
parameters:
  - name: step_order
    lower: 1
    upper: 6
  - name: depth
    lower: 0
    upper: 3
`)
	desc, err := LoadSearchDescription(path)
	if err != nil {
		t.Fatalf("LoadSearchDescription failed: %v", err)
	}
	if desc.Name != "tuning" {
		t.Errorf("Expected name 'tuning', got %q", desc.Name)
	}
	if desc.Target != 12.5 {
		t.Errorf("Expected target 12.5, got %v", desc.Target)
	}
	if desc.Concurrency != 8 {
		t.Errorf("Expected concurrency 8, got %d", desc.Concurrency)
	}
	if len(desc.Parameters) != 2 || desc.Parameters[1].Name != "depth" {
		t.Errorf("Unexpected parameters: %+v", desc.Parameters)
	}
	// Omitted fields keep their defaults.
	if desc.Input != 1.0 {
		t.Errorf("Expected default input 1.0, got %v", desc.Input)
	}
}

func TestLoadSearchDescriptionValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no parameters", "name: x\nparameters: []\n"},
		{"inverted bounds", "parameters:\n  - {name: a, lower: 5, upper: 1}\n"},
		{"bad iterations", "iterations: 0\nparameters:\n  - {name: a, lower: 0, upper: 1}\n"},
	}
	for _, c := range cases {
		path := writeConfig(t, c.content)
		if _, err := LoadSearchDescription(path); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestDefaultSearchDescriptionValidates(t *testing.T) {
	desc := DefaultSearchDescription()
	if err := desc.validate(); err != nil {
		t.Fatalf("Expected the default description to validate, got %v", err)
	}
}
