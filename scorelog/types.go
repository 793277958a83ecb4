// Package scorelog persists the generation history of a parameter search for
// offline analysis, as CSV, JSON lines or a SQLite archive. The log is
// write-only during a run; the engine never restores search state from it.
package scorelog

import (
	"strconv"
	"strings"

	"github.com/ariadne-cps/pExplore/score"
)

// Record is one point score of one generation, flattened for persistence.
type Record struct {
	SessionID    string  `json:"session_id"`
	Generation   int     `json:"generation"`
	Coordinates  []int   `json:"coordinates"`
	Successes    []int   `json:"successes"`
	HardFailures []int   `json:"hard_failures"`
	SoftFailures []int   `json:"soft_failures"`
	Objective    float64 `json:"objective"`
	Best         bool    `json:"best"`
}

// Records flattens a generation into persistable rows. The first row is the
// best-scoring point of the generation.
func Records(sessionID string, generation int, g score.Generation) []Record {
	records := make([]Record, 0, g.Len())
	for i, ps := range g {
		records = append(records, Record{
			SessionID:    sessionID,
			Generation:   generation,
			Coordinates:  ps.Point().Coordinates(),
			Successes:    ps.Score().Successes(),
			HardFailures: ps.Score().HardFailures(),
			SoftFailures: ps.Score().SoftFailures(),
			Objective:    ps.Score().Objective(),
			Best:         i == 0,
		})
	}
	return records
}

// joinInts renders an integer list as a semicolon-separated field.
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}

// splitInts parses a semicolon-separated field back into an integer list.
func splitInts(field string) ([]int, error) {
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, ";")
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
