// Package manager hosts the process-wide coordinator of parameter-search
// execution: it owns the exploration strategy, the history of scored
// generations, the concurrency figure used for runner selection, and the
// emission of plotting output.
package manager

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ariadne-cps/pExplore/exploration"
	"github.com/ariadne-cps/pExplore/plotter"
	"github.com/ariadne-cps/pExplore/score"
)

// Archive receives every generation as it is appended, for offline analysis.
// Implementations must be safe for use from the coordinator goroutine.
type Archive interface {
	RecordGeneration(index int, generation score.Generation) error
}

// Manager is the process-wide coordinator. Use Instance for the shared one;
// New builds an isolated manager for tests.
type Manager struct {
	mu          sync.Mutex
	exploration exploration.Strategy
	scores      []score.Generation
	concurrency int
	archive     Archive
	log         zerolog.Logger
}

// New creates a manager with the default exploration strategy and the
// hardware concurrency.
func New() *Manager {
	return &Manager{
		exploration: exploration.ShiftAndKeepBestHalf{},
		concurrency: runtime.NumCPU(),
		log:         zerolog.Nop(),
	}
}

var instance = sync.OnceValue(New)

// Instance returns the lazily-initialised process-wide manager.
func Instance() *Manager {
	return instance()
}

// SetLogger installs the logger used for coordinator-level events.
func (m *Manager) SetLogger(log zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

// Logger returns the coordinator logger.
func (m *Manager) Logger() zerolog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log
}

// SetExploration replaces the exploration strategy handed to new runners.
func (m *Manager) SetExploration(strategy exploration.Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exploration = strategy
}

// Exploration returns the current exploration strategy.
func (m *Manager) Exploration() exploration.Strategy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exploration
}

// SetConcurrency overrides the concurrency used for runner selection.
// Values below one are a programmer error.
func (m *Manager) SetConcurrency(concurrency int) {
	if concurrency < 1 {
		panic(fmt.Sprintf("concurrency must be positive, got %d", concurrency))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concurrency = concurrency
}

// Concurrency returns the concurrency used for runner selection.
func (m *Manager) Concurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.concurrency
}

// SetArchive installs a sink that receives every appended generation.
// A nil archive detaches the current one.
func (m *Manager) SetArchive(archive Archive) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archive = archive
}

// AppendScores appends a generation to the history and forwards it to the
// archive, if any.
func (m *Manager) AppendScores(generation score.Generation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, generation)
	if m.archive != nil {
		if err := m.archive.RecordGeneration(len(m.scores)-1, generation); err != nil {
			m.log.Warn().Err(err).Int("generation", len(m.scores)-1).Msg("archiving generation failed")
		}
	}
}

// Scores returns a copy of the generation history.
func (m *Manager) Scores() []score.Generation {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores := make([]score.Generation, len(m.scores))
	copy(scores, m.scores)
	return scores
}

// ClearScores drops the whole generation history.
func (m *Manager) ClearScores() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = nil
}

// BestScores returns the best point score of each generation, in order.
func (m *Manager) BestScores() []score.PointScore {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := make([]score.PointScore, 0, len(m.scores))
	for _, g := range m.scores {
		best = append(best, g.Best())
	}
	return best
}

// OptimalPoint returns, per coordinate, the rounded mean of the best point of
// every generation. With no history it returns an empty list.
func (m *Manager) OptimalPoint() []int {
	best := m.BestScores()
	if len(best) == 0 {
		return nil
	}
	dimension := best[0].Point().Space().Dimension()
	sums := make([]float64, dimension)
	for _, ps := range best {
		for i, c := range ps.Point().Coordinates() {
			sums[i] += float64(c)
		}
	}
	result := make([]int, dimension)
	for i, sum := range sums {
		result[i] = int(math.Round(sum / float64(len(best))))
	}
	return result
}

// PrintBestScores writes the best-score trajectories as an Octave plotting
// script named points.m in the working directory. With no history it writes
// nothing.
func (m *Manager) PrintBestScores() error {
	best := m.BestScores()
	if len(best) == 0 {
		return nil
	}
	file, err := os.Create("points.m")
	if err != nil {
		return fmt.Errorf("creating points.m: %w", err)
	}
	defer file.Close()
	if err := plotter.WriteOctave(file, best); err != nil {
		return fmt.Errorf("writing points.m: %w", err)
	}
	return nil
}
