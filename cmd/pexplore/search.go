package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/manager"
	"github.com/ariadne-cps/pExplore/plotter"
	"github.com/ariadne-cps/pExplore/results"
	"github.com/ariadne-cps/pExplore/runner"
	"github.com/ariadne-cps/pExplore/scorelog"
	"github.com/ariadne-cps/pExplore/space"
)

// demoConfig spans the search space described in the search file; a bound
// point collapses every parameter to its coordinate.
type demoConfig struct {
	space *space.Space
	point *space.Point
}

func (c demoConfig) SearchSpace() *space.Space { return c.space }

func (c demoConfig) IsSingleton() bool { return c.point != nil }

func (c demoConfig) Singleton(p space.Point) demoConfig {
	return demoConfig{space: c.space, point: &p}
}

func (c demoConfig) coordinateSum() float64 {
	sum := 0.0
	for _, v := range c.point.Coordinates() {
		sum += float64(v)
	}
	return sum
}

// demoTask adds the configured coordinates to the input.
type demoTask struct {
	name string
}

func (t demoTask) Name() string { return t.name }

func (t demoTask) Run(x float64, cfg demoConfig) (float64, error) {
	return x + cfg.coordinateSum(), nil
}

func search(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "Search description file (YAML); omit for the built-in demo")
	dbPath := fs.String("db", "", "Archive generations into this SQLite database")
	jsonlPath := fs.String("jsonl", "", "Export the generation history as JSON lines")
	svgPath := fs.String("svg", "", "Render the best-point trajectories as SVG")
	plot := fs.Bool("plot", false, "Write the points.m Octave script")
	verbose := fs.Bool("v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pexplore search [options]

Run a parameter search over the demo task, which adds the configured
coordinates to the input and is steered towards the target output.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	desc := DefaultSearchDescription()
	if *configPath != "" {
		loaded, err := LoadSearchDescription(*configPath)
		if err != nil {
			return err
		}
		desc = loaded
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	parameters := make([]space.Parameter, len(desc.Parameters))
	for i, p := range desc.Parameters {
		parameters[i] = space.Parameter{Name: p.Name, Lower: p.Lower, Upper: p.Upper}
	}
	searchSpace, err := space.New(parameters...)
	if err != nil {
		return err
	}
	searchSpace.Reseed(desc.Seed)

	m := manager.New()
	m.SetLogger(log)
	m.SetConcurrency(desc.Concurrency)

	var store *scorelog.Store
	if *dbPath != "" {
		store, err = scorelog.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sessionID, err := store.StartSession(desc.Name)
		if err != nil {
			return err
		}
		m.SetArchive(store)
		log.Info().Str("session", sessionID).Str("db", *dbPath).Msg("archiving generations")
	}

	target := desc.Target
	steering := constraint.NewBuilder(func(_ float64, out float64) float64 {
		return -math.Abs(out-target) - 0.1
	}).
		WithName("distance_from_target").
		WithFailureKind(constraint.FailureKindSoft).
		WithObjectiveImpact(constraint.ObjectiveImpactUnsigned).
		Build()

	task := demoTask{name: desc.Name}
	cfg := demoConfig{space: searchSpace}
	runnable := runner.NewRunnableWith[float64, float64](task, cfg, m)
	defer runnable.Close()

	if err := runnable.SetConstraints([]constraint.Constraint[float64, float64]{steering}); err != nil {
		return err
	}

	log.Info().Str("task", desc.Name).Int("iterations", desc.Iterations).
		Int("concurrency", m.Concurrency()).Stringer("space", searchSpace).
		Msg("starting search")

	for i := 0; i < desc.Iterations; i++ {
		if err := runnable.Push(desc.Input); err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		out, err := runnable.Pull()
		var nace *constraint.NoActiveConstraintsError
		if errors.As(err, &nace) {
			log.Info().Int("iteration", i).Msg("all constraints resolved, stopping")
			break
		}
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		log.Info().Int("iteration", i).Float64("output", out).
			Float64("distance", math.Abs(out-target)).Msg("iteration completed")
	}

	best := m.BestScores()
	if len(best) == 0 {
		return fmt.Errorf("the search produced no generations")
	}

	if *plot {
		if err := m.PrintBestScores(); err != nil {
			return err
		}
		log.Info().Msg("wrote points.m")
	}
	if *svgPath != "" {
		svg := plotter.NewSVGPlotter(800, 500).
			SetTitle("Best points per generation").
			AddBestScores(best).
			Render()
		if err := os.WriteFile(*svgPath, []byte(svg), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", *svgPath, err)
		}
		log.Info().Str("file", *svgPath).Msg("wrote SVG")
	}
	if *jsonlPath != "" {
		if err := exportJSONL(*jsonlPath, desc.Name, m); err != nil {
			return err
		}
		log.Info().Str("file", *jsonlPath).Msg("wrote history")
	}

	summary, err := results.Summarize(best)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func exportJSONL(path, sessionID string, m *manager.Manager) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	writer := scorelog.NewJSONLWriter(f, sessionID)
	for i, g := range m.Scores() {
		if err := writer.RecordGeneration(i, g); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(s *results.Summary) {
	fmt.Printf("Generations: %d\n", s.Generations)
	fmt.Printf("Final objective: %g\n", s.BestObj)
	if s.Converged {
		fmt.Printf("Converged at generation %d\n", s.ConvergedAt)
	} else {
		fmt.Println("Not converged")
	}
	fmt.Println("Parameters:")
	for _, p := range s.Parameters {
		fmt.Printf("  %-20s mean %.2f  mode %d  final %d\n", p.Name, p.Mean, p.Mode, p.Final)
	}
	optimal := make([]string, len(s.OptimalPoint))
	for i, v := range s.OptimalPoint {
		optimal[i] = strconv.Itoa(v)
	}
	fmt.Printf("Optimal point: [%s]\n", joinComma(optimal))
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
