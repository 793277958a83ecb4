// Package plotter renders the trajectory of best-scoring search points
// across generations, as an Octave plotting script or as an SVG line chart.
package plotter

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariadne-cps/pExplore/score"
)

// WriteOctave emits an Octave script plotting, per search-space parameter,
// the coordinate of the best point of each generation. Underscores in
// parameter names are replaced by spaces in the legend.
func WriteOctave(w io.Writer, best []score.PointScore) error {
	if len(best) == 0 {
		return fmt.Errorf("no best scores to plot")
	}
	space := best[0].Point().Space()
	dimension := space.Dimension()

	if _, err := fmt.Fprintf(w, "x = [1:%d];\n", len(best)); err != nil {
		return err
	}
	for i := 0; i < dimension; i++ {
		var b strings.Builder
		for j, ps := range best {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", ps.Point().Coordinate(i))
		}
		if _, err := fmt.Fprintf(w, "y%d = [%s];\n", i, b.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "figure(1);\nhold on;\n"); err != nil {
		return err
	}
	for i, param := range space.Parameters() {
		name := strings.ReplaceAll(param.Name, "_", " ")
		if _, err := fmt.Fprintf(w, "plot(x, y%d, 'DisplayName', '%s');\n", i, name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "legend;\nhold off;\n"); err != nil {
		return err
	}
	return nil
}
