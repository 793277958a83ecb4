package plotter

import (
	"fmt"
	"math"
	"strings"

	"github.com/ariadne-cps/pExplore/score"
)

// Series is a single line of the chart.
type Series struct {
	X     []float64
	Y     []float64
	Label string
	Color string
}

// SVGPlotter draws line charts of coordinate trajectories.
type SVGPlotter struct {
	Width      float64
	Height     float64
	MarginTop  float64
	MarginLeft float64
	PlotWidth  float64
	PlotHeight float64
	Title      string
	XLabel     string
	YLabel     string
	Series     []Series
}

// NewSVGPlotter creates a plotter with the given canvas size.
func NewSVGPlotter(width, height float64) *SVGPlotter {
	const top, right, bottom, left = 40.0, 110.0, 50.0, 60.0
	return &SVGPlotter{
		Width:      width,
		Height:     height,
		MarginTop:  top,
		MarginLeft: left,
		PlotWidth:  width - left - right,
		PlotHeight: height - top - bottom,
		XLabel:     "Generation",
		YLabel:     "Coordinate",
	}
}

// SetTitle sets the chart title.
func (p *SVGPlotter) SetTitle(title string) *SVGPlotter {
	p.Title = title
	return p
}

// AddSeries appends a line. An empty color picks from the default palette.
func (p *SVGPlotter) AddSeries(x, y []float64, label, color string) *SVGPlotter {
	if color == "" {
		palette := []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#a65628"}
		color = palette[len(p.Series)%len(palette)]
	}
	p.Series = append(p.Series, Series{X: x, Y: y, Label: label, Color: color})
	return p
}

// AddBestScores adds one series per search-space parameter, tracing the
// best point coordinate of each generation.
func (p *SVGPlotter) AddBestScores(best []score.PointScore) *SVGPlotter {
	if len(best) == 0 {
		return p
	}
	space := best[0].Point().Space()
	x := make([]float64, len(best))
	for i := range best {
		x[i] = float64(i + 1)
	}
	for d, param := range space.Parameters() {
		y := make([]float64, len(best))
		for i, ps := range best {
			y[i] = float64(ps.Point().Coordinate(d))
		}
		p.AddSeries(x, y, strings.ReplaceAll(param.Name, "_", " "), "")
	}
	return p
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// Render generates the SVG document.
func (p *SVGPlotter) Render() string {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, s := range p.Series {
		for i := range s.X {
			xmin = math.Min(xmin, s.X[i])
			xmax = math.Max(xmax, s.X[i])
			ymin = math.Min(ymin, s.Y[i])
			ymax = math.Max(ymax, s.Y[i])
		}
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 1
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 1
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	pad := (ymax - ymin) * 0.1
	ymin -= pad
	ymax += pad

	sx := func(x float64) float64 {
		return p.MarginLeft + (x-xmin)/(xmax-xmin)*p.PlotWidth
	}
	sy := func(y float64) float64 {
		return p.MarginTop + p.PlotHeight - (y-ymin)/(ymax-ymin)*p.PlotHeight
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, int(p.Width), int(p.Height))
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#f8f9fa"/>`, int(p.Width), int(p.Height))

	if p.Title != "" {
		fmt.Fprintf(&sb, `<text x="%f" y="25" text-anchor="middle" font-family="sans-serif" font-size="16" font-weight="bold">%s</text>`,
			p.Width/2, escape(p.Title))
	}

	// Axes.
	fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		p.MarginLeft, p.MarginTop, p.MarginLeft, p.MarginTop+p.PlotHeight)
	fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		p.MarginLeft, p.MarginTop+p.PlotHeight, p.MarginLeft+p.PlotWidth, p.MarginTop+p.PlotHeight)
	fmt.Fprintf(&sb, `<text x="%f" y="%f" text-anchor="middle" font-family="sans-serif" font-size="12">%s</text>`,
		p.MarginLeft+p.PlotWidth/2, p.Height-10, escape(p.XLabel))
	fmt.Fprintf(&sb, `<text x="15" y="%f" text-anchor="middle" font-family="sans-serif" font-size="12" transform="rotate(-90, 15, %f)">%s</text>`,
		p.MarginTop+p.PlotHeight/2, p.MarginTop+p.PlotHeight/2, escape(p.YLabel))

	// Ticks and grid.
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		x := xmin + (xmax-xmin)*float64(i)/ticks
		px := sx(x)
		fmt.Fprintf(&sb, `<text x="%f" y="%f" text-anchor="middle" font-family="sans-serif" font-size="10">%.0f</text>`,
			px, p.MarginTop+p.PlotHeight+18, x)
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			px, p.MarginTop, px, p.MarginTop+p.PlotHeight)

		y := ymin + (ymax-ymin)*float64(i)/ticks
		py := sy(y)
		fmt.Fprintf(&sb, `<text x="%f" y="%f" text-anchor="end" font-family="sans-serif" font-size="10">%.1f</text>`,
			p.MarginLeft-8, py+4, y)
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			p.MarginLeft, py, p.MarginLeft+p.PlotWidth, py)
	}

	// Lines.
	for _, s := range p.Series {
		if len(s.X) == 0 {
			continue
		}
		var path strings.Builder
		for i := range s.X {
			if i == 0 {
				fmt.Fprintf(&path, "M%f,%f", sx(s.X[i]), sy(s.Y[i]))
			} else {
				fmt.Fprintf(&path, " L%f,%f", sx(s.X[i]), sy(s.Y[i]))
			}
		}
		fmt.Fprintf(&sb, `<path d="%s" stroke="%s" stroke-width="2" fill="none"/>`, path.String(), s.Color)
	}

	// Legend.
	legendY := p.MarginTop + 10
	for _, s := range p.Series {
		if s.Label == "" {
			continue
		}
		x1 := p.MarginLeft + p.PlotWidth + 10
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="2"/>`,
			x1, legendY, x1+20, legendY, s.Color)
		fmt.Fprintf(&sb, `<text x="%f" y="%f" font-family="sans-serif" font-size="10">%s</text>`,
			x1+25, legendY+4, escape(s.Label))
		legendY += 18
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
