package renderer

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var (
	barColor  = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	lineColor = color.RGBA{R: 196, G: 78, B: 82, A: 255}
	gridColor = color.Gray{Y: 220}
)

// newPlot returns a plot with a title and a light grid
func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)
	return p
}

// histogramBins splits values into n bins. With logSpaced the bin edges are
// evenly spaced in log10 and values must be positive.
func histogramBins(values []float64, n int, logSpaced bool) []plotter.HistogramBin {
	if len(values) == 0 || n <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	forward := func(v float64) float64 { return v }
	inverse := forward
	if logSpaced {
		forward = math.Log10
		inverse = func(v float64) float64 { return math.Pow(10, v) }
	}

	start, end := forward(lo), forward(hi)
	if start == end {
		start, end = start-0.5, end+0.5
	}
	width := (end - start) / float64(n)

	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i].Min = inverse(start + float64(i)*width)
		bins[i].Max = inverse(start + float64(i+1)*width)
	}

	for _, v := range values {
		i := int((forward(v) - start) / width)
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Weight++
	}
	return bins
}

// newHistogram builds a filled histogram from precomputed bins
func newHistogram(bins []plotter.HistogramBin) *plotter.Histogram {
	return &plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
}

// maxWeight returns the tallest bin
func maxWeight(bins []plotter.HistogramBin) float64 {
	m := 0.0
	for _, b := range bins {
		m = math.Max(m, b.Weight)
	}
	return m
}

// newBars builds a bar chart sized to fit n bars across span
func newBars(values plotter.Values, span vg.Length) (*plotter.BarChart, error) {
	width := span * 0.6 / vg.Length(len(values))
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	return bars, nil
}

// newLabels builds text annotations with a common size and alignment
func newLabels(xys plotter.XYs, labels []string, xAlign text.XAlignment, yAlign text.YAlignment) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = vg.Points(8)
		l.TextStyle[i].XAlign = xAlign
		l.TextStyle[i].YAlign = yAlign
	}
	return l, nil
}

// percentTicks labels the default ticks of a share axis as percentages
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", ticks[i].Value*100)
		}
	}
	return ticks
}

// categoryTicks labels integer positions with category names
func categoryTicks(names []string) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(names))
	for i, name := range names {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	return ticks
}

// formatNumber drops a trailing .0 from whole numbers
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortedKeys returns the keys of a float-keyed map in ascending order
func sortedKeys(m map[float64]float64) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// sortedStrings returns the keys of a set in ascending order
func sortedStrings(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// grid is a dense matrix addressed by column and row index, suitable for a heat map
type grid struct {
	cells [][]float64 // [row][column]
	cols  int
	rows  int
}

func newGrid(rows, cols int) *grid {
	cells := make([][]float64, rows)
	for r := range cells {
		cells[r] = make([]float64, cols)
	}
	return &grid{cells: cells, cols: cols, rows: rows}
}

func (g *grid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *grid) Z(c, r int) float64 { return g.cells[r][c] }
func (g *grid) X(c int) float64    { return float64(c) }
func (g *grid) Y(r int) float64    { return float64(r) }

// max returns the largest cell value
func (g *grid) max() float64 {
	m := math.Inf(-1)
	for _, row := range g.cells {
		for _, v := range row {
			m = math.Max(m, v)
		}
	}
	return m
}

// logGrid presents a grid in log10 space. Cells below one are blank.
type logGrid struct {
	*grid
}

func (g logGrid) Z(c, r int) float64 {
	v := g.grid.Z(c, r)
	if v < 1 {
		return math.NaN()
	}
	return math.Log10(v)
}
