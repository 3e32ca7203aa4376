package renderer

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/vitebski/tyre-explorer/pkg/models"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Figure names, written as <name>.png
const (
	FigProductsByType   = "01_products_by_type"
	FigProductsByBrand  = "02_products_by_brand"
	FigOfferPriceHist   = "03_offer_price_hist_log"
	FigStockLow         = "04a_stock_0_20"
	FigStockHigh        = "04b_stock_gt20"
	FigDimensionHeatmap = "05_tyre_dim_heatmap"
	FigSeasonShare      = "06_tyre_by_season_pct"
	FigEUEffVsGrip      = "07_eu_label_eff_vs_grip"
	FigEUNoiseHist      = "08_eu_noise_hist"
	FigPartnerDelta     = "09_partner_price_delta"
	FigRecentActivity   = "10_recent_product_activity"
)

// stockSplit separates the bar chart of small stock values from the histogram of the rest
const stockSplit = 20

func (r *Renderer) productsByType(res *models.Result) error {
	if res.Len() == 1 {
		cnt, _ := models.ToInt64(res.Value(0, "cnt"))
		fmt.Fprintf(r.Out, "Total products (%s): %s\n", models.ToString(res.Value(0, "product_type")), humanize.Comma(cnt))
		return nil
	}

	counts := plotter.Values(res.Floats("cnt"))
	types := res.Strings("product_type")
	if len(counts) != len(types) {
		return fmt.Errorf("product counts have %d values for %d types", len(counts), len(types))
	}

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot("Products by Type")
	p.Y.Label.Text = "count"

	bars, err := newBars(counts, width)
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(types...)

	xys := make(plotter.XYs, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		xys[i] = plotter.XY{X: float64(i), Y: c}
		labels[i] = humanize.Comma(int64(c))
	}
	l, err := newLabels(xys, labels, text.XCenter, text.YBottom)
	if err != nil {
		return err
	}
	l.Offset = vg.Point{Y: vg.Points(2)}
	p.Add(l)

	return r.finalize(p, FigProductsByType, width, height)
}

func (r *Renderer) productsByBrand(res *models.Result) error {
	counts := res.Floats("cnt")
	brands := res.Strings("brand")
	if len(counts) != len(brands) {
		return fmt.Errorf("brand counts have %d values for %d brands", len(counts), len(brands))
	}

	total := 0.0
	for _, c := range counts {
		total += c
	}

	// Largest brand on top
	n := len(counts)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i := range counts {
		values[n-1-i] = counts[i]
		names[n-1-i] = brands[i]
	}

	width, height := 7*vg.Inch, 6*vg.Inch
	p := newPlot(fmt.Sprintf("Top %d Brands by Product Count", n))
	p.X.Label.Text = "products"

	bars, err := newBars(values, height)
	if err != nil {
		return err
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(names...)

	xys := make(plotter.XYs, n)
	labels := make([]string, n)
	for i, v := range values {
		xys[i] = plotter.XY{X: v, Y: float64(i)}
		share := 0.0
		if total > 0 {
			share = 100 * v / total
		}
		labels[i] = fmt.Sprintf("%.1f%%", share)
	}
	l, err := newLabels(xys, labels, text.XLeft, text.YCenter)
	if err != nil {
		return err
	}
	l.Offset = vg.Point{X: vg.Points(3)}
	p.Add(l)

	return r.finalize(p, FigProductsByBrand, width, height)
}

func (r *Renderer) offerPrices(res *models.Result) error {
	var prices []float64
	for _, v := range res.Floats("price_numeric") {
		// log axis
		if v > 0 {
			prices = append(prices, v)
		}
	}
	if len(prices) == 0 {
		r.Logger.Infof("No positive prices to plot")
		return nil
	}
	sort.Float64s(prices)

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot("Active Offer Price Distribution (log)")
	p.X.Label.Text = "price_numeric"
	p.Y.Label.Text = "count"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	bins := histogramBins(prices, 50, true)
	p.Add(newHistogram(bins))

	p95 := stat.Quantile(0.95, stat.LinInterp, prices, nil)
	top := maxWeight(bins)

	marker, err := plotter.NewLine(plotter.XYs{{X: p95, Y: 0}, {X: p95, Y: top}})
	if err != nil {
		return err
	}
	marker.LineStyle.Color = lineColor
	marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(marker)

	l, err := newLabels(plotter.XYs{{X: p95, Y: top * 0.9}}, []string{"95th %"}, text.XRight, text.YTop)
	if err != nil {
		return err
	}
	l.TextStyle[0].Rotation = math.Pi / 2
	p.Add(l)

	return r.finalize(p, FigOfferPriceHist, width, height)
}

func (r *Renderer) stockDistribution(res *models.Result) error {
	var high []float64
	low := make(map[float64]float64)
	for _, v := range res.Floats("stock") {
		if v <= stockSplit {
			low[v]++
		} else {
			high = append(high, v)
		}
	}

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot(fmt.Sprintf("Stock 0-%d (active offers)", stockSplit))
	p.X.Label.Text = "stock"
	p.Y.Label.Text = "count"

	// Drawn even when every value is above the split, as an empty frame
	if len(low) > 0 {
		keys := sortedKeys(low)
		values := make(plotter.Values, len(keys))
		names := make([]string, len(keys))
		for i, k := range keys {
			values[i] = low[k]
			names[i] = formatNumber(k)
		}

		bars, err := newBars(values, width)
		if err != nil {
			return err
		}
		p.Add(bars)
		p.NominalX(names...)
	} else {
		p.X.Min, p.X.Max = 0, stockSplit
		p.Y.Min, p.Y.Max = 0, 1
	}

	if err := r.finalize(p, FigStockLow, width, height); err != nil {
		return err
	}

	if len(high) == 0 {
		return nil
	}

	p = newPlot(fmt.Sprintf("Stock >%d (log y)", stockSplit))
	p.X.Label.Text = "stock"
	p.Y.Label.Text = "count"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	h := newHistogram(histogramBins(high, 30, false))
	h.LogY = true
	p.Add(h)

	return r.finalize(p, FigStockHigh, width, height)
}

func (r *Renderer) dimensionHeatmap(res *models.Result) error {
	type cell struct{ width, rim float64 }
	sums := make(map[cell]float64)
	widths := make(map[float64]float64)
	rims := make(map[float64]float64)

	for _, row := range res.Rows {
		w, okW := models.ToFloat(row["width_mm"])
		d, okD := models.ToFloat(row["rim_diam_in"])
		c, okC := models.ToFloat(row["count"])
		if !okW || !okD || !okC {
			continue
		}
		sums[cell{w, d}] += c
		widths[w] = 1
		rims[d] = 1
	}
	if len(sums) == 0 {
		r.Logger.Infof("No complete tyre dimensions to plot")
		return nil
	}

	rowKeys := sortedKeys(widths)
	colKeys := sortedKeys(rims)
	rowIndex := make(map[float64]int, len(rowKeys))
	for i, k := range rowKeys {
		rowIndex[k] = i
	}
	colIndex := make(map[float64]int, len(colKeys))
	for i, k := range colKeys {
		colIndex[k] = i
	}

	g := newGrid(len(rowKeys), len(colKeys))
	for k, v := range sums {
		g.cells[rowIndex[k.width]][colIndex[k.rim]] = v
	}

	hm := plotter.NewHeatMap(logGrid{g}, palette.Heat(255, 1))
	hm.Min = 0
	hm.Max = math.Log10(math.Max(g.max(), 1))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}

	width, height := 8*vg.Inch, 6*vg.Inch
	p := newPlot("Tyre Size Frequency (Width vs Rim Diameter)")
	p.X.Label.Text = "rim_diam_in"
	p.Y.Label.Text = "width_mm"
	p.Add(hm)
	p.X.Tick.Marker = categoryTicks(numberNames(colKeys))
	p.Y.Tick.Marker = categoryTicks(numberNames(rowKeys))

	return r.finalize(p, FigDimensionHeatmap, width, height)
}

func (r *Renderer) tyresBySeason(res *models.Result) error {
	counts := res.Floats("cnt")
	seasons := res.Strings("season")
	if len(counts) != len(seasons) {
		return fmt.Errorf("season counts have %d values for %d seasons", len(counts), len(seasons))
	}

	total := 0.0
	for _, c := range counts {
		total += c
	}
	shares := make(plotter.Values, len(counts))
	for i, c := range counts {
		if total > 0 {
			shares[i] = c / total
		}
	}

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot("Tyre Count by Season (%)")
	p.Y.Label.Text = "share"
	p.Y.Tick.Marker = percentTicks{}

	bars, err := newBars(shares, width)
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(seasons...)

	return r.finalize(p, FigSeasonShare, width, height)
}

func (r *Renderer) euLabels(res *models.Result) error {
	if res.HasValues("efficiency") && res.HasValues("grip") {
		if err := r.effVsGrip(res); err != nil {
			return err
		}
	}

	if !res.HasValues("eu_noise_db") {
		return nil
	}

	noise := res.Floats("eu_noise_db")
	if len(noise) == 0 {
		return nil
	}

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot("EU Noise (dB) Distribution")
	p.X.Label.Text = "eu_noise_db"
	p.Y.Label.Text = "count"
	p.Add(newHistogram(histogramBins(noise, 20, false)))

	return r.finalize(p, FigEUNoiseHist, width, height)
}

// effVsGrip draws the efficiency x grip cross tabulation with a count in every cell
func (r *Renderer) effVsGrip(res *models.Result) error {
	type pair struct{ eff, grip string }
	counts := make(map[pair]float64)
	effs := make(map[string]bool)
	grips := make(map[string]bool)

	for _, row := range res.Rows {
		if row["efficiency"] == nil || row["grip"] == nil {
			continue
		}
		e, g := models.ToString(row["efficiency"]), models.ToString(row["grip"])
		counts[pair{e, g}]++
		effs[e] = true
		grips[g] = true
	}
	if len(counts) == 0 {
		return nil
	}

	rowKeys := sortedStrings(effs)
	colKeys := sortedStrings(grips)

	g := newGrid(len(rowKeys), len(colKeys))
	var xys plotter.XYs
	var labels []string
	for ri, e := range rowKeys {
		for ci, gr := range colKeys {
			v := counts[pair{e, gr}]
			g.cells[ri][ci] = v
			xys = append(xys, plotter.XY{X: float64(ci), Y: float64(ri)})
			labels = append(labels, fmt.Sprintf("%d", int64(v)))
		}
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(g, cm.Palette(255))
	hm.Min = 0
	hm.Max = math.Max(g.max(), 1)

	width, height := 6*vg.Inch, 5*vg.Inch
	p := newPlot("EU Label: Efficiency vs Grip")
	p.X.Label.Text = "grip"
	p.Y.Label.Text = "efficiency"
	p.Add(hm)
	p.X.Tick.Marker = categoryTicks(colKeys)
	p.Y.Tick.Marker = categoryTicks(rowKeys)

	l, err := newLabels(xys, labels, text.XCenter, text.YCenter)
	if err != nil {
		return err
	}
	p.Add(l)

	return r.finalize(p, FigEUEffVsGrip, width, height)
}

func (r *Renderer) partnerPriceDelta(res *models.Result) error {
	diffs := res.Floats("diff")
	if len(diffs) == 0 {
		return nil
	}

	width, height := 6*vg.Inch, 4*vg.Inch
	p := newPlot("Partner Price Delta (base - partner)")
	p.X.Label.Text = "price difference"
	p.Y.Label.Text = "count"
	p.Add(newHistogram(histogramBins(diffs, 30, false)))

	return r.finalize(p, FigPartnerDelta, width, height)
}

func (r *Renderer) recentActivity(res *models.Result) error {
	var xys plotter.XYs
	for _, row := range res.Rows {
		month, ok := models.ToTime(row["month"])
		if !ok {
			continue
		}
		cnt, ok := models.ToFloat(row["cnt"])
		if !ok {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(month.Unix()), Y: cnt})
	}
	if len(xys) == 0 {
		return nil
	}
	sort.Slice(xys, func(i, j int) bool { return xys[i].X < xys[j].X })

	width, height := 8*vg.Inch, 4*vg.Inch
	p := newPlot("Products Created Per Month")
	p.Y.Label.Text = "count"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Color = barColor
	points.Color = barColor
	p.Add(line, points)

	return r.finalize(p, FigRecentActivity, width, height)
}

func numberNames(values []float64) []string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = formatNumber(v)
	}
	return names
}
