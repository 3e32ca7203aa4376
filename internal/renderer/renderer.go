// Package renderer turns report results into PNG charts.
//
// Every report renders only when its result has rows, and each chart runs in
// its own failure boundary so one broken chart does not stop the others.
package renderer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/pkg/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultDPI is the resolution figures are written at
const DefaultDPI = 180

// Options controls where figures go
type Options struct {
	OutDir string
	Save   bool
	Show   bool
	DPI    int
	// Out receives the summary lines printed instead of a chart.
	Out io.Writer
	// Open displays a written figure. Defaults to the system viewer.
	Open func(path string) error
}

// Renderer draws one chart per non-empty report
type Renderer struct {
	Options
	Logger  *logrus.Logger
	Written []string
}

// NewRenderer creates a new renderer, filling unset options with defaults
func NewRenderer(opts Options, logger *logrus.Logger) *Renderer {
	if opts.OutDir == "" {
		opts.OutDir = "figs"
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Open == nil {
		opts.Open = browser.OpenFile
	}

	return &Renderer{
		Options: opts,
		Logger:  logger,
	}
}

// RenderAll renders every report that has rows and returns the files written
func (r *Renderer) RenderAll(results models.ResultSet) []string {
	r.Written = nil

	r.render(results, catalog.ProductsByType, r.productsByType)
	r.render(results, catalog.ProductsByBrand, r.productsByBrand)
	r.render(results, catalog.ActiveOfferPrices, r.offerPrices)
	r.render(results, catalog.StockDistribution, r.stockDistribution)
	r.render(results, catalog.TyreDimensionFrequency, r.dimensionHeatmap)
	r.render(results, catalog.TyresBySeason, r.tyresBySeason)
	r.render(results, catalog.EULabelClasses, r.euLabels)
	r.render(results, catalog.PartnerPriceDelta, r.partnerPriceDelta)
	r.render(results, catalog.ProductsRecentActivity, r.recentActivity)

	return r.Written
}

// render runs one report's chart in its own failure boundary
func (r *Renderer) render(results models.ResultSet, name string, chart func(*models.Result) error) {
	result := results[name]
	if result.Empty() {
		r.Logger.Debugf("Skipping %s: no rows", name)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Errorf("%s chart failed: panic: %v", name, rec)
			r.Logger.Debugf("%s", debug.Stack())
		}
	}()

	if err := chart(result); err != nil {
		r.Logger.Errorf("%s chart failed: %v", name, err)
	}
}

// finalize persists and/or displays a figure. The plot is dropped by the caller afterwards.
func (r *Renderer) finalize(p *plot.Plot, name string, width, height vg.Length) error {
	if !r.Save && !r.Show {
		return nil
	}

	path := ""
	if r.Save {
		if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", r.OutDir, err)
		}
		path = filepath.Join(r.OutDir, name+".png")
		if err := r.writePNG(p, path, width, height); err != nil {
			return err
		}
		r.Written = append(r.Written, path)
		r.Logger.Debugf("Saved %s", path)
	}

	if r.Show {
		if path == "" {
			// Left in place: the viewer reads it after this process returns
			tmp, err := os.CreateTemp("", name+"-*.png")
			if err != nil {
				return fmt.Errorf("create temporary figure: %w", err)
			}
			path = tmp.Name()
			tmp.Close()
			if err := r.writePNG(p, path, width, height); err != nil {
				return err
			}
		}
		if err := r.Open(path); err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
	}

	return nil
}

func (r *Renderer) writePNG(p *plot.Plot, path string, width, height vg.Length) error {
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(r.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
