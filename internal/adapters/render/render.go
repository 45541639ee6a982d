// Package render draws the error-distribution plot.
//
// Each call recomputes everything from the given values and atomically
// replaces the single output image, the Go counterpart of the original
// matplotlib histogram with a seaborn density overlay.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tkarimi/residual/pkg/metrics"
)

// Plot dimensions, matching the original's 10x6 inch figure.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch

	defaultBins = 20
	kdePoints   = 200
)

// Renderer renders absolute-error distributions to a PNG file.
type Renderer struct {
	bins int
}

// NewRenderer creates a renderer with configuration options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{bins: defaultBins}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws a density-normalized histogram of values with a Gaussian KDE
// overlay and overwrites the image at path.
func (r *Renderer) Render(values []float64, path string) error {
	if len(values) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Absolute error distribution"
	p.X.Label.Text = "Absolute error"
	p.Y.Label.Text = "Density"

	hist, err := plotter.NewHist(plotter.Values(values), r.bins)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	hist.Normalize(1)
	hist.FillColor = color.RGBA{R: 135, G: 206, B: 235, A: 200}
	p.Add(hist)

	curve := kde(values, kdePoints)
	line, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	line.Color = color.RGBA{R: 220, A: 255}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("density", line)

	if err := writeAtomic(p, path); err != nil {
		metrics.RecordRenderError()
		return err
	}
	metrics.RecordRender()
	return nil
}

// writeAtomic renders to a temp file in the target directory and renames it
// over path, so a reader never observes a half-written image.
func writeAtomic(p *plot.Plot, path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpName := tmp.Name()

	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if _, err := wt.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}
