// Package diagplot renders per-stratum calibration diagnostics into a
// multi-page PDF: smoothed densities, the empirical alt probability and the
// resulting LLR correction, one page per stratum.
package diagplot

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"varcal/internal/calib"
)

// Curve colors, orange and red for the reference pair, grey and blue for the
// mirrored pair, purple for the theoretical probability.
var (
	refColor     = color.RGBA{R: 0xff, G: 0xa5, A: 0xff}
	monoRefColor = color.RGBA{R: 0xd6, G: 0x2c, B: 0x28, A: 0xff}
	altColor     = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	monoAltColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	theoryColor  = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
)

// Book renders one diagnostics page per calibrated stratum into a single
// PDF document.
type Book struct {
	canvas *vgpdf.Canvas
	pages  int
}

func NewBook() *Book {
	return &Book{canvas: vgpdf.New(11*vg.Inch, 7*vg.Inch)}
}

// AddPage renders the three diagnostic panels for one stratum. The title
// names the stratum the way the progress logs do.
func (b *Book) AddPage(title string, pd *calib.PlotData) error {
	if b.pages > 0 {
		b.canvas.NextPage()
	}
	b.pages++

	density := plot.New()
	density.Title.Text = title + " Calibration"
	density.Y.Label.Text = "Probability Density"
	density.Legend.Top = true
	for _, curve := range []struct {
		name  string
		ys    []float64
		color color.RGBA
	}{
		{"Reference", pd.RawRef, refColor},
		{"Mono Reference", pd.MonoRef, monoRefColor},
		{"Alternate", pd.RawAlt, altColor},
		{"Mono Alternate", pd.MonoAlt, monoAltColor},
	} {
		line, err := addLine(density, pd.Grid, curve.ys, curve.color)
		if err != nil {
			return err
		}
		density.Legend.Add(curve.name, line)
	}

	prob := plot.New()
	prob.Y.Label.Text = "Alt Probability"
	theory := make([]float64, len(pd.Grid))
	for i, x := range pd.Grid {
		theory[i] = 1 / (math.Exp(x) + 1)
	}
	if _, err := addLine(prob, pd.Grid, theory, theoryColor); err != nil {
		return err
	}
	if _, err := addLine(prob, pd.Grid, pd.MonoProb, refColor); err != nil {
		return err
	}

	corrected := plot.New()
	corrected.X.Label.Text = "Raw LLR"
	corrected.Y.Label.Text = "Calibrated LLR"
	raw := make([]float64, len(pd.Grid))
	for i, p := range pd.RawProb {
		raw[i] = math.Log((1 - p) / p)
	}
	if _, err := addLine(corrected, pd.Grid, raw, monoRefColor); err != nil {
		return err
	}
	mono := make([]float64, len(pd.Grid))
	for i, p := range pd.MonoProb {
		mono[i] = math.Log((1 - p) / p)
	}
	if _, err := addLine(corrected, pd.Grid, mono, refColor); err != nil {
		return err
	}

	dc := draw.New(b.canvas)
	tiles := draw.Tiles{Rows: 3, Cols: 1, PadY: vg.Millimeter * 3}
	panels := [][]*plot.Plot{{density}, {prob}, {corrected}}
	canvases := plot.Align(panels, tiles, dc)
	for row := range panels {
		panels[row][0].Draw(canvases[row][0])
	}
	return nil
}

func addLine(p *plot.Plot, xs, ys []float64, c color.RGBA) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("build line: %w", err)
	}
	line.LineStyle.Color = c
	p.Add(line)
	return line, nil
}

// WriteFile finishes the book and writes the document to path.
func (b *Book) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot pdf: %w", err)
	}
	if _, err := b.canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write plot pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close plot pdf: %w", err)
	}
	return nil
}
