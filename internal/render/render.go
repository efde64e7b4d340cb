// Package render writes spectra and diagnostic maps as images. It only sees
// numeric arrays.
package render

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("render: nothing to draw")

// Figure size.
var (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// Curve is one labelled line.
type Curve struct {
	Label string
	X, Y  []float64
}

func (c Curve) xys() (plotter.XYs, error) {
	if len(c.X) != len(c.Y) {
		return nil, fmt.Errorf("render: curve %q has %d x and %d y values", c.Label, len(c.X), len(c.Y))
	}
	xy := make(plotter.XYs, len(c.X))
	for i := range c.X {
		xy[i].X = c.X[i]
		xy[i].Y = c.Y[i]
	}
	return xy, nil
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// Spectrum draws curves against wavelength, e.g. experiment and simulation.
func Spectrum(path, title string, curves ...Curve) error {
	if len(curves) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Wavelength (nm)"
	p.Y.Label.Text = "Intensity (a.u.)"
	p.Legend.Top = true

	var vs []interface{}
	for _, c := range curves {
		xy, err := c.xys()
		if err != nil {
			return err
		}
		vs = append(vs, c.Label, xy)
	}
	if err := plotutil.AddLines(p, vs...); err != nil {
		return err
	}
	return save(p, path)
}

// Contributions draws one curve per ion over a shared wavelength grid.
func Contributions(path, title string, wavelength []float64, labels []string, contributions [][]float64) error {
	if len(labels) != len(contributions) {
		return fmt.Errorf("render: %d labels for %d contributions", len(labels), len(contributions))
	}
	curves := make([]Curve, 0, len(contributions))
	for i, y := range contributions {
		if y == nil {
			continue
		}
		curves = append(curves, Curve{Label: labels[i], X: wavelength, Y: y})
	}
	return Spectrum(path, title, curves...)
}

// matrixGrid adapts a matrix to plotter.GridXYZ; columns run along x.
type matrixGrid struct {
	m      mat.Matrix
	lo, hi float64
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }
func (g matrixGrid) Min() float64       { return g.lo }
func (g matrixGrid) Max() float64       { return g.hi }

func ticks(labels []string) plot.ConstantTicks {
	t := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		t[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return t
}

// Heatmap draws m with rows labelled by ylabels and columns by xlabels.
// NaN cells are left blank.
func Heatmap(path, title, xname, yname string, xlabels, ylabels []string, m mat.Matrix) error {
	r, c := m.Dims()
	if r != len(ylabels) || c != len(xlabels) {
		return fmt.Errorf("render: %dx%d matrix with %d row and %d column labels", r, c, len(ylabels), len(xlabels))
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return ErrNoData
	}
	if lo == hi {
		hi = lo + 1
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xname
	p.Y.Label.Text = yname
	p.X.Tick.Marker = ticks(xlabels)
	p.Y.Tick.Marker = ticks(ylabels)

	p.Add(plotter.NewHeatMap(matrixGrid{m, lo, hi}, palette.Heat(32, 1)))
	return save(p, path)
}
