// Package grid scans simulated states over a (temperature, density) grid.
package grid

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/cowan/internal/synth"
)

// Axes of a scan: arithmetic in temperature [eV], logarithmic in density
// [cm^-3].
type Axes struct {
	Temperature []float64
	Density     []float64
}

// AxesSpec describes Axes the way the project file does: the density limits
// are base*10^index.
type AxesSpec struct {
	TMin, TMax float64
	TPoints    int

	NeBaseMin  float64
	NeIndexMin int
	NeBaseMax  float64
	NeIndexMax int
	NePoints   int
}

func span(n int, lo, hi float64, log bool) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1 || lo == hi:
		return []float64{lo}
	case log:
		return floats.LogSpan(make([]float64, n), lo, hi)
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// NewAxes spans the temperature axis linearly and the density axis
// logarithmically. An axis with equal limits has a single point.
func NewAxes(spec AxesSpec) (Axes, error) {
	neMin := spec.NeBaseMin * math.Pow(10, float64(spec.NeIndexMin))
	neMax := spec.NeBaseMax * math.Pow(10, float64(spec.NeIndexMax))
	switch {
	case spec.TPoints < 1 || spec.NePoints < 1:
		return Axes{}, fmt.Errorf("grid: axes need at least one point, have %d x %d", spec.TPoints, spec.NePoints)
	case !(spec.TMin > 0) || spec.TMax < spec.TMin:
		return Axes{}, fmt.Errorf("grid: bad temperature range [%v, %v]", spec.TMin, spec.TMax)
	case !(neMin > 0) || neMax < neMin:
		return Axes{}, fmt.Errorf("grid: bad density range [%v, %v]", neMin, neMax)
	}
	return Axes{
		Temperature: span(spec.TPoints, spec.TMin, spec.TMax, false),
		Density:     span(spec.NePoints, neMin, neMax, true),
	}, nil
}

func (a Axes) Len() int { return len(a.Temperature) * len(a.Density) }

// Keys is the Cartesian product of the axes, temperature major.
func (a Axes) Keys() []Key {
	keys := make([]Key, 0, a.Len())
	for _, T := range a.Temperature {
		for _, ne := range a.Density {
			keys = append(keys, Key{T, ne})
		}
	}
	return keys
}

type Key struct {
	Temperature float64 // [eV]
	Density     float64 // [cm^-3]
}

func (k Key) String() string { return fmt.Sprintf("T=%g eV, ne=%.3g cm^-3", k.Temperature, k.Density) }

// Grid is the result of a scan. Cells that failed are absent.
type Grid struct {
	ID    string
	Axes  Axes
	Cells map[Key]*synth.State
}

func New(axes Axes) *Grid {
	return &Grid{ID: uuid.NewString(), Axes: axes, Cells: make(map[Key]*synth.State, axes.Len())}
}

// Ranked returns the keys ordered by similarity, best first. Incomparable
// cells come last; ties keep axis order.
func (g *Grid) Ranked() []Key {
	var keys []Key
	for _, k := range g.Axes.Keys() {
		if _, ok := g.Cells[k]; ok {
			keys = append(keys, k)
		}
	}
	slices.SortStableFunc(keys, func(a, b Key) int {
		return cmp.Compare(g.Cells[b].Similarity(), g.Cells[a].Similarity())
	})
	return keys
}

// Best returns the cell with the largest similarity.
func (g *Grid) Best() (Key, *synth.State, bool) {
	ranked := g.Ranked()
	if len(ranked) == 0 {
		return Key{}, nil, false
	}
	return ranked[0], g.Cells[ranked[0]], true
}

// Similarity lays the cell similarities out as rows of temperature and
// columns of density; absent cells are NaN.
func (g *Grid) Similarity() [][]float64 {
	rows := make([][]float64, len(g.Axes.Temperature))
	for i, T := range g.Axes.Temperature {
		rows[i] = make([]float64, len(g.Axes.Density))
		for j, ne := range g.Axes.Density {
			rows[i][j] = math.NaN()
			if c, ok := g.Cells[Key{T, ne}]; ok {
				rows[i][j] = c.Similarity()
			}
		}
	}
	return rows
}
