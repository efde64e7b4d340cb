package grid

import (
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/lines"
	"github.com/wildstyl3r/cowan/internal/metrics"
	"github.com/wildstyl3r/cowan/internal/synth"
)

var scanAxes = AxesSpec{
	TMin: 20, TMax: 30, TPoints: 3,
	NeBaseMin: 1, NeIndexMin: 19, NeBaseMax: 1, NeIndexMax: 21, NePoints: 3,
}

// experimentWithPeaks has Lorentzian peaks at 10.332 nm and 11.271 nm.
func experimentWithPeaks(t *testing.T, heights ...float64) *experiment.Spectrum {
	t.Helper()
	x := floats.Span(make([]float64, 301), 9, 12)
	y := make([]float64, len(x))
	for i := range x {
		for k, c := range []float64{1239.85 / 120, 1239.85 / 110} {
			d := (x[i] - c) / 0.02
			y[i] += heights[k] / (1 + d*d)
		}
	}
	exp, err := experiment.New(x, y)
	if err != nil {
		t.Fatal(err)
	}
	return exp
}

func baseState(t *testing.T, fwhm float64) *synth.State {
	t.Helper()
	ion, err := synth.NewIon("Al", 4, lines.Table{
		{UpperEnergy: 120 / 0.124, Energy: 120, Intensity: 1, LowerIndex: 1, UpperIndex: 2, UpperJ: 1},
		{UpperEnergy: 110 / 0.124, Energy: 110, Intensity: 1, LowerIndex: 1, UpperIndex: 3, UpperJ: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	ion.FWHM = fwhm
	s := synth.New([]*synth.Ion{ion}, experimentWithPeaks(t, 1, 0.5))
	s.Threaded = true
	s.Anchors = []float64{1239.85 / 120, 1239.85 / 110}
	return s
}

func TestAxes(t *testing.T) {
	axes, err := NewAxes(scanAxes)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(axes.Temperature, []float64{20, 25, 30}) {
		t.Errorf("have temperatures %v", axes.Temperature)
	}
	if !floats.EqualApprox(axes.Density, []float64{1e19, 1e20, 1e21}, 1e-9) {
		t.Errorf("have densities %v", axes.Density)
	}
	if _, err := NewAxes(AxesSpec{TMin: 1, TMax: 2, TPoints: 0, NeBaseMin: 1, NeBaseMax: 1, NePoints: 1}); err == nil {
		t.Error("empty axis accepted")
	}
}

func TestAxesEqualLimits(t *testing.T) {
	spec := scanAxes
	spec.TMin, spec.TMax = 25, 25
	axes, err := NewAxes(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(axes.Temperature, []float64{25}) || axes.Len() != 3 {
		t.Fatalf("have temperatures %v, %d cells", axes.Temperature, axes.Len())
	}
	g := (&Scanner{Workers: 2}).Calculate(baseState(t, 0.3), axes)
	if len(g.Cells) != axes.Len() {
		t.Errorf("have %d cells, want %d", len(g.Cells), axes.Len())
	}

	spec = scanAxes
	spec.NeIndexMax = spec.NeIndexMin
	if axes, err := NewAxes(spec); err != nil || len(axes.Density) != 1 {
		t.Errorf("have densities %v, %v", axes.Density, err)
	}
}

type counter struct {
	mu   sync.Mutex
	seen map[Key]int
}

func (c *counter) OnCellComplete(key Key, done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[key]++
}

func TestCalculate(t *testing.T) {
	axes, err := NewAxes(scanAxes)
	if err != nil {
		t.Fatal(err)
	}
	obs := &counter{seen: map[Key]int{}}
	sc := &Scanner{Workers: 3, Observer: obs, Metrics: metrics.NewCollector()}
	base := baseState(t, 0.3)
	g := sc.Calculate(base, axes)

	if len(g.Cells) != 9 {
		t.Fatalf("have %d cells, want 9", len(g.Cells))
	}
	for _, k := range axes.Keys() {
		c, ok := g.Cells[k]
		if !ok {
			t.Fatalf("cell %v missing", k)
		}
		if s := c.Similarity(); s == -1 || math.IsNaN(s) || math.IsInf(s, 0) {
			t.Errorf("cell %v: have similarity %v", k, s)
		}
		if c.Temperature != k.Temperature || c.Density != k.Density {
			t.Errorf("cell %v holds state at T=%v ne=%v", k, c.Temperature, c.Density)
		}
		if c.Contributions != nil {
			t.Errorf("cell %v kept its contributions", k)
		}
		if obs.seen[k] != 1 {
			t.Errorf("cell %v reported %d times", k, obs.seen[k])
		}
	}
	if base.Intensity != nil {
		t.Error("scan modified the base state")
	}

	ranked := g.Ranked()
	for i := 1; i < len(ranked); i++ {
		if g.Cells[ranked[i]].Similarity() > g.Cells[ranked[i-1]].Similarity() {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
	key, best, ok := g.Best()
	if !ok || key != ranked[0] || best != g.Cells[ranked[0]] {
		t.Errorf("have best %v", key)
	}
}

func TestRescore(t *testing.T) {
	axes, _ := NewAxes(scanAxes)
	sc := &Scanner{Workers: 2}
	g := sc.Calculate(baseState(t, 0.3), axes)
	before := map[Key]float64{}
	for k, c := range g.Cells {
		before[k] = c.Score.Distance
	}
	other := experimentWithPeaks(t, 0.5, 1)
	sc.Rescore(g, other)
	changed := false
	for k, c := range g.Cells {
		if c.Experiment != other {
			t.Fatalf("cell %v still holds the old experiment", k)
		}
		if c.Score.Distance != before[k] {
			changed = true
		}
	}
	if !changed {
		t.Error("rescoring against swapped peak heights changed nothing")
	}
}

func TestFailedCellsOmitted(t *testing.T) {
	axes, _ := NewAxes(scanAxes)
	obs := &counter{seen: map[Key]int{}}
	m := metrics.NewCollector()
	g := (&Scanner{Workers: 4, Observer: obs, Metrics: m}).Calculate(baseState(t, 0), axes)
	if len(g.Cells) != 0 {
		t.Errorf("have %d cells, want none", len(g.Cells))
	}
	if len(obs.seen) != 9 {
		t.Errorf("have %d reported cells, want 9", len(obs.seen))
	}
	if _, _, ok := g.Best(); ok {
		t.Error("empty grid has a best cell")
	}
	if v := g.Similarity()[0][0]; !math.IsNaN(v) {
		t.Errorf("have %v for an absent cell, want NaN", v)
	}
}

func TestWriteXLSX(t *testing.T) {
	axes, _ := NewAxes(scanAxes)
	g := (&Scanner{Workers: 2}).Calculate(baseState(t, 0.3), axes)
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	if err := g.WriteXLSX(path); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if have := len(f.Sheet["similarity"].Rows); have != 4 {
		t.Errorf("have %d matrix rows, want 4", have)
	}
	if have := len(f.Sheet["cells"].Rows); have != 10 {
		t.Errorf("have %d cell rows, want 10", have)
	}
}
