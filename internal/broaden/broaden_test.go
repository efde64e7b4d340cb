package broaden

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/lines"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// single is one 120 eV line from the ground level to J=1.
var single = lines.Table{{
	LowerEnergy: 0,
	UpperEnergy: 967.742,
	Energy:      120,
	Intensity:   1,
	LowerIndex:  1,
	UpperIndex:  2,
	LowerJ:      0,
	UpperJ:      1,
}}

func flatExperiment(t *testing.T, lo, hi float64, n int) *experiment.Spectrum {
	t.Helper()
	s, err := experiment.New(floats.Span(make([]float64, n), lo, hi), make([]float64, n))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSingleLine(t *testing.T) {
	exp := flatExperiment(t, 4, 14, 21)
	exp.SetWindow(9, 12)
	params := Params{FWHM: 0.5, Temperature: 25.6}
	s, err := Broaden(single, exp, params, 301, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.CrossP) != 301 || len(s.Gaussian) != 301 || len(s.CrossNP) != 301 {
		t.Fatalf("have lengths %d/%d/%d, want 301", len(s.Gaussian), len(s.CrossNP), len(s.CrossP))
	}
	peak := utils.Argmax(s.CrossP)
	want := utils.Nearest(s.Wavelength, 1239.85/120)
	if utils.IntAbs(peak-want) > 1 {
		t.Errorf("peak at %v nm, want %v nm", s.Wavelength[peak], s.Wavelength[want])
	}
	w := 3 * math.Exp(-967.742*0.124/25.6)
	expected := w / 3 / (math.Pi * params.FWHM)
	if !scalar.EqualWithinAbsOrRel(s.CrossP[peak], expected, 0, 0.01) {
		t.Errorf("have peak %v, want %v", s.CrossP[peak], expected)
	}
	for i := range s.CrossP {
		if s.CrossP[i] < 0 || s.CrossNP[i] < 0 || s.Gaussian[i] < 0 {
			t.Fatalf("negative intensity at %d", i)
		}
	}
}

func TestEmptyWindow(t *testing.T) {
	exp := flatExperiment(t, 4, 14, 21)
	exp.SetWindow(5, 6)
	s, err := Broaden(single, exp, Params{FWHM: 0.5, Temperature: 25.6}, 301, false)
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string][]float64{"gaussian": s.Gaussian, "cross_NP": s.CrossNP, "cross_P": s.CrossP} {
		if len(v) != 301 {
			t.Errorf("%s: have %d samples, want 301", name, len(v))
		}
		for i := range v {
			if v[i] != 0 {
				t.Fatalf("%s: have %v at %d, want 0", name, v[i], i)
			}
		}
	}
}

func TestWindowOutsideData(t *testing.T) {
	exp := flatExperiment(t, 9, 12, 31)
	exp.SetWindow(5, 6)
	s, err := Broaden(single, exp, Params{FWHM: 0.5, Temperature: 25.6}, 301, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.CrossP) != 301 {
		t.Fatalf("have %d samples, want 301", len(s.CrossP))
	}
	for name, v := range map[string][]float64{"gaussian": s.Gaussian, "cross_NP": s.CrossNP, "cross_P": s.CrossP} {
		if floats.Max(v) != 0 || floats.Min(v) != 0 {
			t.Errorf("%s: have nonzero intensity, want 0", name)
		}
	}
	if lo, hi := s.Wavelength[0], s.Wavelength[300]; lo != 5 || hi != 6 {
		t.Errorf("have grid [%v, %v], want [5, 6]", lo, hi)
	}

	g, err := BroadenGrouped(single, exp, Params{FWHM: 0.5, Temperature: 25.6}, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if sp := g.Spectra[lines.Array{Lower: 1, Upper: 2}]; len(sp.CrossP) != 0 {
		t.Errorf("have %d samples on the experimental grid, want 0", len(sp.CrossP))
	}
}

func TestWindowBetweenSamples(t *testing.T) {
	exp := flatExperiment(t, 9, 12, 4)
	exp.SetWindow(10.1, 10.9)
	s, err := Broaden(single, exp, Params{FWHM: 0.5, Temperature: 25.6}, 81, true)
	if err != nil {
		t.Fatal(err)
	}
	if s.Wavelength[0] != 10.1 || s.Wavelength[80] != 10.9 {
		t.Errorf("have grid [%v, %v], want [10.1, 10.9]", s.Wavelength[0], s.Wavelength[80])
	}
	if floats.Max(s.CrossP) == 0 {
		t.Error("line at 10.33 nm dropped from the window")
	}
}

func TestEmptyTable(t *testing.T) {
	exp := flatExperiment(t, 9, 12, 31)
	s, err := Broaden(nil, exp, Params{FWHM: 0.5, Temperature: 10}, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.CrossP) != 31 || floats.Max(s.CrossP) != 0 {
		t.Errorf("have %v, want 31 zeros", s.CrossP)
	}
	if s.Gaussian != nil || s.CrossNP != nil {
		t.Error("threaded mode computed the unweighted profiles")
	}
}

func TestPeakFollowsStrongestWeightedLine(t *testing.T) {
	// The second line is twice as intense but sits 60 eV higher; at 10 eV
	// its population weight is negligible.
	table := lines.Table{
		{LowerEnergy: 0, UpperEnergy: 967.742, Energy: 120, Intensity: 1, LowerIndex: 1, UpperIndex: 2, UpperJ: 1},
		{LowerEnergy: 0, UpperEnergy: 1451.6, Energy: 180, Intensity: 2, LowerIndex: 1, UpperIndex: 3, UpperJ: 1},
	}
	exp := flatExperiment(t, 6, 12, 601)
	s, err := Broaden(table, exp, Params{FWHM: 0.3, Temperature: 10}, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	peak := utils.Argmax(s.CrossP)
	want := utils.Nearest(s.Wavelength, 1239.85/120)
	if utils.IntAbs(peak-want) > 1 {
		t.Errorf("peak at %v nm, want %v nm", s.Wavelength[peak], s.Wavelength[want])
	}
}

func TestOffset(t *testing.T) {
	exp := flatExperiment(t, 9, 12, 301)
	s, err := Broaden(single, exp, Params{Offset: 0.5, FWHM: 0.2, Temperature: 25}, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	peak := utils.Argmax(s.CrossP)
	want := utils.Nearest(s.Wavelength, 1239.85/120+0.5)
	if utils.IntAbs(peak-want) > 1 {
		t.Errorf("peak at %v nm, want %v nm", s.Wavelength[peak], s.Wavelength[want])
	}
}

func TestGrouped(t *testing.T) {
	table := append(lines.Table{
		{LowerEnergy: 0, UpperEnergy: 900, Energy: 111.6, Intensity: 0.5, LowerIndex: 1, UpperIndex: 3, UpperJ: 2},
	}, single...)
	exp := flatExperiment(t, 9, 12, 301)
	params := Params{FWHM: 0.5, Temperature: 20}
	g, err := BroadenGrouped(table, exp, params, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Arrays) != 2 || g.Arrays[0] != (lines.Array{Lower: 1, Upper: 2}) {
		t.Fatalf("have arrays %v", g.Arrays)
	}
	full, err := Broaden(single, exp, params, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(g.Spectra[lines.Array{Lower: 1, Upper: 2}].CrossP, full.CrossP, 1e-12) {
		t.Error("grouped spectrum of a single array differs from the full spectrum")
	}
}

func TestInvalidParams(t *testing.T) {
	exp := flatExperiment(t, 9, 12, 3)
	if _, err := Broaden(single, exp, Params{FWHM: 0, Temperature: 1}, 0, false); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("have %v, want ErrInvalidParams", err)
	}
}
