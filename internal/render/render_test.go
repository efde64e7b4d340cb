package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var pngMagic = []byte("\x89PNG")

func checkPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("%s is not a PNG image", path)
	}
}

func TestSpectrum(t *testing.T) {
	x := floats.Span(make([]float64, 50), 9, 12)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Exp(-(v - 10.3) * (v - 10.3) / 0.02)
	}
	path := filepath.Join(t.TempDir(), "figure", "spectrum.png")
	if err := Spectrum(path, "Al", Curve{"experiment", x, y}, Curve{"simulation", x, y}); err != nil {
		t.Fatal(err)
	}
	checkPNG(t, path)

	if err := Spectrum(path, "Al", Curve{"bad", x, y[1:]}); err == nil {
		t.Error("mismatched curve accepted")
	}
	if err := Spectrum(path, "Al"); !errors.Is(err, ErrNoData) {
		t.Errorf("have %v, want ErrNoData", err)
	}
}

func TestContributions(t *testing.T) {
	x := []float64{1, 2, 3}
	path := filepath.Join(t.TempDir(), "contributions.png")
	err := Contributions(path, "ions", x, []string{"Al3+", "Al4+"}, [][]float64{{0, 1, 0}, nil})
	if err != nil {
		t.Fatal(err)
	}
	checkPNG(t, path)
}

func TestHeatmap(t *testing.T) {
	nan := math.NaN()
	m := mat.NewDense(2, 3, []float64{
		1, 2, nan,
		4, 5, 6,
	})
	path := filepath.Join(t.TempDir(), "heatmap.png")
	if err := Heatmap(path, "T", "x (mm)", "t (ns)", []string{"0", "1", "2"}, []string{"10", "20"}, m); err != nil {
		t.Fatal(err)
	}
	checkPNG(t, path)

	empty := mat.NewDense(1, 1, []float64{nan})
	if err := Heatmap(path, "T", "x", "t", []string{"0"}, []string{"0"}, empty); !errors.Is(err, ErrNoData) {
		t.Errorf("have %v, want ErrNoData", err)
	}
	if err := Heatmap(path, "T", "x", "t", []string{"0"}, []string{"10", "20"}, m); err == nil {
		t.Error("label mismatch accepted")
	}
}
