package experiment

import (
	"bytes"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	csv := writeFile(t, "exp.csv", "wavelength,intensity\n11,3\n10,1\n12,5\n")
	txt := writeFile(t, "exp.txt", "lambda  I\n10   1\n11\t3\n\n12 5\n")
	for _, path := range []string{csv, txt} {
		s, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if have, want := s.Wavelength(), []float64{10, 11, 12}; !slices.Equal(have, want) {
			t.Errorf("%s: have %v, want %v", path, have, want)
		}
		if have, want := s.Intensity(), []float64{1, 3, 5}; !slices.Equal(have, want) {
			t.Errorf("%s: have %v, want %v", path, have, want)
		}
	}
}

func TestLoadUnsupported(t *testing.T) {
	path := writeFile(t, "exp.dat", "x y\n1 2\n")
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFileFormat) {
		t.Errorf("have %v, want ErrUnsupportedFileFormat", err)
	}
}

func TestWindow(t *testing.T) {
	s, err := New([]float64{1, 2, 3, 4, 5}, []float64{0, 2, 4, 8, 6})
	if err != nil {
		t.Fatal(err)
	}
	s.SetWindow(2, 4)
	if have, want := s.Wavelength(), []float64{2, 3, 4}; !slices.Equal(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.Normalized(), []float64{0, 1. / 3, 1}; !slices.Equal(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	s.SetWindow(-10, 2.5)
	if lo, hi := s.Window(); lo != 1 || hi != 2.5 {
		t.Errorf("have window [%v, %v], want [1, 2.5]", lo, hi)
	}
	if have := s.Wavelength(); !slices.Equal(have, []float64{1, 2}) {
		t.Errorf("have %v, want [1 2]", have)
	}

	s.ResetWindow()
	if s.Len() != 5 {
		t.Errorf("have %d samples, want 5", s.Len())
	}
	if have, want := s.Normalized(), []float64{0, 0.25, 0.5, 1, 0.75}; !slices.Equal(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestEmptyWindow(t *testing.T) {
	s, err := New([]float64{9, 10, 11, 12}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	s.SetWindow(10.1, 10.9)
	if lo, hi := s.Window(); lo != 10.1 || hi != 10.9 {
		t.Errorf("have window [%v, %v], want [10.1, 10.9]", lo, hi)
	}
	if s.Len() != 0 || s.Disjoint() {
		t.Errorf("have %d samples, disjoint %v", s.Len(), s.Disjoint())
	}

	s.SetWindow(6, 5)
	if lo, hi := s.Window(); lo != 5 || hi != 6 || !s.Disjoint() {
		t.Errorf("have window [%v, %v], disjoint %v", lo, hi, s.Disjoint())
	}
	if s.Len() != 0 || len(s.Normalized()) != 0 {
		t.Errorf("have %d active samples, want 0", s.Len())
	}

	s.ResetWindow()
	if lo, hi := s.Window(); lo != 9 || hi != 12 || s.Disjoint() || s.Len() != 4 {
		t.Errorf("have window [%v, %v] with %d samples after reset", lo, hi, s.Len())
	}
}

func TestGob(t *testing.T) {
	s, err := New([]float64{3, 1, 2}, []float64{30, 10, 20})
	if err != nil {
		t.Fatal(err)
	}
	s.SetWindow(2, 3)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		t.Fatal(err)
	}
	var got Spectrum
	if err := gob.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if have, want := got.Intensity(), []float64{20, 30}; !slices.Equal(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if lo, hi := got.Window(); lo != 2 || hi != 3 {
		t.Errorf("have window [%v, %v], want [2, 3]", lo, hi)
	}
	got.ResetWindow()
	if got.Len() != 3 {
		t.Errorf("have %d samples, want 3", got.Len())
	}
}
