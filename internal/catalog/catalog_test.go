package catalog

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/synth"
)

func state(T, ne float64) *synth.State {
	return &synth.State{Temperature: T, Density: ne}
}

func key(t, x string) Key { return Key{Time: t, Position: [3]string{x, "0", "0"}} }

// twoByTwo has times 10 and 200, positions 5 and 40, added out of order.
func twoByTwo() *Catalog {
	c := New()
	c.Add(key("200", "40"), state(35, 1e21))
	c.Add(key("10", "5"), state(20, 1e19))
	c.Add(key("200", "5"), state(30, 1e20))
	c.Add(key("10", "40"), state(25, 1e20))
	return c
}

func TestTimeSeries(t *testing.T) {
	points := twoByTwo().TimeSeries([3]string{"5", "0", "0"})
	if len(points) != 2 {
		t.Fatalf("have %d points, want 2", len(points))
	}
	if points[0].Tag != "10" || points[1].Tag != "200" {
		t.Errorf("have order %s, %s; want 10, 200", points[0].Tag, points[1].Tag)
	}
	if points[0].Temperature != 20 || points[1].Temperature != 30 {
		t.Errorf("have T %v, %v; want 20, 30", points[0].Temperature, points[1].Temperature)
	}
}

func TestSpaceSeries(t *testing.T) {
	points := twoByTwo().SpaceSeries("10")
	if len(points) != 2 {
		t.Fatalf("have %d points, want 2", len(points))
	}
	if points[0].Value != 5 || points[1].Value != 40 {
		t.Errorf("have x %v, %v; want 5, 40", points[0].Value, points[1].Value)
	}
	if points[0].Temperature != 20 || points[1].Temperature != 25 {
		t.Errorf("have T %v, %v; want 20, 25", points[0].Temperature, points[1].Temperature)
	}
}

func TestHeatmap(t *testing.T) {
	c := twoByTwo()
	times, xs, m := c.Heatmap(Temperature)
	if len(times) != 2 || times[0] != "10" || xs[0] != "5" || xs[1] != "40" {
		t.Fatalf("have axes %v %v", times, xs)
	}
	r, cols := m.Dims()
	if r != 2 || cols != 2 {
		t.Fatalf("have %dx%d, want 2x2", r, cols)
	}
	want := [][]float64{{20, 25}, {30, 35}}
	for i := range want {
		for j := range want[i] {
			if have := m.At(i, j); have != want[i][j] {
				t.Errorf("(%d, %d): have %v, want %v", i, j, have, want[i][j])
			}
		}
	}

	_, _, m = c.Heatmap(LogDensity)
	if have := m.At(1, 1); math.Abs(have-21) > 1e-12 {
		t.Errorf("have %v, want 21", have)
	}

	c.Remove(key("200", "40"))
	_, _, m = c.Heatmap(Temperature)
	if !math.IsNaN(m.At(1, 1)) {
		t.Errorf("have %v for an absent cell, want NaN", m.At(1, 1))
	}
}

func TestCompareTags(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"-2", "1", -1},
		{"2*5", "9", 1},
		{"1e3", "999", 1},
		{"a2", "a10", -1},
		{"3", "abc", -1},
		{"x", "x", 0},
	} {
		if have := CompareTags(tc.a, tc.b); have != tc.want {
			t.Errorf("CompareTags(%q, %q): have %d, want %d", tc.a, tc.b, have, tc.want)
		}
	}
}

func TestKeys(t *testing.T) {
	keys := Keys([]string{"/data/12mm_300ns.csv", "shot.txt", "other.csv", "3.5mm_40ns.txt"})
	want := []Key{key("300", "12"), key("-1", "-1"), key("-2", "-2"), key("40", "3.5")}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("%d: have %v, want %v", i, keys[i], want[i])
		}
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestWriteSeriesOrder(t *testing.T) {
	c := New()
	for i, tag := range []string{"10.3", "-1", "10.25", "-2"} {
		c.Add(key(tag, "5"), state(float64(i), 1e20))
	}
	points := c.TimeSeries([3]string{"5", "0", "0"})
	dir := t.TempDir()
	if err := WriteSeries(points, dir, "series", "x5.csv"); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, filepath.Join(dir, "series", "x5.csv"))
	want := []string{"tag", "-2", "-1", "10.25", "10.3"}
	if len(records) != len(want) {
		t.Fatalf("have %d rows, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i][0] != want[i] || (i > 0 && records[i][0] != points[i-1].Tag) {
			t.Errorf("row %d: have %q, want %q", i, records[i][0], want[i])
		}
	}
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"5mm_10ns.csv", "40mm_10ns.csv"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("wl,I\n10,1\n11,2\n"), 0600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	c := New()
	calls := 0
	in := &Ingester{Catalog: c, Diagnose: func(exp *experiment.Spectrum) (*synth.State, error) {
		calls++
		return state(float64(10*calls), 1e20), nil
	}}
	if err := in.Ingest(paths); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("have %d entries, want 2", c.Len())
	}
	if s, ok := c.Get(key("10", "40")); !ok || s.Temperature != 20 {
		t.Errorf("have %v, %v", s, ok)
	}

	if err := WriteSeries(c.SpaceSeries("10"), dir, "series", "t10.csv"); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, filepath.Join(dir, "series", "t10.csv"))
	if len(records) != 3 || records[1][0] != "5" || records[2][1] != "20" {
		t.Errorf("have %v", records)
	}
}
