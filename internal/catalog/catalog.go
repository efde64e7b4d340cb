// Package catalog stores diagnosed plasma states by recording time and
// position and projects them onto time, space and the (t, x) plane.
package catalog

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"

	"github.com/wildstyl3r/cowan/internal/synth"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// Key identifies a recording. Tags are kept verbatim.
type Key struct {
	Time     string
	Position [3]string // x, y, z
}

type Catalog struct {
	Entries map[Key]*synth.State
}

func New() *Catalog {
	return &Catalog{Entries: map[Key]*synth.State{}}
}

// Add stores state under key, replacing any previous entry.
func (c *Catalog) Add(key Key, state *synth.State) {
	if c.Entries == nil {
		c.Entries = map[Key]*synth.State{}
	}
	c.Entries[key] = state
}

func (c *Catalog) Remove(key Key) bool {
	_, ok := c.Entries[key]
	delete(c.Entries, key)
	return ok
}

func (c *Catalog) Get(key Key) (*synth.State, bool) {
	s, ok := c.Entries[key]
	return s, ok
}

func (c *Catalog) Len() int { return len(c.Entries) }

// tagValue evaluates a tag as a number, e.g. "12", "-3.5" or "2*5".
func tagValue(tag string) (float64, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(tag, 64); err == nil {
		return v, true
	}
	expression, err := govaluate.NewEvaluableExpression(tag)
	if err != nil || len(expression.Vars()) > 0 {
		return 0, false
	}
	result, err := expression.Evaluate(nil)
	if err != nil {
		return 0, false
	}
	v, err := cast.ToFloat64E(result)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// CompareTags orders numeric tags by value before non-numeric ones, which
// are in natural order.
func CompareTags(a, b string) int {
	va, okA := tagValue(a)
	vb, okB := tagValue(b)
	switch {
	case okA && okB:
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return utils.NaturalOrder(a, b)
}

func compareKeys(a, b Key) int {
	if c := CompareTags(a.Time, b.Time); c != 0 {
		return c
	}
	for i := range a.Position {
		if c := CompareTags(a.Position[i], b.Position[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Keys returns every key sorted by time, then position.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.Entries))
	for k := range c.Entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Point is one sample of a series.
type Point struct {
	Key         Key
	Tag         string  // the tag along the series axis
	Value       float64 // numeric tag, NaN when not numeric
	Temperature float64 // [eV]
	Density     float64 // [cm^-3]
	Similarity  float64
}

func point(key Key, tag string, s *synth.State) Point {
	v, ok := tagValue(tag)
	if !ok {
		v = math.NaN()
	}
	return Point{key, tag, v, s.Temperature, s.Density, s.Similarity()}
}

// TimeSeries returns the entries recorded at position, in time order.
func (c *Catalog) TimeSeries(position [3]string) []Point {
	var points []Point
	for _, k := range c.Keys() {
		if k.Position == position {
			points = append(points, point(k, k.Time, c.Entries[k]))
		}
	}
	return points
}

// SpaceSeries returns the entries recorded at time, ordered by x, then y
// and z.
func (c *Catalog) SpaceSeries(time string) []Point {
	var points []Point
	for _, k := range c.Keys() {
		if k.Time == time {
			points = append(points, point(k, k.Position[0], c.Entries[k]))
		}
	}
	return points
}

type Scalar int

const (
	Temperature Scalar = iota
	LogDensity
)

func (s Scalar) of(state *synth.State) float64 {
	if s == LogDensity {
		return math.Log10(state.Density)
	}
	return state.Temperature
}

// Heatmap lays scalar out over sorted time tags (rows) and x tags
// (columns). Absent combinations are NaN; when several y, z share a
// (t, x), the first in key order is used.
func (c *Catalog) Heatmap(scalar Scalar) (times, xs []string, m *mat.Dense) {
	keys := c.Keys()
	for _, k := range keys {
		if !slices.Contains(times, k.Time) {
			times = append(times, k.Time)
		}
		if !slices.Contains(xs, k.Position[0]) {
			xs = append(xs, k.Position[0])
		}
	}
	slices.SortFunc(times, CompareTags)
	slices.SortFunc(xs, CompareTags)
	if len(times) == 0 {
		return nil, nil, nil
	}
	m = mat.NewDense(len(times), len(xs), nil)
	filled := mat.NewDense(len(times), len(xs), nil)
	for i := range times {
		for j := range xs {
			m.Set(i, j, math.NaN())
		}
	}
	for _, k := range keys {
		i, j := slices.Index(times, k.Time), slices.Index(xs, k.Position[0])
		if filled.At(i, j) != 0 {
			continue
		}
		filled.Set(i, j, 1)
		m.Set(i, j, scalar.of(c.Entries[k]))
	}
	return times, xs, m
}
