package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

// MinMaxNormalize returns (v - min v) / (max v - min v). A flat or empty
// input gives zeros.
func MinMaxNormalize(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	lo, hi := floats.Min(v), floats.Max(v)
	if hi == lo {
		return out
	}
	for i := range v {
		out[i] = (v[i] - lo) / (hi - lo)
	}
	return out
}

// ScaleToPeak divides v by its maximum. All-zero input is returned unscaled.
func ScaleToPeak(v []float64) []float64 {
	out := slices.Clone(v)
	if len(v) == 0 {
		return out
	}
	if peak := floats.Max(v); peak != 0 {
		floats.Scale(1/peak, out)
	}
	return out
}

// Interp evaluates the piecewise-linear function (xs, ys) at x, extrapolating
// linearly beyond both ends. xs must be ascending.
func Interp(xs, ys []float64, x float64) float64 {
	switch len(xs) {
	case 0:
		return 0
	case 1:
		return ys[0]
	}
	i, found := slices.BinarySearch(xs, x)
	if found {
		return ys[i]
	}
	i = min(max(i, 1), len(xs)-1)
	x0, x1 := xs[i-1], xs[i]
	if x1 == x0 {
		return ys[i]
	}
	return ys[i-1] + (ys[i]-ys[i-1])*(x-x0)/(x1-x0)
}

func InterpAll(xs, ys, at []float64) []float64 {
	out := make([]float64, len(at))
	for i := range at {
		out[i] = Interp(xs, ys, at[i])
	}
	return out
}
