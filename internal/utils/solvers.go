package utils

import (
	"math"
	"slices"
)

// Nearest returns the index of the element of the ascending slice xs closest to x.
func Nearest(xs []float64, x float64) int {
	if len(xs) == 0 {
		return -1
	}
	i, _ := slices.BinarySearch(xs, x)
	switch {
	case i == 0:
		return 0
	case i == len(xs):
		return len(xs) - 1
	}
	if math.Abs(xs[i-1]-x) <= math.Abs(xs[i]-x) {
		return i - 1
	}
	return i
}

// LocalMaxima returns the indices of samples strictly greater than both neighbours.
func LocalMaxima(y []float64) (peaks []int) {
	for i := 1; i+1 < len(y); i++ {
		if y[i] > y[i-1] && y[i] > y[i+1] {
			peaks = append(peaks, i)
		}
	}
	return
}

// NearestOf returns the element of candidates closest to target by distance(c, target).
func NearestOf(candidates []int, target int, distance func(a, b int) float64) (best int, ok bool) {
	bestDistance := math.Inf(1)
	for _, c := range candidates {
		if d := distance(c, target); d < bestDistance {
			best, bestDistance, ok = c, d, true
		}
	}
	return
}
