// Package similarity compares a synthesized spectrum with an experiment by
// the intensity ratios of matched peaks.
package similarity

import (
	"math"
	"slices"

	"github.com/wildstyl3r/cowan/internal/utils"
)

// Insufficient is the distance reported when no comparison is possible.
const Insufficient = -1.

// AutoPeaks is the number of simulated peaks matched in automatic mode.
const AutoPeaks = 5

type Mode int

const (
	Auto Mode = iota
	Anchored
)

func (m Mode) String() string {
	if m == Anchored {
		return "anchored"
	}
	return "auto"
}

// Result of one comparison. Distance is 0 for identical peak ratios and at
// most Limit; it is Insufficient when the spectra cannot be compared.
type Result struct {
	Distance float64
	Limit    float64
	Mode     Mode
}

func (r Result) Comparable() bool { return r.Distance >= 0 }

// Similarity ranks results: larger is better, Insufficient ranks last.
func (r Result) Similarity() float64 {
	if !r.Comparable() {
		return Insufficient
	}
	return r.Limit - r.Distance
}

// Score interpolates the simulated spectrum onto the experimental axis and
// compares them. With two or more anchor wavelengths the peaks are pinned to
// the anchors, otherwise the strongest simulated peaks are matched.
func Score(expWavelength, expIntensity, simWavelength, simIntensity, anchors []float64) Result {
	mode := Auto
	if len(anchors) >= 2 {
		mode = Anchored
	}
	if len(expWavelength) == 0 || len(simWavelength) == 0 {
		return Result{Distance: Insufficient, Mode: mode}
	}
	exp := utils.ScaleToPeak(expIntensity)
	sim := utils.ScaleToPeak(utils.InterpAll(simWavelength, simIntensity, expWavelength))
	if mode == Anchored {
		return anchored(expWavelength, exp, sim, anchors)
	}
	return auto(exp, sim)
}

func auto(exp, sim []float64) Result {
	r := Result{Distance: Insufficient, Limit: pairs(AutoPeaks), Mode: Auto}
	simPeaks := utils.LocalMaxima(sim)
	expPeaks := utils.LocalMaxima(exp)
	if len(simPeaks) < AutoPeaks || len(expPeaks) == 0 {
		return r
	}
	slices.SortStableFunc(simPeaks, func(a, b int) int {
		switch {
		case sim[a] > sim[b]:
			return -1
		case sim[a] < sim[b]:
			return 1
		}
		return 0
	})
	simPeaks = simPeaks[:AutoPeaks]
	expMatched := make([]int, AutoPeaks)
	for i, p := range simPeaks {
		expMatched[i], _ = utils.NearestOf(expPeaks, p, indexDistance)
	}
	r.Distance = ratioDistance(exp, sim, expMatched, simPeaks, r.Limit)
	return r
}

func anchored(wavelength, exp, sim, anchors []float64) Result {
	r := Result{Limit: 3 * float64(len(anchors)), Mode: Anchored}
	simPeaks := utils.LocalMaxima(sim)
	tolerance := 0.01 * float64(len(wavelength))
	expIdx := make([]int, len(anchors))
	simIdx := make([]int, len(anchors))
	for k, w := range anchors {
		expIdx[k] = utils.Nearest(wavelength, w)
		s, ok := utils.NearestOf(simPeaks, 0, func(p, _ int) float64 { return math.Abs(wavelength[p] - w) })
		if !ok || float64(utils.IntAbs(s-expIdx[k])) > tolerance {
			s = expIdx[k]
		}
		simIdx[k] = s
	}
	r.Distance = ratioDistance(exp, sim, expIdx, simIdx, r.Limit)
	return r
}

func indexDistance(a, b int) float64 { return float64(utils.IntAbs(a - b)) }

func pairs(n int) float64 { return float64(n * (n - 1) / 2) }

// ratioDistance is the sum over peak pairs of the difference between the
// experimental and simulated intensity ratios, clamped at limit.
func ratioDistance(exp, sim []float64, expIdx, simIdx []int, limit float64) float64 {
	var s float64
	for i := range expIdx {
		for j := i + 1; j < len(expIdx); j++ {
			d := math.Abs(exp[expIdx[i]]/exp[expIdx[j]] - sim[simIdx[i]]/sim[simIdx[j]])
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return limit
			}
			s += d
		}
	}
	return min(s, limit)
}
