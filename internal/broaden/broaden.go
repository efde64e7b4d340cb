// Package broaden turns discrete transition tables into continuous spectra.
package broaden

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/cowan/internal/constants"
	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/lines"
)

var ErrInvalidParams = errors.New("broaden: invalid parameters")

type Params struct {
	Offset      float64 // [nm]
	FWHM        float64 // [eV], same at every wavelength
	Temperature float64 // [eV]
}

func (p Params) Validate() error {
	switch {
	case !(p.FWHM > 0):
		return fmt.Errorf("%w: FWHM %v", ErrInvalidParams, p.FWHM)
	case !(p.Temperature > 0):
		return fmt.Errorf("%w: temperature %v", ErrInvalidParams, p.Temperature)
	case math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0):
		return fmt.Errorf("%w: offset %v", ErrInvalidParams, p.Offset)
	}
	return nil
}

// Spectrum is a broadened line list sampled on Wavelength. In threaded mode
// only CrossP is computed.
type Spectrum struct {
	Wavelength []float64 // [nm]
	Gaussian   []float64
	CrossNP    []float64 // cross-section profile, no population weight
	CrossP     []float64 // cross-section profile with Boltzmann population
}

func (s *Spectrum) Empty() bool { return len(s.Wavelength) == 0 }

// Grid returns npts uniform samples over the active window of exp, or the
// active experimental samples when npts is not positive.
func Grid(exp *experiment.Spectrum, npts int) []float64 {
	if npts <= 0 {
		return append([]float64(nil), exp.Wavelength()...)
	}
	lo, hi := exp.Window()
	if npts == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, npts), lo, hi)
}

type line struct {
	energy    float64 // [eV] after offset
	intensity float64
	upperJ    float64
	weight    float64
}

// prepare shifts the table by params.Offset, keeps lines inside [lo, hi] and
// computes their population weights.
func prepare(table lines.Table, lo, hi float64, params Params) []line {
	type level struct{ energy, j float64 }
	var (
		kept   []line
		uppers []level
		ground = level{math.Inf(1), 0}
	)
	for _, t := range table {
		wavelength := constants.WavelengthToEnergy(t.Energy) + params.Offset
		if wavelength < lo || wavelength > hi {
			continue
		}
		upper := level{t.UpperEnergy, t.UpperJ}
		lower := level{t.LowerEnergy, t.LowerJ}
		if lower.energy > upper.energy {
			upper, lower = lower, upper
		}
		if lower.energy < ground.energy {
			ground = lower
		}
		kept = append(kept, line{
			energy:    constants.WavelengthToEnergy(wavelength),
			intensity: t.Intensity,
			upperJ:    upper.j,
		})
		uppers = append(uppers, upper)
	}
	for i := range kept {
		u := uppers[i]
		kept[i].weight = (2*u.j + 1) * math.Exp(-math.Abs(u.energy-ground.energy)*constants.KiloKayserToEV/params.Temperature) / (2*ground.j + 1)
	}
	return kept
}

func kernel(ls []line, grid []float64, gamma float64, threaded bool) *Spectrum {
	s := &Spectrum{
		Wavelength: grid,
		CrossP:     make([]float64, len(grid)),
	}
	if !threaded {
		s.Gaussian = make([]float64, len(grid))
		s.CrossNP = make([]float64, len(grid))
	}
	gaussNorm := constants.FWHMFactor / (math.Sqrt(2*math.Pi) * gamma)
	gaussExp := constants.FWHMFactor * constants.FWHMFactor / (2 * gamma * gamma)
	for k, wavelength := range grid {
		eps := constants.WavelengthToEnergy(wavelength)
		for _, l := range ls {
			d := l.energy - eps
			cross := 2 * gamma / (2 * math.Pi * (d*d + gamma*gamma))
			statistical := l.intensity / (2*l.upperJ + 1)
			s.CrossP[k] += statistical * l.weight * cross
			if !threaded {
				s.CrossNP[k] += statistical * cross
				s.Gaussian[k] += l.intensity * gaussNorm * math.Exp(-gaussExp*d*d)
			}
		}
	}
	return s
}

// Broaden samples table on Grid(exp, npts). A table with no line inside the
// window gives zero intensities.
func Broaden(table lines.Table, exp *experiment.Spectrum, params Params, npts int, threaded bool) (*Spectrum, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid := Grid(exp, npts)
	lo, hi := exp.Window()
	var ls []line
	if !exp.Disjoint() {
		ls = prepare(table, lo, hi, params)
	}
	if len(ls) == 0 {
		logrus.WithFields(logrus.Fields{
			"lines":  len(table),
			"window": fmt.Sprintf("[%g, %g]", lo, hi),
		}).Info("no transitions in window")
	}
	return kernel(ls, grid, params.FWHM, threaded), nil
}

// Grouped is one spectrum per transition array, on a shared grid.
type Grouped struct {
	Arrays  []lines.Array
	Spectra map[lines.Array]*Spectrum
}

// BroadenGrouped broadens every transition array of table separately.
func BroadenGrouped(table lines.Table, exp *experiment.Spectrum, params Params, npts int, threaded bool) (*Grouped, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid := Grid(exp, npts)
	lo, hi := exp.Window()
	keys, groups := table.Arrays()
	g := &Grouped{Arrays: keys, Spectra: make(map[lines.Array]*Spectrum, len(keys))}
	for _, key := range keys {
		var ls []line
		if !exp.Disjoint() {
			ls = prepare(groups[key], lo, hi, params)
		}
		g.Spectra[key] = kernel(ls, grid, params.FWHM, threaded)
	}
	return g, nil
}
