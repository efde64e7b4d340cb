// Package balance solves the coronal ionization balance of one element.
package balance

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/cowan/internal/atom"
)

var ErrInvalidState = errors.New("balance: temperature and density must be positive")

// Element carries the per-charge-state data of the rate coefficients.
type Element struct {
	Z   int
	Chi []float64 // ionization energy of charge state q [eV]
	Eta []int     // outer-shell electrons of charge state q
}

// ForElement looks z up in the built-in tables. Chi is nil when no
// ionization energies are tabulated.
func ForElement(z int) (Element, error) {
	eta, err := atom.OuterShellOccupancies(z)
	if err != nil {
		return Element{}, err
	}
	return Element{Z: z, Chi: atom.IonizationEnergies(z), Eta: eta}, nil
}

// WithNeutralIonization replaces the neutral ionization energy.
func (e Element) WithNeutralIonization(chi0 float64) Element {
	chi := make([]float64, max(len(e.Chi), 1))
	copy(chi, e.Chi)
	chi[0] = chi0
	e.Chi = chi
	return e
}

// Complete reports whether every charge state has a positive ionization energy.
func (e Element) Complete() bool {
	if len(e.Chi) < e.Z || len(e.Eta) < e.Z {
		return false
	}
	for _, chi := range e.Chi[:e.Z] {
		if !(chi > 0) {
			return false
		}
	}
	return true
}

// Ionization is the collisional ionization rate coefficient [cm^3 s^-1].
func Ionization(T, chi float64, eta int) float64 {
	x := T / chi
	return 9e-6 * float64(eta) * math.Sqrt(x) * math.Exp(-chi/T) / (math.Pow(chi, 1.5) * (4.88 + x))
}

// Radiative is the radiative recombination rate coefficient into charge state q.
func Radiative(T, chi float64, q int) float64 {
	return 5.2e-14 * math.Sqrt(chi/T) * float64(q) * (0.429 + 0.5*math.Log(chi/T) + 0.469*math.Sqrt(T/chi))
}

// ThreeBody is the three-body recombination rate coefficient [cm^6 s^-1].
func ThreeBody(T, chi float64, eta int) float64 {
	return 2.97e-27 * float64(eta) / (T * chi * chi * (4.88 + T/chi))
}

// Abundance returns the fraction of nuclei in each charge state 0..Z-1 at
// temperature T [eV] and electron density ne [cm^-3]. ok is false when the
// element lacks ionization energies.
func (e Element) Abundance(T, ne float64) (fractions []float64, ok bool, err error) {
	if !(T > 0) || !(ne > 0) {
		return nil, false, fmt.Errorf("%w: T=%v, ne=%v", ErrInvalidState, T, ne)
	}
	if !e.Complete() {
		return nil, false, nil
	}
	// log a_q
	logA := make([]float64, e.Z)
	for q := 0; q+1 < e.Z; q++ {
		chi, eta := e.Chi[q], e.Eta[q]
		r := Ionization(T, chi, eta) / (Radiative(T, chi, q) + ne*ThreeBody(T, chi, eta))
		logA[q+1] = logA[q] + math.Log(r)
	}
	peak := math.Inf(-1)
	for _, l := range logA {
		peak = max(peak, l)
	}
	fractions = make([]float64, e.Z)
	var sum float64
	for q, l := range logA {
		fractions[q] = math.Exp(l - peak)
		sum += fractions[q]
	}
	for q := range fractions {
		fractions[q] /= sum
	}
	return fractions, true, nil
}
