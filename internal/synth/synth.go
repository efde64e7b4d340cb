// Package synth builds simulated spectra from the broadened line lists of
// several ions weighted by their coronal abundances.
package synth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/cowan/internal/atom"
	"github.com/wildstyl3r/cowan/internal/balance"
	"github.com/wildstyl3r/cowan/internal/broaden"
	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/lines"
	"github.com/wildstyl3r/cowan/internal/similarity"
	"github.com/wildstyl3r/cowan/internal/utils"
)

var (
	ErrNoIons       = errors.New("synth: no active ions")
	ErrGridMismatch = errors.New("synth: ions broadened on different wavelength grids")
)

// Ion is one charge state with its computed line list. Ions are shared
// between states and never modified after construction.
type Ion struct {
	Element string
	Z       int
	Charge  int
	Run     string
	Lines   lines.Table
	Offset  float64 // [nm]
	FWHM    float64 // [eV]
}

func NewIon(symbol string, charge int, table lines.Table) (*Ion, error) {
	a, err := atom.NewFromSymbol(symbol, charge)
	if err != nil {
		return nil, err
	}
	return &Ion{Element: a.Symbol(), Z: a.Z, Charge: charge, Lines: table}, nil
}

func (i *Ion) Name() string { return fmt.Sprintf("%s%d+", i.Element, i.Charge) }

func (i *Ion) params(T float64) broaden.Params {
	return broaden.Params{Offset: i.Offset, FWHM: i.FWHM, Temperature: T}
}

type broadenKey struct {
	experiment  *experiment.Spectrum
	lo, hi      float64
	temperature float64
	points      int
	threaded    bool
	grouped     bool
}

// State is a simulated plasma state: the inputs of a synthesis and its
// results. A State is owned by a single goroutine.
type State struct {
	Ions       []*Ion
	Active     []bool
	Experiment *experiment.Spectrum

	Temperature float64 // [eV]
	Density     float64 // [cm^-3]
	Ratio       map[string]float64
	ChiOverride map[string]float64 // neutral ionization energy per element [eV]
	Anchors     []float64          // [nm]
	Points      int
	Threaded    bool
	Grouped     bool

	Broadened  []*broaden.Spectrum
	Arrays     []*broaden.Grouped
	Abundances map[string][]float64
	Fractions  map[string]float64 // element ratio after renormalization

	Wavelength         []float64
	Intensity          []float64 // normalized to its peak
	Contributions      [][]float64
	ArrayContributions []map[lines.Array][]float64
	Score              similarity.Result

	broadened broadenKey
}

func New(ions []*Ion, exp *experiment.Spectrum) *State {
	active := make([]bool, len(ions))
	for i := range active {
		active[i] = true
	}
	return &State{
		Ions:       ions,
		Active:     active,
		Experiment: exp,
		Ratio:      map[string]float64{},
	}
}

// Derive returns a state with the same inputs and no results. Ions and the
// experiment are shared.
func (s *State) Derive() *State {
	return &State{
		Ions:        s.Ions,
		Active:      slices.Clone(s.Active),
		Experiment:  s.Experiment,
		Temperature: s.Temperature,
		Density:     s.Density,
		Ratio:       cloneMap(s.Ratio),
		ChiOverride: cloneMap(s.ChiOverride),
		Anchors:     slices.Clone(s.Anchors),
		Points:      s.Points,
		Threaded:    s.Threaded,
		Grouped:     s.Grouped,
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// At returns a new state at (T, ne) with every result computed.
func (s *State) At(T, ne float64) (*State, error) {
	c := s.Derive()
	c.Temperature, c.Density = T, ne
	if err := c.Update(); err != nil {
		return nil, err
	}
	return c, nil
}

// Update re-broadens if needed, synthesizes and scores.
func (s *State) Update() error {
	if err := s.Broaden(); err != nil {
		return err
	}
	if err := s.Synthesize(); err != nil {
		return err
	}
	s.Rescore(s.Experiment)
	return nil
}

// Broaden broadens every ion at the state temperature unless that was
// already done with the same settings, experiment and window.
func (s *State) Broaden() error {
	lo, hi := s.Experiment.Window()
	key := broadenKey{s.Experiment, lo, hi, s.Temperature, s.Points, s.Threaded, s.Grouped}
	if key == s.broadened && len(s.Broadened) == len(s.Ions) {
		return nil
	}
	s.Broadened = make([]*broaden.Spectrum, len(s.Ions))
	s.Arrays = nil
	if s.Grouped {
		s.Arrays = make([]*broaden.Grouped, len(s.Ions))
	}
	for i, ion := range s.Ions {
		b, err := broaden.Broaden(ion.Lines, s.Experiment, ion.params(s.Temperature), s.Points, s.Threaded)
		if err != nil {
			return fmt.Errorf("synth: %s: %w", ion.Name(), err)
		}
		s.Broadened[i] = b
		if s.Grouped {
			if s.Arrays[i], err = broaden.BroadenGrouped(ion.Lines, s.Experiment, ion.params(s.Temperature), s.Points, s.Threaded); err != nil {
				return fmt.Errorf("synth: %s: %w", ion.Name(), err)
			}
		}
	}
	s.broadened = key
	return nil
}

func (s *State) elements() []string {
	var symbols []string
	for i, ion := range s.Ions {
		if s.Active[i] && !slices.Contains(symbols, ion.Element) {
			symbols = append(symbols, ion.Element)
		}
	}
	return symbols
}

// abundances solves the ionization balance of every element with an active
// ion and renormalizes the element ratio over the solvable ones.
func (s *State) abundances() error {
	s.Abundances = map[string][]float64{}
	s.Fractions = map[string]float64{}
	symbols := s.elements()
	var total float64
	for _, symbol := range symbols {
		z, err := atom.Z(symbol)
		if err != nil {
			return err
		}
		e, err := balance.ForElement(z)
		if err != nil {
			return err
		}
		if chi0, ok := s.ChiOverride[symbol]; ok {
			e = e.WithNeutralIonization(chi0)
		}
		a, ok, err := e.Abundance(s.Temperature, s.Density)
		if err != nil {
			return err
		}
		if !ok {
			logrus.WithField("element", symbol).Warn("no ionization energies, element skipped")
			continue
		}
		s.Abundances[symbol] = a
		ratio := 1.
		if len(symbols) > 1 && len(s.Ratio) > 0 {
			ratio = s.Ratio[symbol]
		}
		s.Fractions[symbol] = ratio
		total += ratio
	}
	for symbol := range s.Fractions {
		if total > 0 {
			s.Fractions[symbol] /= total
		}
	}
	return nil
}

// Synthesize sums the population-weighted spectra of the active ions
// weighted by abundance and element fraction.
func (s *State) Synthesize() error {
	first := slices.Index(s.Active, true)
	if first < 0 {
		return ErrNoIons
	}
	if len(s.Broadened) != len(s.Ions) {
		if err := s.Broaden(); err != nil {
			return err
		}
	}
	if err := s.abundances(); err != nil {
		return err
	}
	s.Wavelength = s.Broadened[first].Wavelength
	sum := make([]float64, len(s.Wavelength))
	s.Contributions = make([][]float64, len(s.Ions))
	s.ArrayContributions = nil
	if s.Grouped {
		s.ArrayContributions = make([]map[lines.Array][]float64, len(s.Ions))
	}
	for i, ion := range s.Ions {
		if !s.Active[i] {
			continue
		}
		b := s.Broadened[i]
		if len(b.CrossP) != len(sum) {
			return fmt.Errorf("%w: %s has %d samples, want %d", ErrGridMismatch, ion.Name(), len(b.CrossP), len(sum))
		}
		weight := s.weight(ion)
		contribution := slices.Clone(b.CrossP)
		floats.Scale(weight, contribution)
		floats.Add(sum, contribution)
		s.Contributions[i] = contribution

		if s.Grouped && s.Arrays[i] != nil {
			arrays := make(map[lines.Array][]float64, len(s.Arrays[i].Arrays))
			for key, spectrum := range s.Arrays[i].Spectra {
				c := slices.Clone(spectrum.CrossP)
				floats.Scale(weight, c)
				arrays[key] = c
			}
			s.ArrayContributions[i] = arrays
		}
	}
	s.Intensity = utils.ScaleToPeak(sum)
	return nil
}

func (s *State) weight(ion *Ion) float64 {
	a, ok := s.Abundances[ion.Element]
	if !ok || ion.Charge >= len(a) {
		return 0
	}
	return a[ion.Charge] * s.Fractions[ion.Element]
}

// Rescore compares the synthesized spectrum with exp, which becomes the
// state's experiment. The spectrum itself is not recomputed; the next Update
// broadens on the grid of exp.
func (s *State) Rescore(exp *experiment.Spectrum) similarity.Result {
	s.Experiment = exp
	s.Score = similarity.Score(exp.Wavelength(), exp.Intensity(), s.Wavelength, s.Intensity, s.Anchors)
	return s.Score
}

func (s *State) Similarity() float64 { return s.Score.Similarity() }

// Strip drops per-ion data that a grid cell does not need.
func (s *State) Strip() {
	s.Broadened = nil
	s.Arrays = nil
	s.Contributions = nil
	s.ArrayContributions = nil
	s.broadened = broadenKey{}
}

// Select activates the named ions ("Al3+") and deactivates the rest. No
// names activates every ion.
func (s *State) Select(names ...string) error {
	active := make([]bool, len(s.Ions))
	for i, ion := range s.Ions {
		active[i] = len(names) == 0 || slices.Contains(names, ion.Name())
	}
	for _, name := range names {
		if !slices.ContainsFunc(s.Ions, func(ion *Ion) bool { return ion.Name() == name }) {
			return fmt.Errorf("synth: unknown ion %q", name)
		}
	}
	s.Active = active
	return nil
}
