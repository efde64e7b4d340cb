// Package experiment holds a measured emission spectrum and its active
// wavelength window.
package experiment

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/wildstyl3r/cowan/internal/utils"
)

var ErrUnsupportedFileFormat = errors.New("experiment: unsupported file format")

// Spectrum keeps the original samples, ascending in wavelength, and a window
// over them. The original arrays are never modified.
type Spectrum struct {
	Path string

	wavelength []float64 // [nm]
	intensity  []float64
	lo, hi     int // active samples are [lo, hi)
	winLo      float64
	winHi      float64
	disjoint   bool

	mu         sync.Mutex
	normalized []float64
}

// New copies the samples and sorts them by wavelength.
func New(wavelength, intensity []float64) (*Spectrum, error) {
	if len(wavelength) != len(intensity) {
		return nil, fmt.Errorf("experiment: %d wavelengths for %d intensities", len(wavelength), len(intensity))
	}
	pairs := make([][2]float64, len(wavelength))
	for i := range wavelength {
		pairs[i] = [2]float64{wavelength[i], intensity[i]}
	}
	return fromPairs(pairs), nil
}

func fromPairs(pairs [][2]float64) *Spectrum {
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	s := &Spectrum{
		wavelength: make([]float64, len(pairs)),
		intensity:  make([]float64, len(pairs)),
		hi:         len(pairs),
	}
	for i := range pairs {
		s.wavelength[i] = pairs[i][0]
		s.intensity[i] = pairs[i][1]
	}
	s.winLo, s.winHi = s.Range()
	return s
}

// Load reads a .csv (comma separated) or .txt (whitespace separated) file
// with a one-line header and two columns: wavelength [nm] and intensity.
func Load(path string) (*Spectrum, error) {
	var separator rune
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		separator = ','
	case ".txt":
		separator = 0
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pairs, err := utils.ReadFloatPairs(f, separator, true)
	if err != nil {
		return nil, fmt.Errorf("experiment: %s: %w", path, err)
	}
	s := fromPairs(pairs)
	s.Path = path
	return s, nil
}

func (s *Spectrum) Len() int { return s.hi - s.lo }

// Range is the wavelength span of the original samples.
func (s *Spectrum) Range() (lo, hi float64) {
	if len(s.wavelength) == 0 {
		return 0, 0
	}
	return s.wavelength[0], s.wavelength[len(s.wavelength)-1]
}

// Window is the active wavelength span. It may hold no sample.
func (s *Spectrum) Window() (lo, hi float64) { return s.winLo, s.winHi }

// Disjoint reports whether the window lies outside the original range.
func (s *Spectrum) Disjoint() bool { return s.disjoint }

// SetWindow restricts the active samples to [lo, hi], clamped to the
// original range. A window outside the range keeps its bounds and selects
// nothing.
func (s *Spectrum) SetWindow(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	first, last := s.Range()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalized = nil
	if hi < first || lo > last {
		s.winLo, s.winHi, s.disjoint = lo, hi, true
		s.lo, s.hi = 0, 0
		return
	}
	lo, hi = max(lo, first), min(hi, last)
	s.winLo, s.winHi, s.disjoint = lo, hi, false
	s.lo, _ = slices.BinarySearch(s.wavelength, lo)
	s.hi, _ = slices.BinarySearch(s.wavelength, hi)
	for s.hi < len(s.wavelength) && s.wavelength[s.hi] <= hi {
		s.hi++
	}
	if s.hi < s.lo {
		s.hi = s.lo
	}
}

func (s *Spectrum) ResetWindow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lo, s.hi = 0, len(s.wavelength)
	s.winLo, s.winHi = s.Range()
	s.disjoint = false
	s.normalized = nil
}

// Wavelength returns the active samples. Callers must not modify the slice.
func (s *Spectrum) Wavelength() []float64 { return s.wavelength[s.lo:s.hi:s.hi] }

func (s *Spectrum) Intensity() []float64 { return s.intensity[s.lo:s.hi:s.hi] }

// Normalized returns (I - min I) / (max I - min I) over the active window.
func (s *Spectrum) Normalized() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.normalized == nil {
		s.normalized = utils.MinMaxNormalize(s.intensity[s.lo:s.hi])
	}
	return s.normalized
}

type wire struct {
	Path                  string
	Wavelength, Intensity []float64
	Lo, Hi                int
	WinLo, WinHi          float64
	Disjoint              bool
}

func (s *Spectrum) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(wire{s.Path, s.wavelength, s.intensity, s.lo, s.hi, s.winLo, s.winHi, s.disjoint})
	return buf.Bytes(), err
}

func (s *Spectrum) GobDecode(data []byte) error {
	var w wire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	if len(w.Wavelength) != len(w.Intensity) || w.Lo < 0 || w.Hi > len(w.Wavelength) || w.Lo > w.Hi {
		return fmt.Errorf("experiment: corrupt spectrum record")
	}
	s.Path, s.wavelength, s.intensity, s.lo, s.hi = w.Path, w.Wavelength, w.Intensity, w.Lo, w.Hi
	s.winLo, s.winHi, s.disjoint = w.WinLo, w.WinHi, w.Disjoint
	if !s.disjoint && s.winLo == 0 && s.winHi == 0 && s.hi > s.lo {
		s.winLo, s.winHi = s.wavelength[s.lo], s.wavelength[s.hi-1]
	}
	s.normalized = nil
	return nil
}
