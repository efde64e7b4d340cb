// Package lines holds transition tables produced by the structure solver.
package lines

import (
	"bufio"
	"cmp"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/wildstyl3r/cowan/internal/constants"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// Widths of the solver's spectral table: E_l, E_h, transition energy,
// intensity, index_l, index_h, J_l, J_h.
var Widths = []int{9, 9, 9, 9, 3, 3, 5, 5}

var ErrLineWidth = errors.New("lines: row wider than the declared columns")

func init() {
	gob.Register(Table{})
}

// Transition is one line record. Level energies are in the solver's units
// [1000 cm^-1]; Energy is in eV.
type Transition struct {
	LowerEnergy float64
	UpperEnergy float64
	Energy      float64 // [eV]
	Intensity   float64
	LowerIndex  int
	UpperIndex  int
	LowerJ      float64
	UpperJ      float64
}

// Wavelength in nm.
func (t Transition) Wavelength() float64 {
	return constants.WavelengthToEnergy(t.Energy)
}

// Array identifies a transition array by its configuration index pair.
type Array struct {
	Lower, Upper int
}

func (a Array) String() string { return fmt.Sprintf("%d-%d", a.Lower, a.Upper) }

func (t Transition) Array() Array { return Array{t.LowerIndex, t.UpperIndex} }

type Table []Transition

// Arrays partitions the table by configuration index pair. Keys are sorted.
func (tab Table) Arrays() ([]Array, map[Array]Table) {
	groups := make(map[Array]Table)
	for _, t := range tab {
		groups[t.Array()] = append(groups[t.Array()], t)
	}
	keys := make([]Array, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Array) int {
		if c := cmp.Compare(a.Lower, b.Lower); c != 0 {
			return c
		}
		return cmp.Compare(a.Upper, b.Upper)
	})
	return keys, groups
}

func (tab Table) Clone() Table {
	return slices.Clone(tab)
}

// Read parses a fixed-width spectral table. Rows shorter than the declared
// widths are padded; longer rows are rejected.
func Read(r io.Reader) (Table, error) {
	total := utils.SumSlice(Widths)
	var table Table
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" {
			continue
		}
		if len(line) > total {
			return nil, fmt.Errorf("%w: line %d has %d columns, want at most %d", ErrLineWidth, lineNo, len(line), total)
		}
		line += strings.Repeat(" ", total-len(line))
		fields := make([]string, len(Widths))
		at := 0
		for i, w := range Widths {
			fields[i] = strings.TrimSpace(line[at : at+w])
			at += w
		}
		t, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("lines: line %d: %w", lineNo, err)
		}
		table = append(table, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	return table, nil
}

func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func parseRow(fields []string) (t Transition, err error) {
	floats := make([]float64, 8)
	for i, f := range fields {
		if floats[i], err = strconv.ParseFloat(f, 64); err != nil {
			return t, err
		}
	}
	return Transition{
		LowerEnergy: floats[0],
		UpperEnergy: floats[1],
		Energy:      floats[2],
		Intensity:   floats[3],
		LowerIndex:  int(floats[4]),
		UpperIndex:  int(floats[5]),
		LowerJ:      floats[6],
		UpperJ:      floats[7],
	}, nil
}

// Write formats the table in the solver's fixed-width layout.
func Write(w io.Writer, table Table) error {
	bw := bufio.NewWriter(w)
	for _, t := range table {
		if _, err := fmt.Fprintf(bw, "%9.3f%9.3f%9.4f%9.4g%3d%3d%5.1f%5.1f\n",
			t.LowerEnergy, t.UpperEnergy, t.Energy, t.Intensity,
			t.LowerIndex, t.UpperIndex, t.LowerJ, t.UpperJ); err != nil {
			return err
		}
	}
	return bw.Flush()
}
