package atom

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var ErrInvalidExcitation = errors.New("atom: invalid excitation")

// Atom is one charge state of an element together with its current
// electron configuration.
type Atom struct {
	Z      int
	Charge int // 0 for the neutral atom

	occupancy map[Subshell]int
}

func New(z, charge int) (*Atom, error) {
	if _, err := Symbol(z); err != nil {
		return nil, err
	}
	if charge < 0 || charge >= z {
		return nil, fmt.Errorf("atom: charge %d outside [0, %d)", charge, z)
	}
	a := &Atom{Z: z, Charge: charge}
	a.RevertToGround()
	return a, nil
}

// NewFromSymbol is New with the element given by its chemical symbol.
func NewFromSymbol(symbol string, charge int) (*Atom, error) {
	z, err := Z(symbol)
	if err != nil {
		return nil, err
	}
	return New(z, charge)
}

func (a *Atom) Symbol() string { return symbols[a.Z] }

// Electrons is Z - q.
func (a *Atom) Electrons() int { return a.Z - a.Charge }

// Name is the ion name such as "Al3+" (or "Al" for the neutral).
func (a *Atom) Name() string {
	if a.Charge == 0 {
		return a.Symbol()
	}
	return a.Symbol() + strconv.Itoa(a.Charge) + "+"
}

func (a *Atom) RevertToGround() {
	a.occupancy = groundOccupancy(a.Z, a.Charge)
}

// Occupancy returns the number of electrons in the subshell with the given label.
func (a *Atom) Occupancy(label string) int {
	s, err := ParseSubshell(label)
	if err != nil {
		return 0
	}
	return a.occupancy[s]
}

// Occupancies returns a copy of the occupation map.
func (a *Atom) Occupancies() map[Subshell]int {
	return maps.Clone(a.occupancy)
}

// Excite moves one electron from one subshell to another.
func (a *Atom) Excite(from, to string) error {
	src, err := ParseSubshell(from)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExcitation, err)
	}
	dst, err := ParseSubshell(to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExcitation, err)
	}
	if src == dst {
		return fmt.Errorf("%w: %s to itself", ErrInvalidExcitation, from)
	}
	if a.occupancy[src] == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidExcitation, src.Label())
	}
	if a.occupancy[dst] >= dst.Capacity() {
		return fmt.Errorf("%w: %s is full", ErrInvalidExcitation, dst.Label())
	}
	a.occupancy[src]--
	if a.occupancy[src] == 0 {
		delete(a.occupancy, src)
	}
	a.occupancy[dst]++
	return nil
}

func (a *Atom) Clone() *Atom {
	return &Atom{Z: a.Z, Charge: a.Charge, occupancy: maps.Clone(a.occupancy)}
}

func (a *Atom) populated() (subshells []Subshell) {
	for _, s := range sequence {
		if a.occupancy[s] > 0 {
			subshells = append(subshells, s)
		}
	}
	return
}

// GroundConfiguration lists every populated subshell of the ground state.
func (a *Atom) GroundConfiguration() string {
	ground := &Atom{Z: a.Z, Charge: a.Charge}
	ground.RevertToGround()
	return format(ground.populated(), ground.occupancy)
}

// Configuration lists the current configuration without closed inner
// subshells. The two outermost populated subshells are always kept.
func (a *Atom) Configuration() string {
	populated := a.populated()
	var kept []Subshell
	for i, s := range populated {
		if i >= len(populated)-2 || a.occupancy[s] < s.Capacity() {
			kept = append(kept, s)
		}
	}
	return format(kept, a.occupancy)
}

// Label is a short human-readable name of the current configuration, such as
// "Al3+ 2p5 3s1".
func (a *Atom) Label() string {
	populated := a.populated()
	if len(populated) > 2 {
		populated = populated[len(populated)-2:]
	}
	parts := []string{a.Name()}
	for _, s := range populated {
		parts = append(parts, s.Label()+strconv.Itoa(a.occupancy[s]))
	}
	return strings.Join(parts, " ")
}

func (a *Atom) Parity() int {
	return parity(a.occupancy)
}
