package cards

import (
	"fmt"
	"strings"
)

var card2Widths = []int{5, 2, 1, 2, 1, 2, 7, 1, 8, 8, 8, 4, 1, 2, 2, 2, 2, 2, 5, 5, 1, 1, 1, 1, 1, 5}

var defaultControl2 = []string{
	"g5inp", "", "0", "00", "0", "00", "", "0", "00000000", "00000000", "00000000", "0000", "",
	"85", "85", "99", "99", "99", "0.00", "0.00", "0", "0", "0", "0", "0", "0.00",
}

// Slater scaling group of Card2 (percent of the ab initio radial integrals).
const (
	SlaterFk = 13
	SlaterGk = 14
)

const terminator2 = "        -1"

// Card2 is the control card of the energy-level stage of the solver.
type Card2 struct {
	Control *Record
}

func NewCard2() *Card2 {
	return &Card2{Control: newRecord(card2Widths, defaultControl2)}
}

// SetSlater sets the Fk and Gk scaling percentages independently.
func (c *Card2) SetSlater(fk, gk int) error {
	if err := c.Control.SetInt(SlaterFk, fk); err != nil {
		return err
	}
	return c.Control.SetInt(SlaterGk, gk)
}

func (c *Card2) String() string {
	return c.Control.String() + "\n" + terminator2 + "\n"
}

func ParseCard2(text string) (*Card2, error) {
	lines := strings.Split(text, "\n")
	if len(lines) != 3 || lines[1] != terminator2 || lines[2] != "" {
		return nil, fmt.Errorf("%w: Card2 must be one control line and the terminator", ErrMalformedCard)
	}
	control, err := parseRecord(lines[0], card2Widths)
	if err != nil {
		return nil, err
	}
	return &Card2{Control: control}, nil
}

func (c *Card2) Equal(o *Card2) bool {
	return c.Control.equal(o.Control)
}

func (c *Card2) Clone() *Card2 {
	return &Card2{Control: c.Control.clone()}
}
