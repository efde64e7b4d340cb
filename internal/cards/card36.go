package cards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wildstyl3r/cowan/internal/atom"
)

var card36Widths = []int{1, 1, 1, 2, 1, 2, 2, 3, 2, 5, 10, 10, 2, 2, 1, 1, 2, 2, 5, 5, 5, 5, 5}

const defaultControl36 = "2  -9    2   10  1.0    5.e-08    1.e-11-2  0130    1.0 0.65  0.0  0.5  0.0  0.7"

const terminator36 = "   -1"

// Configuration is one configuration line of Card36.
type Configuration struct {
	Z             int
	Ion           int    // charge + 1
	Label         string // at most 18 columns
	Configuration string
}

func (c Configuration) String() string {
	return fmt.Sprintf("%4d%2d%-18s    %s", c.Z, c.Ion, c.Label, c.Configuration)
}

// Card36 is the first-stage input of the structure solver: a control line
// followed by the configurations to compute.
type Card36 struct {
	Control        *Record
	Configurations []Configuration
}

// NewCard36 returns a card with the default control line and no configurations.
func NewCard36() *Card36 {
	control, err := parseRecord(defaultControl36, card36Widths)
	if err != nil {
		panic(err)
	}
	return &Card36{Control: control}
}

// BuildCard36 writes one configuration line per atom. All atoms must be the
// same charge state of the same element. controls overrides control-line
// fields by index.
func BuildCard36(atoms []*atom.Atom, controls map[int]string) (*Card36, error) {
	if len(atoms) == 0 {
		return nil, ErrEmptyConfigurationSet
	}
	c := NewCard36()
	for i, value := range controls {
		if err := c.Control.Set(i, value); err != nil {
			return nil, err
		}
	}
	for _, a := range atoms {
		if a.Z != atoms[0].Z || a.Charge != atoms[0].Charge {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedConfigurationSets, atoms[0].Name(), a.Name())
		}
		label := a.Label()
		if len(label) > 18 {
			label = label[:18]
		}
		c.Configurations = append(c.Configurations, Configuration{
			Z:             a.Z,
			Ion:           a.Charge + 1,
			Label:         label,
			Configuration: a.Configuration(),
		})
	}
	return c, nil
}

func (c *Card36) String() string {
	var b strings.Builder
	b.WriteString(c.Control.String())
	b.WriteByte('\n')
	for _, config := range c.Configurations {
		b.WriteString(config.String())
		b.WriteByte('\n')
	}
	b.WriteString(terminator36)
	b.WriteByte('\n')
	return b.String()
}

// ParseCard36 reads a card written by String.
func ParseCard36(text string) (*Card36, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: Card36 too short", ErrMalformedCard)
	}
	control, err := parseRecord(lines[0], card36Widths)
	if err != nil {
		return nil, err
	}
	c := &Card36{Control: control}
	for i, line := range lines[1:] {
		if line == terminator36 {
			if rest := strings.Join(lines[i+2:], "\n"); rest != "" {
				return nil, fmt.Errorf("%w: data after terminator", ErrMalformedCard)
			}
			return c, nil
		}
		config, err := parseConfiguration(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		c.Configurations = append(c.Configurations, config)
	}
	return nil, fmt.Errorf("%w: Card36 missing terminator", ErrMalformedCard)
}

func parseConfiguration(line string) (Configuration, error) {
	if len(line) < 28 || line[24:28] != "    " {
		return Configuration{}, fmt.Errorf("%w: bad configuration line %q", ErrMalformedCard, line)
	}
	z, err := strconv.Atoi(strings.TrimSpace(line[0:4]))
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %v", ErrMalformedCard, err)
	}
	ion, err := strconv.Atoi(strings.TrimSpace(line[4:6]))
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %v", ErrMalformedCard, err)
	}
	return Configuration{
		Z:             z,
		Ion:           ion,
		Label:         strings.TrimRight(line[6:24], " "),
		Configuration: line[28:],
	}, nil
}

// Equal compares two cards by their serialized form.
func (c *Card36) Equal(o *Card36) bool {
	return c.String() == o.String()
}

func (c *Card36) Clone() *Card36 {
	return &Card36{
		Control:        c.Control.clone(),
		Configurations: append([]Configuration(nil), c.Configurations...),
	}
}
