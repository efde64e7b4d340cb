package cards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wildstyl3r/cowan/internal/utils"
)

var (
	ErrFieldOverflow          = errors.New("cards: value does not fit field")
	ErrMalformedCard          = errors.New("cards: malformed card")
	ErrEmptyConfigurationSet  = errors.New("cards: empty configuration set")
	ErrMixedConfigurationSets = errors.New("cards: configurations of different ions")
)

// LineWidth is the width of every control line.
const LineWidth = 80

// Record is one fixed-column control line. Field text is kept verbatim so
// that a parsed line formats back to the same bytes.
type Record struct {
	widths []int
	fields []string
	tail   string // columns after the last declared field
}

func newRecord(widths []int, values []string) *Record {
	r := &Record{widths: widths, fields: make([]string, len(widths))}
	for i, w := range widths {
		r.fields[i] = strings.Repeat(" ", w)
		if i < len(values) {
			r.fields[i] = pad(values[i], w)
		}
	}
	r.tail = strings.Repeat(" ", LineWidth-utils.SumSlice(widths))
	return r
}

func parseRecord(line string, widths []int) (*Record, error) {
	if len(line) != LineWidth {
		return nil, fmt.Errorf("%w: control line has %d columns, want %d", ErrMalformedCard, len(line), LineWidth)
	}
	r := &Record{widths: widths, fields: make([]string, len(widths))}
	at := 0
	for i, w := range widths {
		r.fields[i] = line[at : at+w]
		at += w
	}
	r.tail = line[at:]
	return r, nil
}

func pad(value string, width int) string {
	if len(value) >= width {
		return value[:width]
	}
	return strings.Repeat(" ", width-len(value)) + value
}

// Len is the number of declared fields.
func (r *Record) Len() int { return len(r.fields) }

// Raw returns field i exactly as it appears in the line.
func (r *Record) Raw(i int) string { return r.fields[i] }

// Get returns field i without padding.
func (r *Record) Get(i int) string { return strings.TrimSpace(r.fields[i]) }

// Set right-justifies value in field i.
func (r *Record) Set(i int, value string) error {
	if i < 0 || i >= len(r.fields) {
		return fmt.Errorf("cards: field %d out of range [0, %d)", i, len(r.fields))
	}
	if len(value) > r.widths[i] {
		return fmt.Errorf("%w: %q in field %d of width %d", ErrFieldOverflow, value, i, r.widths[i])
	}
	r.fields[i] = pad(value, r.widths[i])
	return nil
}

func (r *Record) SetInt(i, value int) error {
	return r.Set(i, strconv.Itoa(value))
}

func (r *Record) Int(i int) (int, error) {
	v := r.Get(i)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (r *Record) Float(i int) (float64, error) {
	v := r.Get(i)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func (r *Record) String() string {
	var b strings.Builder
	for _, f := range r.fields {
		b.WriteString(f)
	}
	b.WriteString(r.tail)
	return b.String()
}

func (r *Record) clone() *Record {
	c := *r
	c.fields = append([]string(nil), r.fields...)
	return &c
}

func (r *Record) equal(o *Record) bool {
	return r.String() == o.String()
}
