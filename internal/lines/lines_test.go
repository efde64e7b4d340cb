package lines

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

const sample = "" +
	"    0.000  967.742  120.000   1.0000  1  2  0.0  1.0\n" +
	"    0.000  971.000  120.404   0.5000  1  2  0.0  2.0\n" +
	"   12.500  900.000  110.030   0.2500  1  3  1.0  1.0\n"

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 3 {
		t.Fatalf("have %d rows, want 3", len(table))
	}
	first := table[0]
	if first.UpperEnergy != 967.742 || first.Energy != 120 || first.Intensity != 1 {
		t.Errorf("have %+v", first)
	}
	if first.LowerIndex != 1 || first.UpperIndex != 2 || first.UpperJ != 1 {
		t.Errorf("have %+v", first)
	}
	if have, want := first.Wavelength(), 1239.85/120.; math.Abs(have-want) > 1e-12 {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestReadShortRowPadded(t *testing.T) {
	table, err := Read(strings.NewReader("    0.000  967.742  120.000   1.0000  1  2  0.0  1"))
	if err != nil {
		t.Fatal(err)
	}
	if table[0].UpperJ != 1 {
		t.Errorf("have J_h %v, want 1", table[0].UpperJ)
	}
}

func TestReadRejectsWideRow(t *testing.T) {
	_, err := Read(strings.NewReader("    0.000  967.742  120.000   1.0000  1  2  0.0  1.0  7\n"))
	if !errors.Is(err, ErrLineWidth) {
		t.Errorf("have %v, want ErrLineWidth", err)
	}
}

func TestArrays(t *testing.T) {
	table, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	keys, groups := table.Arrays()
	if len(keys) != 2 || keys[0] != (Array{1, 2}) || keys[1] != (Array{1, 3}) {
		t.Fatalf("have keys %v", keys)
	}
	if len(groups[Array{1, 2}]) != 2 || len(groups[Array{1, 3}]) != 1 {
		t.Errorf("have groups %v", groups)
	}
	if keys[0].String() != "1-2" {
		t.Errorf("have %q, want 1-2", keys[0].String())
	}
}

func TestWriteRead(t *testing.T) {
	table, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatal(err)
	}
	again, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(table) {
		t.Fatalf("have %d rows, want %d", len(again), len(table))
	}
	for i := range table {
		if again[i] != table[i] {
			t.Errorf("row %d: have %+v, want %+v", i, again[i], table[i])
		}
	}
}
