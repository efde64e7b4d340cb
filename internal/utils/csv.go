package utils

import (
	"encoding/csv"
	"slices"

	"github.com/facette/natsort"
)

type CSV [][]string

// SortBy orders the rows on their first column.
func (data CSV) SortBy(compare func(a, b string) int) {
	slices.SortStableFunc(data, func(a, b []string) int { return compare(a[0], b[0]) })
}

// NaturalOrder compares strings in natural order.
func NaturalOrder(a, b string) int {
	switch {
	case a == b:
		return 0
	case natsort.Compare(a, b):
		return -1
	}
	return 1
}

// WriteAsCSV writes columns followed by data, in the given row order, into
// path/subpath/filename.
func WriteAsCSV(data CSV, path, subpath, filename string, columns []string) error {
	file, err := OpenFile(path, subpath, filename)
	if err != nil {
		return err
	}
	defer file.Close()
	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return err
	}
	if err := w.WriteAll(data); err != nil {
		return err
	}
	return file.Close()
}
