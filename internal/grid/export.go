package grid

import (
	"math"

	"github.com/tealeg/xlsx"
)

// WriteXLSX saves the similarity matrix (temperature rows, density columns)
// and a long-format sheet of every cell, best first.
func (g *Grid) WriteXLSX(path string) error {
	file := xlsx.NewFile()

	matrix, err := file.AddSheet("similarity")
	if err != nil {
		return err
	}
	header := matrix.AddRow()
	header.AddCell().SetString("T [eV] \\ ne [cm^-3]")
	for _, ne := range g.Axes.Density {
		header.AddCell().SetFloat(ne)
	}
	for i, values := range g.Similarity() {
		row := matrix.AddRow()
		row.AddCell().SetFloat(g.Axes.Temperature[i])
		for _, v := range values {
			cell := row.AddCell()
			if !math.IsNaN(v) {
				cell.SetFloat(v)
			}
		}
	}

	cells, err := file.AddSheet("cells")
	if err != nil {
		return err
	}
	header = cells.AddRow()
	for _, title := range []string{"T [eV]", "ne [cm^-3]", "similarity", "distance", "mode"} {
		header.AddCell().SetString(title)
	}
	for _, key := range g.Ranked() {
		state := g.Cells[key]
		row := cells.AddRow()
		row.AddCell().SetFloat(key.Temperature)
		row.AddCell().SetFloat(key.Density)
		row.AddCell().SetFloat(state.Similarity())
		row.AddCell().SetFloat(state.Score.Distance)
		row.AddCell().SetString(state.Score.Mode.String())
	}
	return file.Save(path)
}
