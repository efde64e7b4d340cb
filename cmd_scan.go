package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/wildstyl3r/cowan/internal/grid"
	"github.com/wildstyl3r/cowan/internal/render"
	"github.com/wildstyl3r/cowan/internal/structure"
)

var scanFlags struct {
	experiment string
	top        int
	xlsx       bool
	plot       bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the temperature and density grid.",
	Long: `scan synthesizes and scores the spectrum at every (T, ne) point of the
[Scan] grid in parallel, stores the grid in the project and reports the best
cells.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := loadExperiment(scanFlags.experiment)
		if err != nil {
			return err
		}
		base, err := baseState(exp)
		if err != nil {
			return err
		}
		axes, err := grid.NewAxes(cfg.AxesSpec())
		if err != nil {
			return err
		}
		g := scanner(false).Calculate(base, axes)
		return finishGrid(g)
	},
	DisableAutoGenTag: true,
}

var rescoreCmd = &cobra.Command{
	Use:   "rescore [experiment]",
	Short: "Score the stored grid against another experiment.",
	Long: `rescore compares every cell of the stored grid with a (new) experimental
spectrum without synthesizing the cells again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		exp, err := loadExperiment(path)
		if err != nil {
			return err
		}
		p, err := project.Load()
		if err != nil {
			return err
		}
		if p.Grid == nil {
			return fmt.Errorf("no stored grid in %s, run cowan scan first", workspace.Root)
		}
		scanner(false).Rescore(p.Grid, exp)
		return finishGrid(p.Grid)
	},
	DisableAutoGenTag: true,
}

func init() {
	for _, cmd := range []*cobra.Command{scanCmd, rescoreCmd} {
		f := cmd.Flags()
		f.IntVar(&scanFlags.top, "top", 5, "number of best cells to print")
		f.BoolVar(&scanFlags.xlsx, "xlsx", true, "export the grid to cal_result/grid.xlsx")
		f.BoolVar(&scanFlags.plot, "plot", true, "write the similarity map and the best spectrum")
	}
	scanCmd.Flags().StringVarP(&scanFlags.experiment, "experiment", "e", "", "experiment file (.csv or .txt)")
}

// finishGrid stores g, prints its best cells and writes the exports.
func finishGrid(g *grid.Grid) error {
	p, err := project.Load()
	if err != nil {
		return err
	}
	p.Grid = g
	if err := project.Save(p); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "rank\tT [eV]\tne [cm^-3]\tsimilarity")
	for i, key := range g.Ranked() {
		if i == scanFlags.top {
			break
		}
		fmt.Fprintf(w, "%d\t%g\t%.3g\t%.4f\n", i+1, key.Temperature, key.Density, g.Cells[key].Similarity())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if scanFlags.xlsx {
		path := filepath.Join(workspace.Root, structure.ResultsDir, "grid.xlsx")
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return err
		}
		if err := g.WriteXLSX(path); err != nil {
			return err
		}
		logrus.WithField("file", path).Info("grid exported")
	}
	if scanFlags.plot {
		return plotGrid(g)
	}
	return nil
}

func plotGrid(g *grid.Grid) error {
	rows := g.Similarity()
	m := mat.NewDense(len(g.Axes.Temperature), len(g.Axes.Density), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	ts := make([]string, len(g.Axes.Temperature))
	for i, T := range g.Axes.Temperature {
		ts[i] = strconv.FormatFloat(T, 'g', 4, 64)
	}
	nes := make([]string, len(g.Axes.Density))
	for i, ne := range g.Axes.Density {
		nes[i] = strconv.FormatFloat(ne, 'e', 1, 64)
	}
	path := filepath.Join(workspace.Figures(), "grid.png")
	if err := render.Heatmap(path, "similarity", "ne (cm^-3)", "T (eV)", nes, ts, m); err != nil {
		return err
	}
	key, cell, ok := g.Best()
	if !ok {
		return nil
	}
	// cells are stored without contributions
	best, err := cell.At(key.Temperature, key.Density)
	if err != nil {
		return err
	}
	return plotState(best, "grid_best")
}
