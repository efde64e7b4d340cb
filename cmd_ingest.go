package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/cowan/internal/catalog"
	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/render"
	"github.com/wildstyl3r/cowan/internal/structure"
	"github.com/wildstyl3r/cowan/internal/synth"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest file...",
	Short: "Diagnose a batch of spectra into the space-time catalog.",
	Long: `ingest runs a grid scan for every measured spectrum and records the best
cell in the catalog. File names of the form <x>mm_<t>ns give the position and
time of a spectrum; other names get negative tags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := baseState(nil)
		if err != nil {
			return err
		}
		p, err := project.Load()
		if err != nil {
			return err
		}
		if p.Catalog == nil {
			p.Catalog = catalog.New()
		}
		in := &catalog.Ingester{
			Catalog: p.Catalog,
			Diagnose: func(exp *experiment.Spectrum) (*synth.State, error) {
				if len(cfg.Window) == 2 {
					exp.SetWindow(cfg.Window[0], cfg.Window[1])
				}
				best, _, err := diagnose(base, exp)
				return best, err
			},
			Log: logrus.StandardLogger(),
		}
		ingestErr := in.Ingest(args)
		// keep what was ingested before a failure
		if err := project.Save(p); err != nil {
			return err
		}
		if ingestErr != nil {
			return ingestErr
		}
		return exportCatalog(p.Catalog)
	},
	DisableAutoGenTag: true,
}

// exportCatalog writes the time series of every position, the space series
// of every time and the temperature and density maps.
func exportCatalog(c *catalog.Catalog) error {
	dir := filepath.Join(workspace.Root, structure.ResultsDir)
	times := map[string]bool{}
	positions := map[[3]string]bool{}
	for _, key := range c.Keys() {
		if !positions[key.Position] {
			positions[key.Position] = true
			name := fmt.Sprintf("x%s_y%s_z%s.csv", key.Position[0], key.Position[1], key.Position[2])
			if err := catalog.WriteSeries(c.TimeSeries(key.Position), dir, "time_series", name); err != nil {
				return err
			}
		}
		if !times[key.Time] {
			times[key.Time] = true
			if err := catalog.WriteSeries(c.SpaceSeries(key.Time), dir, "space_series", "t"+key.Time+".csv"); err != nil {
				return err
			}
		}
	}
	for _, scalar := range []struct {
		name  string
		value catalog.Scalar
	}{
		{"temperature", catalog.Temperature},
		{"density", catalog.LogDensity},
	} {
		ts, xs, m := c.Heatmap(scalar.value)
		if len(ts) == 0 {
			continue
		}
		path := filepath.Join(workspace.Figures(), "catalog_"+scalar.name+".png")
		if err := render.Heatmap(path, scalar.name, "x", "t", xs, ts, m); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{"entries": c.Len(), "dir": dir}).Info("catalog exported")
	return nil
}
