package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/experiment"
	"github.com/wildstyl3r/cowan/internal/grid"
	"github.com/wildstyl3r/cowan/internal/lines"
	"github.com/wildstyl3r/cowan/internal/synth"
)

// experimentPath is path, else the configured experiment, else the
// workspace's exp_data.csv or exp_data.txt.
func experimentPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if cfg.Experiment != "" {
		return cfg.Experiment, nil
	}
	for _, ext := range []string{".csv", ".txt"} {
		p := workspace.Experiment(ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no experiment given and no %s in %s", "exp_data.csv", workspace.Root)
}

func loadExperiment(path string) (*experiment.Spectrum, error) {
	path, err := experimentPath(path)
	if err != nil {
		return nil, err
	}
	exp, err := experiment.Load(path)
	if err != nil {
		return nil, err
	}
	if len(cfg.Window) == 2 {
		exp.SetWindow(cfg.Window[0], cfg.Window[1])
	}
	logrus.WithFields(logrus.Fields{"file": path, "samples": exp.Len()}).Info("experiment loaded")
	return exp, nil
}

// loadIons reads the transition table of every configured ion.
func loadIons() ([]*synth.Ion, error) {
	if len(cfg.Ions) == 0 {
		return nil, synth.ErrNoIons
	}
	ions := make([]*synth.Ion, 0, len(cfg.Ions))
	for _, p := range cfg.Ions {
		path, err := cfg.Lines(workspace, p)
		if err != nil {
			return nil, err
		}
		table, err := lines.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: no transition table, run the solver first (cowan run): %w", path, err)
		}
		if err != nil {
			return nil, err
		}
		ion, err := synth.NewIon(p.Element, p.Charge, table)
		if err != nil {
			return nil, err
		}
		ion.Run, _ = p.RunName()
		ion.Offset, ion.FWHM = p.Offset, p.FWHM
		ions = append(ions, ion)
	}
	return ions, nil
}

// baseState is the configured state before any computation.
func baseState(exp *experiment.Spectrum) (*synth.State, error) {
	ions, err := loadIons()
	if err != nil {
		return nil, err
	}
	chi, err := cfg.ChiOverrides()
	if err != nil {
		return nil, err
	}
	s := synth.New(ions, exp)
	s.Temperature, s.Density = cfg.Temperature, cfg.Density
	s.Ratio = cfg.Ratios()
	s.ChiOverride = chi
	s.Anchors = cfg.Anchors
	s.Points = cfg.Points
	s.Threaded = cfg.Threaded
	s.Grouped = cfg.Grouped
	return s, nil
}

func scanner(quiet bool) *grid.Scanner {
	sc := &grid.Scanner{Workers: cfg.Workers, Metrics: collector, Log: logrus.StandardLogger()}
	if !quiet {
		sc.Observer = grid.ObserverFunc(func(_ grid.Key, done, total int) {
			fmt.Fprintf(os.Stderr, "\rDone:[%d/%d]", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		})
	}
	return sc
}

// diagnose scans the configured grid against exp and returns the best cell
// recomputed with its contributions.
func diagnose(base *synth.State, exp *experiment.Spectrum) (*synth.State, *grid.Grid, error) {
	axes, err := grid.NewAxes(cfg.AxesSpec())
	if err != nil {
		return nil, nil, err
	}
	trial := base.Derive()
	trial.Experiment = exp
	g := scanner(true).Calculate(trial, axes)
	key, _, ok := g.Best()
	if !ok {
		return nil, g, fmt.Errorf("no grid cell could be computed for %s", exp.Path)
	}
	best, err := trial.At(key.Temperature, key.Density)
	if err != nil {
		return nil, g, err
	}
	return best, g, nil
}
