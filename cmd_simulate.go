package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/cowan/internal/config"
	"github.com/wildstyl3r/cowan/internal/render"
	"github.com/wildstyl3r/cowan/internal/synth"
)

var simulateFlags struct {
	experiment  string
	temperature float64
	density     float64
	ions        []string
	plot        bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Synthesize the spectrum at one temperature and density.",
	Long: `simulate synthesizes the spectrum of the configured ions at the configured
(or given) electron temperature and density, scores it against the experiment
and stores it as the project's current state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := loadExperiment(simulateFlags.experiment)
		if err != nil {
			return err
		}
		s, err := baseState(exp)
		if err != nil {
			return err
		}
		units := cfg.Units()
		if cmd.Flags().Changed("temperature") {
			s.Temperature = config.ToBase(simulateFlags.temperature, []config.UnitElement{{Class: config.Temperature, Power: 1}}, units, true)
		}
		if cmd.Flags().Changed("density") {
			s.Density = config.ToBase(simulateFlags.density, []config.UnitElement{{Class: config.Density, Power: 1}}, units, true)
		}
		if err := s.Select(simulateFlags.ions...); err != nil {
			return err
		}
		if err := s.Update(); err != nil {
			return err
		}
		for element, fractions := range s.Abundances {
			logrus.WithFields(logrus.Fields{"element": element, "fractions": fractions}).Debug("ionization balance")
		}
		fmt.Printf("T = %g eV, ne = %.3g cm^-3, similarity %.4f (%v)\n", s.Temperature, s.Density, s.Similarity(), s.Score.Mode)

		p, err := project.Load()
		if err != nil {
			return err
		}
		p.State = s
		if err := project.Save(p); err != nil {
			return err
		}
		if simulateFlags.plot {
			return plotState(s, "simulation")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateFlags.experiment, "experiment", "e", "", "experiment file (.csv or .txt)")
	f.Float64VarP(&simulateFlags.temperature, "temperature", "t", 0, "electron temperature in TemperatureUnit")
	f.Float64VarP(&simulateFlags.density, "density", "n", 0, "electron density in DensityUnit")
	f.StringSliceVar(&simulateFlags.ions, "ions", nil, "ions to include, e.g. Al4+,Al5+ (default all)")
	f.BoolVar(&simulateFlags.plot, "plot", true, "write figures")
}

// plotState writes the spectrum and ion contribution figures of s.
func plotState(s *synth.State, name string) error {
	dir := workspace.Figures()
	exp := s.Experiment
	title := fmt.Sprintf("T = %g eV, ne = %.3g cm^-3", s.Temperature, s.Density)
	if err := render.Spectrum(filepath.Join(dir, name+".png"), title,
		render.Curve{Label: "experiment", X: exp.Wavelength(), Y: exp.Normalized()},
		render.Curve{Label: "simulation", X: s.Wavelength, Y: s.Intensity},
	); err != nil {
		return err
	}
	labels := make([]string, len(s.Ions))
	for i, ion := range s.Ions {
		labels[i] = ion.Name()
	}
	if len(s.Contributions) == len(labels) {
		if err := render.Contributions(filepath.Join(dir, name+"_ions.png"), title, s.Wavelength, labels, s.Contributions); err != nil {
			return err
		}
	}
	logrus.WithField("dir", dir).Info("figures written")
	return nil
}
