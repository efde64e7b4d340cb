package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/cowan/internal/atom"
	"github.com/wildstyl3r/cowan/internal/cards"
	"github.com/wildstyl3r/cowan/internal/config"
	"github.com/wildstyl3r/cowan/internal/structure"
)

var noCache bool

var runCmd = &cobra.Command{
	Use:   "run [ion...]",
	Short: "Run the structure solver.",
	Long: `run writes the input cards of every configured ion (or of the named
ions, e.g. Al4+) and runs the structure solver stages on them. The transition
table of each ion is left in cal_result/<run>/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := cfg.Runner(workspace)
		runner.Metrics = collector
		runner.Observer = structure.ObserverFunc(func(stage string, percent int) {
			fmt.Fprintf(os.Stderr, "\r%-5s [%3d%%]", stage, percent)
			if percent == 100 {
				fmt.Fprintln(os.Stderr)
			}
		})
		if !noCache && cfg.Solver.Cache > 0 {
			if err := runner.EnableCache(cfg.Solver.Cache); err != nil {
				return err
			}
		}
		for _, p := range cfg.Ions {
			job, err := solverJob(p)
			if err != nil {
				return err
			}
			a, _ := atom.NewFromSymbol(p.Element, p.Charge)
			if len(args) > 0 && !slices.Contains(args, a.Name()) {
				continue
			}
			table, err := runner.Run(cmd.Context(), job)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"ion": a.Name(), "transitions": len(table)}).Info("transition table ready")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func init() {
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "always invoke the solver")
}

// solverJob builds the cards of an ion: the ground configuration followed by
// one configuration per excitation.
func solverJob(p config.IonParameters) (structure.Job, error) {
	ground, err := atom.NewFromSymbol(p.Element, p.Charge)
	if err != nil {
		return structure.Job{}, err
	}
	atoms := []*atom.Atom{ground}
	for _, pair := range p.Excitations {
		excited := ground.Clone()
		if err := excited.Excite(pair[0], pair[1]); err != nil {
			return structure.Job{}, fmt.Errorf("%s: %w", ground.Name(), err)
		}
		atoms = append(atoms, excited)
	}
	c36, err := cards.BuildCard36(atoms, nil)
	if err != nil {
		return structure.Job{}, err
	}
	c2 := cards.NewCard2()
	if len(p.Slater) == 2 {
		if err := c2.SetSlater(p.Slater[0], p.Slater[1]); err != nil {
			return structure.Job{}, err
		}
	}
	run, err := p.RunName()
	if err != nil {
		return structure.Job{}, err
	}
	return structure.Job{Card36: c36, Card2: c2, Run: run, Coupling: cfg.Solver.Coupling}, nil
}
