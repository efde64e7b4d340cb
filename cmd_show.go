package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var dump bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored project.",
	Long:  `show prints the current state, the best grid cells and the catalog of the project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.Load()
		if err != nil {
			return err
		}
		if dump {
			spew.Config.DisablePointerAddresses = true
			spew.Dump(p)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintf(w, "project\t%s\n", p.ID)
		if s := p.State; s != nil {
			var ions []string
			for i, ion := range s.Ions {
				if s.Active[i] {
					ions = append(ions, ion.Name())
				}
			}
			fmt.Fprintf(w, "state\tT = %g eV\tne = %.3g cm^-3\tsimilarity %.4f\t%s\n",
				s.Temperature, s.Density, s.Similarity(), strings.Join(ions, " "))
		}
		if g := p.Grid; g != nil {
			fmt.Fprintf(w, "grid\t%s\t%d x %d\t%d cells\n", g.ID, len(g.Axes.Temperature), len(g.Axes.Density), len(g.Cells))
			if key, cell, ok := g.Best(); ok {
				fmt.Fprintf(w, "best\tT = %g eV\tne = %.3g cm^-3\tsimilarity %.4f\n", key.Temperature, key.Density, cell.Similarity())
			}
		}
		if c := p.Catalog; c != nil {
			fmt.Fprintf(w, "catalog\t%d entries\n", c.Len())
			for _, key := range c.Keys() {
				s, _ := c.Get(key)
				fmt.Fprintf(w, "\tt = %s\t(%s)\tT = %g eV\tne = %.3g cm^-3\n",
					key.Time, strings.Join(key.Position[:], ", "), s.Temperature, s.Density)
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func init() {
	showCmd.Flags().BoolVar(&dump, "dump", false, "dump every stored value")
}
