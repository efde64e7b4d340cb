package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/cowan/internal/config"
	"github.com/wildstyl3r/cowan/internal/metrics"
	"github.com/wildstyl3r/cowan/internal/store"
	"github.com/wildstyl3r/cowan/internal/structure"
)

var (
	configFile string
	verbose    bool

	cfg       *config.Config
	workspace structure.Workspace
	project   *store.Store
	collector = metrics.NewCollector()
)

var Root = &cobra.Command{
	Use:   "cowan",
	Short: "Plasma emission spectrum modeling and diagnostics.",
	Long: `cowan synthesizes emission spectra of multi-ion plasmas from atomic
transition tables and diagnoses electron temperature and density by comparing
them with measured spectra. The project is described by a TOML file (see
--config); state is kept in the .cowan directory of the workspace.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setConfig() },
}

func init() {
	Root.PersistentFlags().StringVarP(&configFile, "config", "c", "cowan.toml", "project configuration file")
	Root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	Root.AddCommand(runCmd, simulateCmd, scanCmd, rescoreCmd, ingestCmd, showCmd, serveCmd)
}

func setConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config: LogLevel: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	workspace = structure.Workspace{Root: cfg.Workspace}
	project = store.Open(cfg.Workspace)
	return nil
}

func main() {
	start := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := Root.ExecuteContext(ctx)
	stop()
	logrus.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("done")
	if err != nil {
		os.Exit(1)
	}
}
