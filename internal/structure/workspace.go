// Package structure drives the external atomic structure solver.
package structure

import (
	"path/filepath"
)

// Workspace is the project directory. Every path the core writes is below
// Root.
type Workspace struct {
	Root string
}

const (
	ResultsDir = "cal_result"
	FiguresDir = "figure"
	StateDir   = ".cowan"
)

// RunDir is the scratch directory of one solver run.
func (w Workspace) RunDir(run string) string {
	return filepath.Join(w.Root, ResultsDir, run)
}

func (w Workspace) Figures() string { return filepath.Join(w.Root, FiguresDir) }

func (w Workspace) CacheDir() string { return filepath.Join(w.Root, StateDir, "solver_cache") }

// Experiment is the project's active experiment file; ext is ".csv" or ".txt".
func (w Workspace) Experiment(ext string) string {
	return filepath.Join(w.Root, "exp_data"+ext)
}
