package structure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/cards"
	"github.com/wildstyl3r/cowan/internal/hash"
	"github.com/wildstyl3r/cowan/internal/lines"
	"github.com/wildstyl3r/cowan/internal/metrics"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// Input file names of the first two stages.
const (
	Card36File = "in36"
	Card2File  = "in2"
)

var ErrNoOutput = errors.New("structure: solver produced no spectral table")

// SolverError is a failed solver stage. The run directory is left in place.
type SolverError struct {
	Stage  string
	Stderr string
	Err    error
}

func (e *SolverError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("structure: stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("structure: stage %s: %v: %s", e.Stage, e.Err, e.Stderr)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Stage is one solver executable. A Command found in the run directory is
// run from there; otherwise it is looked up in PATH.
type Stage struct {
	Name    string
	Command string
	Args    []string
	Stdin   string // file in the run directory fed to standard input
}

func DefaultStages() []Stage {
	return []Stage{
		{Name: "rcn", Command: "RCN", Stdin: Card36File},
		{Name: "rcn2", Command: "RCN2", Stdin: Card2File},
		{Name: "rcg", Command: "RCG"},
	}
}

// Observer is told when a stage boundary is reached.
type Observer interface {
	OnStage(name string, percent int)
}

type ObserverFunc func(name string, percent int)

func (f ObserverFunc) OnStage(name string, percent int) { f(name, percent) }

type Runner struct {
	Workspace Workspace
	Template  string // directory copied into every run directory
	Stages    []Stage

	// Intermediate is patched with the coupling mode before the last stage;
	// Output is the spectral table written by the last stage.
	Intermediate string
	Output       string

	Observer Observer
	Metrics  *metrics.Collector
	Log      logrus.FieldLogger

	cache *requestcache.Cache
}

func NewRunner(ws Workspace, template string) *Runner {
	return &Runner{
		Workspace:    ws,
		Template:     template,
		Stages:       DefaultStages(),
		Intermediate: "out2ing",
		Output:       "spectra.dat",
		Log:          logrus.StandardLogger(),
	}
}

// Job is one solver invocation.
type Job struct {
	Card36   *cards.Card36
	Card2    *cards.Card2
	Run      string
	Coupling int // 1 or 2
}

func (j Job) key() string {
	return hash.Hash(struct {
		Card36, Card2, Run string
		Coupling           int
	}{j.Card36.String(), j.Card2.String(), j.Run, j.Coupling})
}

// EnableCache keeps the tables of finished runs in memory and in the
// workspace, keyed by the cards, run name and coupling mode.
func (r *Runner) EnableCache(memory int) error {
	dir := r.Workspace.CacheDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	r.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		return r.run(ctx, request.(Job))
	}, 1, requestcache.Deduplicate(), requestcache.Memory(memory),
		requestcache.Disk(dir, requestcache.MarshalGob, requestcache.UnmarshalGob))
	return nil
}

func (r *Runner) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Run produces the transition table of job. It blocks until the last stage
// has finished.
func (r *Runner) Run(ctx context.Context, job Job) (lines.Table, error) {
	if job.Coupling != 1 && job.Coupling != 2 {
		return nil, fmt.Errorf("structure: coupling mode %d, want 1 or 2", job.Coupling)
	}
	if job.Card36 == nil || len(job.Card36.Configurations) == 0 {
		return nil, cards.ErrEmptyConfigurationSet
	}
	if job.Card2 == nil {
		job.Card2 = cards.NewCard2()
	}
	r.Metrics.SolverRequest("request")
	if r.cache == nil {
		return r.run(ctx, job)
	}
	result, err := r.cache.NewRequest(ctx, job, job.key()).Result()
	if err != nil {
		return nil, err
	}
	return result.(lines.Table), nil
}

func (r *Runner) run(ctx context.Context, job Job) (lines.Table, error) {
	r.Metrics.SolverRequest("run")
	dir := r.Workspace.RunDir(job.Run)
	log := r.log().WithFields(logrus.Fields{"run": job.Run, "dir": dir})
	if err := r.prepare(dir, job); err != nil {
		return nil, err
	}
	r.progress(r.Stages[0].Name, 0)
	for i, stage := range r.Stages {
		if i == len(r.Stages)-1 && i > 0 {
			if err := r.patch(dir, job.Coupling); err != nil {
				return nil, &SolverError{Stage: stage.Name, Err: err}
			}
		}
		log.WithField("stage", stage.Name).Info("solver stage started")
		timer := r.Metrics.StageTimer(stage.Name)
		err := r.exec(ctx, dir, stage)
		timer.ObserveDuration()
		if err != nil {
			r.Metrics.StageFailed(stage.Name)
			return nil, err
		}
		r.progress(stage.Name, percent(i, len(r.Stages)))
	}
	table, err := lines.ReadFile(filepath.Join(dir, r.Output))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SolverError{Stage: r.Stages[len(r.Stages)-1].Name, Err: ErrNoOutput}
	}
	if err != nil {
		return nil, err
	}
	log.WithField("transitions", len(table)).Info("solver finished")
	return table, nil
}

// percent after stage i of n: 25, 50, 100 for three stages.
func percent(i, n int) int {
	if i == n-1 {
		return 100
	}
	return 25 * (i + 1) * 3 / n
}

func (r *Runner) progress(stage string, percent int) {
	if r.Observer != nil {
		r.Observer.OnStage(stage, percent)
	}
}

func (r *Runner) prepare(dir string, job Job) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if r.Template != "" {
		if err := utils.CopyDir(r.Template, dir); err != nil {
			return fmt.Errorf("structure: copying template: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, Card36File), []byte(job.Card36.String()), 0640); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, Card2File), []byte(job.Card2.String()), 0640)
}

// patch replaces the first five characters of the intermediate file with
// the coupling mode.
func (r *Runner) patch(dir string, coupling int) error {
	path := filepath.Join(dir, r.Intermediate)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 5 {
		return fmt.Errorf("%s has %d bytes, want at least 5", r.Intermediate, len(data))
	}
	copy(data, "    "+strconv.Itoa(coupling))
	return os.WriteFile(path, data, 0640)
}

func (r *Runner) exec(ctx context.Context, dir string, stage Stage) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	command := stage.Command
	if info, err := os.Stat(filepath.Join(abs, command)); err == nil && !info.IsDir() {
		command = filepath.Join(abs, command)
	}
	cmd := exec.CommandContext(ctx, command, stage.Args...)
	cmd.Dir = abs
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := os.Create(filepath.Join(abs, stage.Name+".log"))
	if err != nil {
		return err
	}
	defer stdout.Close()
	cmd.Stdout = stdout
	if stage.Stdin != "" {
		stdin, err := os.Open(filepath.Join(abs, stage.Stdin))
		if err != nil {
			return &SolverError{Stage: stage.Name, Err: err}
		}
		defer stdin.Close()
		cmd.Stdin = stdin
	}
	if err := cmd.Run(); err != nil {
		return &SolverError{Stage: stage.Name, Stderr: stderr.String(), Err: err}
	}
	return nil
}
