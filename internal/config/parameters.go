package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/cowan/internal/atom"
	"github.com/wildstyl3r/cowan/internal/grid"
	"github.com/wildstyl3r/cowan/internal/structure"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Workspace  string
	Experiment string
	Window     []float64 // [nm]
	Points     int // 0 samples on the experimental wavelengths
	Anchors    []float64 // [nm]
	Threaded   bool
	Grouped    bool

	Temperature     float64 // [eV] after Load
	Density         float64 // [cm^-3] after Load
	DensityUnit     string
	TemperatureUnit string

	LogLevel string
	Workers  int

	Scan     ScanParameters
	Solver   SolverParameters
	Elements map[string]ElementParameters
	Ions     []IonParameters

	units []string
	meta  toml.MetaData
}

type ScanParameters struct {
	TMin, TMax float64 // [eV] after Load
	TPoints    int

	NeBaseMin  float64
	NeIndexMin int
	NeBaseMax  float64
	NeIndexMax int
	NePoints   int
}

type StageParameters struct {
	Name    string
	Command string
	Args    []string
	Stdin   string
}

type SolverParameters struct {
	Template     string
	Stages       []StageParameters
	Coupling     int
	Intermediate string
	Output       string
	Cache        int // solver tables kept in memory; 0 disables the cache
}

type ElementParameters struct {
	Ratio         float64
	CrossSections string  // LXCat file
	Ionization    float64 // [eV] neutral ionization energy override
}

type IonParameters struct {
	Element string
	Charge  int
	Run     string
	Lines   string // transition table; defaults to the solver output of Run
	Offset  float64 // [nm]
	FWHM    float64 // [eV]

	Excitations [][]string // pairs of subshells, one configuration each
	Slater      []int      // Fk, Gk scaling [%]
}

var defaultValues = map[string]any{
	"Points":          2000,
	"Threaded":        false,
	"Grouped":         false,
	"DensityUnit":     "cm-3",
	"TemperatureUnit": "eV",
	"LogLevel":        "info",
	"Workers":         0,
}

var defaultScan = ScanParameters{
	TMin: 10, TMax: 50, TPoints: 9,
	NeBaseMin: 1, NeIndexMin: 19, NeBaseMax: 1, NeIndexMax: 21, NePoints: 9,
}

var defaultSolver = SolverParameters{
	Coupling:     2,
	Intermediate: "out2ing",
	Output:       "spectra.dat",
	Cache:        64,
}

var valueUnits = map[string][]UnitElement{
	"Temperature": {{Class: Temperature, Power: 1}},
	"Density":     {{Class: Density, Power: 1}},
	"TMin":        {{Class: Temperature, Power: 1}},
	"TMax":        {{Class: Temperature, Power: 1}},
	"NeBaseMin":   {{Class: Density, Power: 1}},
	"NeBaseMax":   {{Class: Density, Power: 1}},
}

// toBase converts the named float fields of v, a pointer to the struct at
// table, when they were set in the file. Defaults are already in base units.
func (c *Config) toBase(v any, table []string, names ...string) {
	value := reflect.ValueOf(v).Elem()
	for _, name := range names {
		if !c.meta.IsDefined(append(slices.Clip(table), name)...) {
			continue
		}
		field := value.FieldByName(name)
		if field.IsValid() && field.CanFloat() {
			field.SetFloat(ToBase(field.Float(), valueUnits[name], c.units, true))
		}
	}
}

// Load reads a project file. Relative paths are resolved against the
// workspace, which defaults to the directory of the file.
func Load(path string) (*Config, error) {
	var c Config
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.meta = meta
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("keys", undecoded).Warn("unknown configuration keys")
	}

	configReflect := reflect.ValueOf(&c).Elem()
	for name, value := range defaultValues {
		if !meta.IsDefined(name) {
			configReflect.FieldByName(name).Set(reflect.ValueOf(value))
		}
	}
	c.fillScan()
	c.fillSolver()

	switch {
	case c.Workspace == "":
		c.Workspace = filepath.Dir(path)
	case !filepath.IsAbs(c.Workspace):
		c.Workspace = filepath.Join(filepath.Dir(path), c.Workspace)
	}
	c.Experiment = c.resolve(c.Experiment)
	c.Solver.Template = c.resolve(c.Solver.Template)
	for name, e := range c.Elements {
		e.CrossSections = c.resolve(e.CrossSections)
		c.Elements[name] = e
	}
	for i := range c.Ions {
		c.Ions[i].Lines = c.resolve(c.Ions[i].Lines)
	}

	if class, ok := classesOfUnits[c.DensityUnit]; ok && class != Density {
		return nil, fmt.Errorf("%w: %q is not a density unit", ErrInvalidConfig, c.DensityUnit)
	}
	if class, ok := classesOfUnits[c.TemperatureUnit]; ok && class != Temperature {
		return nil, fmt.Errorf("%w: %q is not a temperature unit", ErrInvalidConfig, c.TemperatureUnit)
	}
	c.units, err = unitList(c.DensityUnit, c.TemperatureUnit)
	if err != nil {
		return nil, err
	}
	c.toBase(&c, nil, "Temperature", "Density")
	c.toBase(&c.Scan, []string{"Scan"}, "TMin", "TMax", "NeBaseMin", "NeBaseMax")

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) fillScan() {
	scan := reflect.ValueOf(&c.Scan).Elem()
	defaults := reflect.ValueOf(defaultScan)
	for i := range scan.NumField() {
		if !c.meta.IsDefined("Scan", scan.Type().Field(i).Name) {
			scan.Field(i).Set(defaults.Field(i))
		}
	}
}

func (c *Config) fillSolver() {
	if !c.meta.IsDefined("Solver", "Coupling") {
		c.Solver.Coupling = defaultSolver.Coupling
	}
	if !c.meta.IsDefined("Solver", "Intermediate") {
		c.Solver.Intermediate = defaultSolver.Intermediate
	}
	if !c.meta.IsDefined("Solver", "Output") {
		c.Solver.Output = defaultSolver.Output
	}
	if !c.meta.IsDefined("Solver", "Cache") {
		c.Solver.Cache = defaultSolver.Cache
	}
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Workspace, path)
}

func (c *Config) validate() error {
	if len(c.Window) != 0 && (len(c.Window) != 2 || c.Window[0] >= c.Window[1]) {
		return fmt.Errorf("%w: Window must be [min, max], have %v", ErrInvalidConfig, c.Window)
	}
	if c.Points < 0 {
		return fmt.Errorf("%w: Points %d", ErrInvalidConfig, c.Points)
	}
	if c.Solver.Coupling != 1 && c.Solver.Coupling != 2 {
		return fmt.Errorf("%w: coupling mode %d, want 1 or 2", ErrInvalidConfig, c.Solver.Coupling)
	}
	var names []string
	for i, ion := range c.Ions {
		a, err := atom.NewFromSymbol(ion.Element, ion.Charge)
		if err != nil {
			return fmt.Errorf("%w: ion %d: %v", ErrInvalidConfig, i+1, err)
		}
		if !(ion.FWHM > 0) {
			return fmt.Errorf("%w: ion %s: FWHM must be positive", ErrInvalidConfig, a.Name())
		}
		if math.IsNaN(ion.Offset) || math.IsInf(ion.Offset, 0) {
			return fmt.Errorf("%w: ion %s: offset %v", ErrInvalidConfig, a.Name(), ion.Offset)
		}
		for _, pair := range ion.Excitations {
			if len(pair) != 2 {
				return fmt.Errorf("%w: ion %s: excitation %v is not a pair of subshells", ErrInvalidConfig, a.Name(), pair)
			}
		}
		if len(ion.Slater) != 0 && len(ion.Slater) != 2 {
			return fmt.Errorf("%w: ion %s: Slater must be [Fk, Gk]", ErrInvalidConfig, a.Name())
		}
		if slices.Contains(names, a.Name()) {
			return fmt.Errorf("%w: ion %s listed twice", ErrInvalidConfig, a.Name())
		}
		names = append(names, a.Name())
	}
	return nil
}

// Defined reports whether key was set in the file.
func (c *Config) Defined(key ...string) bool { return c.meta.IsDefined(key...) }

// Units are the input units completed with the base unit of every class.
func (c *Config) Units() []string { return c.units }

// RunName is the solver run name of an ion, "<symbol><charge>+" unless set.
func (p IonParameters) RunName() (string, error) {
	if p.Run != "" {
		return p.Run, nil
	}
	a, err := atom.NewFromSymbol(p.Element, p.Charge)
	if err != nil {
		return "", err
	}
	return a.Name(), nil
}

func (c *Config) AxesSpec() grid.AxesSpec {
	s := c.Scan
	return grid.AxesSpec{
		TMin: s.TMin, TMax: s.TMax, TPoints: s.TPoints,
		NeBaseMin: s.NeBaseMin, NeIndexMin: s.NeIndexMin,
		NeBaseMax: s.NeBaseMax, NeIndexMax: s.NeIndexMax,
		NePoints: s.NePoints,
	}
}

// Ratios is the element ratio; elements without a Ratio are left out.
func (c *Config) Ratios() map[string]float64 {
	ratios := map[string]float64{}
	for name, e := range c.Elements {
		if e.Ratio > 0 {
			ratios[name] = e.Ratio
		}
	}
	return ratios
}

// ChiOverrides collects neutral ionization energies given directly or read
// from an LXCat file.
func (c *Config) ChiOverrides() (map[string]float64, error) {
	chi := map[string]float64{}
	for name, e := range c.Elements {
		switch {
		case e.Ionization > 0:
			chi[name] = e.Ionization
		case e.CrossSections != "":
			v, err := atom.NeutralIonizationEnergy(e.CrossSections)
			if err != nil {
				return nil, fmt.Errorf("element %s: %w", name, err)
			}
			chi[name] = v
		}
	}
	return chi, nil
}

func (c *Config) Runner(ws structure.Workspace) *structure.Runner {
	r := structure.NewRunner(ws, c.Solver.Template)
	if len(c.Solver.Stages) > 0 {
		r.Stages = make([]structure.Stage, len(c.Solver.Stages))
		for i, s := range c.Solver.Stages {
			r.Stages[i] = structure.Stage{Name: s.Name, Command: s.Command, Args: s.Args, Stdin: s.Stdin}
		}
	}
	r.Intermediate = c.Solver.Intermediate
	r.Output = c.Solver.Output
	return r
}

// Lines is the transition table path of an ion.
func (c *Config) Lines(ws structure.Workspace, p IonParameters) (string, error) {
	if p.Lines != "" {
		return p.Lines, nil
	}
	run, err := p.RunName()
	if err != nil {
		return "", err
	}
	return filepath.Join(ws.RunDir(run), c.Solver.Output), nil
}
