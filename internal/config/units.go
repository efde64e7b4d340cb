package config

import (
	"fmt"

	"github.com/wildstyl3r/cowan/internal/constants"
	"github.com/wildstyl3r/cowan/internal/utils"
)

// Base units are cm^-3 and eV.
var unitToBase = map[string]float64{
	"cm-3": 1,    // [cm^-3]
	"m-3":  1e-6, // [cm^-3]
	"eV":   1,    // [eV]
	"K":    1 / constants.EVToKelvin,
}

type UnitClass int

const (
	Density UnitClass = iota
	Temperature
)

var unitsInClass = map[UnitClass][]string{
	Density:     {"cm-3", "m-3"},
	Temperature: {"eV", "K"},
}

var classesOfUnits = map[string]UnitClass{
	"cm-3": Density,
	"m-3":  Density,
	"eV":   Temperature,
	"K":    Temperature,
}

var defaultUnits = []string{"cm-3", "eV"}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// checkUnits reports unknown units and units of an already listed class,
// and appends the default unit of every class left out.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if _, some := classes[class]; !known || some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// ToBase converts v from units to the base units; direct=false converts back.
func ToBase(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for _, uc := range classes {
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		factor := unitToBase[*unit]
		for range utils.IntAbs(uc.Power) {
			if (uc.Power > 0) == direct {
				v *= factor
			} else {
				v /= factor
			}
		}
	}
	return v
}

func unitList(density, temperature string) ([]string, error) {
	var units []string
	for _, u := range []string{density, temperature} {
		if u != "" {
			units = append(units, u)
		}
	}
	extended, conflicts := checkUnits(units)
	if len(conflicts) > 0 {
		return nil, fmt.Errorf("config: unit conflict: %v", conflicts)
	}
	return extended, nil
}
