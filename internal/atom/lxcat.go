package atom

import (
	"fmt"
	"math"

	"github.com/wildstyl3r/lxgata"
)

// NeutralIonizationEnergy reads an LXCat cross-section file and returns the
// lowest IONIZATION threshold [eV], which is the first ionization energy of
// the target atom.
func NeutralIonizationEnergy(crossSections string) (float64, error) {
	collisions, err := lxgata.LoadCrossSections(crossSections)
	if err != nil {
		return 0, fmt.Errorf("atom: invalid cross section file: %w", err)
	}
	threshold := collisions.MinThresholdOfKind(lxgata.IONIZATION)
	if threshold <= 0 || math.IsInf(threshold, 0) || math.IsNaN(threshold) {
		return 0, fmt.Errorf("atom: no ionization process in %s", crossSections)
	}
	return threshold, nil
}
