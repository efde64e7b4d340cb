package atom

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownElement = errors.New("atom: unknown element")

// symbols is indexed by atomic number; symbols[0] is unused.
var symbols = []string{"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
}

// MaxZ is the heaviest element the model knows.
var MaxZ = len(symbols) - 1

func Symbol(z int) (string, error) {
	if z < 1 || z > MaxZ {
		return "", fmt.Errorf("%w: Z=%d", ErrUnknownElement, z)
	}
	return symbols[z], nil
}

func Z(symbol string) (int, error) {
	i := slices.IndexFunc(symbols[1:], func(s string) bool { return strings.EqualFold(s, symbol) })
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return i + 1, nil
}

// ionizationEnergies[Z][q] is the energy [eV] to remove one electron from
// charge state q of element Z (NIST ASD).
var ionizationEnergies = [][]float64{
	nil,
	{13.598},
	{24.587, 54.418},
	{5.392, 75.640, 122.454},
	{9.323, 18.211, 153.896, 217.719},
	{8.298, 25.155, 37.931, 259.375, 340.226},
	{11.260, 24.383, 47.888, 64.494, 392.090, 489.993},
	{14.534, 29.601, 47.445, 77.474, 97.890, 552.072, 667.046},
	{13.618, 35.121, 54.936, 77.414, 113.899, 138.120, 739.293, 871.410},
	{17.423, 34.971, 62.708, 87.175, 114.249, 157.163, 185.186, 953.911, 1103.12},
	{21.565, 40.963, 63.423, 97.190, 126.247, 157.934, 207.271, 239.097, 1195.83, 1362.20},
	{5.139, 47.286, 71.620, 98.936, 138.404, 172.23, 208.50, 264.19, 299.86, 1465.13, 1648.70},
	{7.646, 15.035, 80.144, 109.265, 141.33, 186.76, 225.02, 265.92, 328.24, 367.50, 1761.80, 1962.66},
	{5.986, 18.829, 28.448, 119.992, 153.825, 190.49, 241.76, 284.66, 330.13, 398.75, 442.00, 2085.98, 2304.14},
	{8.152, 16.346, 33.493, 45.142, 166.767, 205.27, 246.5, 303.54, 351.12, 401.37, 476.36, 523.42, 2437.63, 2673.18},
	{10.487, 19.769, 30.203, 51.444, 65.025, 220.43, 263.57, 309.60, 372.13, 424.4, 479.46, 560.8, 611.74, 2816.91, 3069.84},
	{10.360, 23.338, 34.79, 47.222, 72.595, 88.053, 280.95, 328.75, 379.55, 447.5, 504.8, 564.44, 652.2, 707.01, 3223.78, 3494.19},
	{12.968, 23.814, 39.61, 53.465, 67.8, 97.03, 114.196, 348.28, 400.06, 455.63, 529.28, 591.99, 656.71, 749.76, 809.40, 3658.52, 3946.30},
	{15.760, 27.630, 40.74, 59.81, 75.02, 91.01, 124.32, 143.46, 422.45, 478.69, 538.96, 618.26, 686.11, 755.74, 854.77, 918.03, 4120.89, 4426.23},
	{4.341, 31.63, 45.806, 60.91, 82.66, 99.4, 117.56, 154.87, 175.82, 503.8, 564.7, 629.4, 714.6, 786.6, 861.1, 968, 1033.4, 4610.8, 4934.05},
	{6.113, 11.872, 50.913, 67.27, 84.50, 108.78, 127.2, 147.24, 188.54, 211.28, 591.9, 657.2, 726.6, 817.6, 894.5, 974, 1087, 1157.8, 5128.8, 5469.86},
	{6.561, 12.80, 24.757, 73.489, 91.65, 110.68, 138.0, 158.1, 180.03, 225.18, 249.80, 687.36, 757.7, 833.2, 927.5, 1009, 1094, 1213, 1287.97, 5674.9, 6033.71},
	{6.828, 13.576, 27.492, 43.267, 99.30, 119.53, 140.68, 170.4, 192.1, 215.92, 265.07, 291.50, 787.84, 863.1, 941.9, 1044, 1131, 1221, 1346, 1425.4, 6249.0, 6625.82},
	{6.746, 14.634, 29.311, 46.709, 65.282, 128.13, 150.72, 173.55, 205.8, 230.5, 255.7, 308.1, 336.28, 896.0, 976, 1060, 1168, 1260, 1355, 1486, 1569.6, 6851.3, 7246.12},
	{6.767, 16.486, 30.96, 49.16, 69.46, 90.635, 160.18, 184.7, 209.3, 244.4, 270.8, 298.0, 354.8, 384.17, 1010.6, 1097, 1185, 1299, 1396, 1496, 1634, 1721.4, 7481.7, 7894.81},
	{7.434, 15.640, 33.668, 51.2, 72.4, 95.6, 119.203, 194.5, 221.8, 248.3, 286.0, 314.4, 343.6, 403.0, 435.163, 1134.7, 1224, 1317, 1437, 1539, 1644, 1788, 1879.9, 8140.6, 8571.94},
	{7.902, 16.199, 30.651, 54.91, 75.0, 99.0, 124.98, 151.06, 233.6, 262.1, 290.9, 330.8, 361.0, 392.2, 456.2, 489.312, 1266, 1358, 1456, 1582, 1689, 1799, 1950, 2023, 8828, 9277.69},
	{7.881, 17.084, 33.50, 51.3, 79.5, 102.0, 128.9, 157.8, 186.14, 275.4, 305, 336, 379, 411, 444, 511.96, 546.58, 1397.2, 1504.6, 1603, 1735, 1846, 1962, 2119, 2219.0, 9544.1, 10012.12},
	{7.640, 18.169, 35.19, 54.9, 76.06, 108, 133, 162, 193, 224.6, 321.0, 352, 384, 430, 464, 499, 571.08, 607.06, 1541, 1648, 1756, 1894, 2011, 2131, 2295, 2399.2, 10288.8, 10775.4},
	{7.726, 20.292, 36.841, 57.38, 79.8, 103, 139, 166, 199, 232, 265.3, 369, 401, 435, 484, 520, 557, 633, 670.588, 1697, 1804, 1916, 2060, 2182, 2308, 2478, 2587.5, 11062.38, 11567.617},
	{9.394, 17.964, 39.723, 59.4, 82.6, 108, 134, 174, 203, 238, 274, 310.8, 419.7, 454, 490, 542, 579, 619, 698.79, 738, 1856, 1970, 2084, 2234, 2363, 2495, 2673, 2782, 11864.94, 12388.9},
}

// IonizationEnergies returns a copy of the ionization energies [eV] of every
// charge state of element z, or nil when the table has no data for it.
func IonizationEnergies(z int) []float64 {
	if z < 1 || z >= len(ionizationEnergies) {
		return nil
	}
	return slices.Clone(ionizationEnergies[z])
}

// OuterShellOccupancies returns, for each charge state q of element z, the
// occupancy of the outermost populated subshell of the ground configuration.
func OuterShellOccupancies(z int) ([]int, error) {
	if _, err := Symbol(z); err != nil {
		return nil, err
	}
	eta := make([]int, z)
	for q := range z {
		occupancy := groundOccupancy(z, q)
		for _, s := range sequence {
			if occupancy[s] > 0 {
				eta[q] = occupancy[s]
			}
		}
	}
	return eta, nil
}
