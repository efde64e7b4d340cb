package constants

const KBolzmann float64 = 1.380649e-23
const ElectronCharge = 1.602176634e-19 // C

const HC float64 = 1239.85 // [nm eV]

// KiloKayserToEV converts solver level energies [1000 cm^-1] to eV.
const KiloKayserToEV float64 = 0.124

const FWHMFactor float64 = 2.355 // FWHM / sigma of a Gaussian

const EVToKelvin = ElectronCharge / KBolzmann // [K / eV]

// WavelengthToEnergy converts [nm] to [eV] and back; the map is its own inverse.
func WavelengthToEnergy(v float64) float64 {
	return HC / v
}
