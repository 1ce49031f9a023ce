package core

import "math"

// MZ converts a neutral composition mass to m/z for a signed charge.
// A charge of zero returns the neutral mass.
func MZ(mass float64, charge int) float64 {
	if charge == 0 {
		return mass
	}
	return (mass - float64(charge)*ElectronRestMass) / math.Abs(float64(charge))
}
