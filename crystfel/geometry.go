package crystfel

import (
	"math"

	"github.com/xtalgo/rspace"
)

// hcEvAngstrom converts photon energy in eV to wavelength in Angstroms.
const hcEvAngstrom = 12398.42

// nmInvToAngstromInv rescales CrystFEL's nm^-1 reciprocal vectors.
const nmInvToAngstromInv = 0.1

// reciprocalBasis is one crystal's reciprocal lattice in the lab frame,
// in Angstrom^-1, with the beam along +z.
type reciprocalBasis struct {
	astar, bstar, cstar [3]float64
}

// scatteringVector returns the scattered wavevector s1 for a reflection and
// its Ewald-sphere offset: |s1| minus the Ewald radius 1/lambda. Negative
// offsets are inside the sphere.
func (b reciprocalBasis) scatteringVector(h rspace.HKL, lambda float64) (s1 [3]float64, offset float64) {
	k := 1 / lambda
	for i := 0; i < 3; i++ {
		s1[i] = float64(h[0])*b.astar[i] + float64(h[1])*b.bstar[i] + float64(h[2])*b.cstar[i]
	}
	s1[2] += k
	norm := math.Sqrt(s1[0]*s1[0] + s1[1]*s1[1] + s1[2]*s1[2])
	return s1, norm - k
}
