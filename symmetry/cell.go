package symmetry

import (
	"fmt"
	"math"
)

// UnitCell holds the six lattice parameters. Lengths are in Angstroms,
// angles in degrees.
type UnitCell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// NewUnitCell returns a cell with the given parameters.
func NewUnitCell(a, b, c, alpha, beta, gamma float64) *UnitCell {
	return &UnitCell{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}
}

// IsValid reports whether all parameters are positive and the angles form a
// realizable cell.
func (c *UnitCell) IsValid() bool {
	if c.A <= 0 || c.B <= 0 || c.C <= 0 {
		return false
	}
	if c.Alpha <= 0 || c.Beta <= 0 || c.Gamma <= 0 {
		return false
	}
	return c.Alpha < 180 && c.Beta < 180 && c.Gamma < 180
}

// Volume returns the cell volume in cubic Angstroms.
func (c *UnitCell) Volume() float64 {
	ca := math.Cos(c.Alpha * math.Pi / 180)
	cb := math.Cos(c.Beta * math.Pi / 180)
	cg := math.Cos(c.Gamma * math.Pi / 180)
	return c.A * c.B * c.C * math.Sqrt(1-ca*ca-cb*cb-cg*cg+2*ca*cb*cg)
}

// InvDSq returns 1/d^2 for a Miller index, valid for any crystal system.
func (c *UnitCell) InvDSq(h HKL) float64 {
	ca := math.Cos(c.Alpha * math.Pi / 180)
	cb := math.Cos(c.Beta * math.Pi / 180)
	cg := math.Cos(c.Gamma * math.Pi / 180)
	sa := math.Sin(c.Alpha * math.Pi / 180)
	sb := math.Sin(c.Beta * math.Pi / 180)
	sg := math.Sin(c.Gamma * math.Pi / 180)

	v := 1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg
	hh, kk, ll := float64(h[0]), float64(h[1]), float64(h[2])

	s := hh * hh * sa * sa / (c.A * c.A)
	s += kk * kk * sb * sb / (c.B * c.B)
	s += ll * ll * sg * sg / (c.C * c.C)
	s += 2 * kk * ll * (cb*cg - ca) / (c.B * c.C)
	s += 2 * ll * hh * (cg*ca - cb) / (c.C * c.A)
	s += 2 * hh * kk * (ca*cb - cg) / (c.A * c.B)
	return s / v
}

// DSpacing returns the resolution d in Angstroms for a Miller index.
// The (0,0,0) index returns +Inf.
func (c *UnitCell) DSpacing(h HKL) float64 {
	s := c.InvDSq(h)
	if s <= 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(s)
}

func (c *UnitCell) String() string {
	return fmt.Sprintf("(%g %g %g %g %g %g)", c.A, c.B, c.C, c.Alpha, c.Beta, c.Gamma)
}
