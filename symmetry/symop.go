package symmetry

import (
	"fmt"
	"strings"
)

// HKL is a Miller-index triple identifying a reflection in reciprocal space.
type HKL [3]int

// IsZero reports whether all three indices are zero.
func (h HKL) IsZero() bool { return h[0] == 0 && h[1] == 0 && h[2] == 0 }

// Neg returns the Friedel mate (-h,-k,-l).
func (h HKL) Neg() HKL { return HKL{-h[0], -h[1], -h[2]} }

func (h HKL) String() string { return fmt.Sprintf("(%d %d %d)", h[0], h[1], h[2]) }

// Less orders Miller indices lexicographically by (h, k, l).
func (h HKL) Less(o HKL) bool {
	if h[0] != o[0] {
		return h[0] < o[0]
	}
	if h[1] != o[1] {
		return h[1] < o[1]
	}
	return h[2] < o[2]
}

// SymOp is a crystallographic symmetry operation: an integer rotation matrix
// and a translation stored in twelfths of a lattice vector. Twelfths cover
// every translation that occurs in the 230 spacegroups.
type SymOp struct {
	Rot   [3][3]int
	Trans [3]int // numerators over 12, normalized to [0,12)
}

// Identity returns the identity operation X,Y,Z.
func Identity() SymOp {
	return SymOp{Rot: [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// ErrBadTriplet indicates a symmetry-operation string that could not be parsed.
type ErrBadTriplet struct {
	Triplet string
	Reason  string
}

func (e *ErrBadTriplet) Error() string {
	return fmt.Sprintf("bad symmetry triplet %q: %s", e.Triplet, e.Reason)
}

// ParseSymOp parses a triplet string such as "X,Y,Z" or "-Y,X-Y,Z+1/3".
// Parsing is case-insensitive and ignores spaces.
func ParseSymOp(triplet string) (SymOp, error) {
	var op SymOp
	parts := strings.Split(triplet, ",")
	if len(parts) != 3 {
		return op, &ErrBadTriplet{Triplet: triplet, Reason: "want 3 comma-separated components"}
	}
	for row, part := range parts {
		rot, trans, err := parseComponent(part)
		if err != nil {
			return op, &ErrBadTriplet{Triplet: triplet, Reason: err.Error()}
		}
		op.Rot[row] = rot
		op.Trans[row] = ((trans % 12) + 12) % 12
	}
	return op, nil
}

// parseComponent parses one component like "-X+1/2" into rotation
// coefficients and a translation in twelfths.
func parseComponent(s string) ([3]int, int, error) {
	var rot [3]int
	trans := 0
	sign := 1
	seen := false

	i := 0
	clean := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	for i < len(clean) {
		c := clean[i]
		switch {
		case c == '+':
			sign = 1
			i++
		case c == '-':
			sign = -1
			i++
		case c == 'X':
			rot[0] += sign
			sign = 1
			seen = true
			i++
		case c == 'Y':
			rot[1] += sign
			sign = 1
			seen = true
			i++
		case c == 'Z':
			rot[2] += sign
			sign = 1
			seen = true
			i++
		case c >= '0' && c <= '9':
			num := 0
			for i < len(clean) && clean[i] >= '0' && clean[i] <= '9' {
				num = num*10 + int(clean[i]-'0')
				i++
			}
			den := 1
			if i < len(clean) && clean[i] == '/' {
				i++
				den = 0
				for i < len(clean) && clean[i] >= '0' && clean[i] <= '9' {
					den = den*10 + int(clean[i]-'0')
					i++
				}
			}
			if den == 0 || (num*12)%den != 0 {
				return rot, 0, fmt.Errorf("translation %d/%d is not a multiple of 1/12", num, den)
			}
			trans += sign * num * 12 / den
			sign = 1
			seen = true
		default:
			return rot, 0, fmt.Errorf("unexpected character %q", c)
		}
	}
	if !seen {
		return rot, 0, fmt.Errorf("empty component")
	}
	return rot, trans, nil
}

// Triplet renders the operation in the canonical form used for MTZ SYMM
// records: uppercase, no spaces, axes in X,Y,Z order, translation last as a
// reduced fraction. ParseSymOp(op.Triplet()) always reproduces op.
func (op SymOp) Triplet() string {
	var b strings.Builder
	axes := [3]byte{'X', 'Y', 'Z'}
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteByte(',')
		}
		first := true
		for col := 0; col < 3; col++ {
			c := op.Rot[row][col]
			if c == 0 {
				continue
			}
			if c < 0 {
				b.WriteByte('-')
			} else if !first {
				b.WriteByte('+')
			}
			if c != 1 && c != -1 {
				fmt.Fprintf(&b, "%d", abs(c))
			}
			b.WriteByte(axes[col])
			first = false
		}
		if t := op.Trans[row]; t != 0 {
			num, den := reduce(t, 12)
			if !first {
				b.WriteByte('+')
			}
			fmt.Fprintf(&b, "%d/%d", num, den)
		} else if first {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ApplyHKL transforms a Miller index by the operation. Reciprocal-space
// indices transform by the transpose of the rotation; translations do not
// apply.
func (op SymOp) ApplyHKL(h HKL) HKL {
	var out HKL
	for j := 0; j < 3; j++ {
		out[j] = h[0]*op.Rot[0][j] + h[1]*op.Rot[1][j] + h[2]*op.Rot[2][j]
	}
	return out
}

// Inverse returns the inverse operation. Crystallographic rotations have
// determinant +-1, so the inverse matrix is integral.
func (op SymOp) Inverse() SymOp {
	r := op.Rot
	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])

	var inv SymOp
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			// Adjugate entry; det is +-1 so the division is exact.
			a := r[(j+1)%3][(i+1)%3]*r[(j+2)%3][(i+2)%3] -
				r[(j+1)%3][(i+2)%3]*r[(j+2)%3][(i+1)%3]
			inv.Rot[i][j] = a / det
		}
	}
	// t' = -R^-1 t, in twelfths.
	for i := 0; i < 3; i++ {
		t := 0
		for j := 0; j < 3; j++ {
			t -= inv.Rot[i][j] * op.Trans[j]
		}
		inv.Trans[i] = ((t % 12) + 12) % 12
	}
	return inv
}

// RotEqual reports whether two operations share the same rotation part.
func (op SymOp) RotEqual(o SymOp) bool { return op.Rot == o.Rot }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func reduce(num, den int) (int, int) {
	g := gcd(num, den)
	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
