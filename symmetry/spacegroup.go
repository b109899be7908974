package symmetry

import (
	"errors"
	"fmt"
)

// ErrUnknownSpaceGroup is returned by ByNumber for numbers outside the
// built-in table.
var ErrUnknownSpaceGroup = errors.New("unknown spacegroup number")

// SpaceGroup describes a crystallographic spacegroup by its symmetry
// operations plus the metadata carried in reflection-file headers.
type SpaceGroup struct {
	Number     int
	Name       string // Hermann-Mauguin symbol, e.g. "P 43 21 2"
	PointGroup string // CCP4-style point group name, e.g. "PG422"
	Ops        []SymOp
}

// Lattice returns the lattice-centering letter (first letter of the symbol).
func (sg *SpaceGroup) Lattice() byte {
	if sg.Name == "" {
		return 'P'
	}
	return sg.Name[0]
}

// NumPrimitiveOps returns the number of operations with distinct rotation
// parts. Centered lattices repeat each rotation once per centering vector.
func (sg *SpaceGroup) NumPrimitiveOps() int {
	n := 0
	for i, op := range sg.Ops {
		dup := false
		for _, prev := range sg.Ops[:i] {
			if op.RotEqual(prev) {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

// FromOps builds a spacegroup directly from parsed operations. This is the
// path used when reading file headers, where the operation list is
// authoritative and the number/name are whatever the header claims.
func FromOps(number int, name, pointGroup string, ops []SymOp) (*SpaceGroup, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("spacegroup %d (%s): no symmetry operations", number, name)
	}
	return &SpaceGroup{Number: number, Name: name, PointGroup: pointGroup, Ops: ops}, nil
}

// builtin lists the spacegroups constructible without a file header. The
// table covers the groups common in macromolecular work; readers never need
// it because headers carry explicit SYMM records.
var builtin = map[int]struct {
	name       string
	pointGroup string
	triplets   []string
}{
	1: {"P 1", "PG1", []string{"X,Y,Z"}},
	2: {"P -1", "PG1bar", []string{"X,Y,Z", "-X,-Y,-Z"}},
	4: {"P 1 21 1", "PG2", []string{"X,Y,Z", "-X,Y+1/2,-Z"}},
	5: {"C 1 2 1", "PG2", []string{
		"X,Y,Z", "-X,Y,-Z", "X+1/2,Y+1/2,Z", "-X+1/2,Y+1/2,-Z"}},
	19: {"P 21 21 21", "PG222", []string{
		"X,Y,Z", "X+1/2,-Y+1/2,-Z", "-X,Y+1/2,-Z+1/2", "-X+1/2,-Y,Z+1/2"}},
	96: {"P 43 21 2", "PG422", []string{
		"X,Y,Z", "-X,-Y,Z+1/2",
		"-Y+1/2,X+1/2,Z+3/4", "Y+1/2,-X+1/2,Z+1/4",
		"-X+1/2,Y+1/2,-Z+3/4", "X+1/2,-Y+1/2,-Z+1/4",
		"Y,X,-Z", "-Y,-X,-Z+1/2"}},
}

// ByNumber returns a built-in spacegroup by its International Tables number.
func ByNumber(number int) (*SpaceGroup, error) {
	entry, ok := builtin[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpaceGroup, number)
	}
	ops := make([]SymOp, len(entry.triplets))
	for i, t := range entry.triplets {
		op, err := ParseSymOp(t)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return &SpaceGroup{
		Number:     number,
		Name:       entry.name,
		PointGroup: entry.pointGroup,
		Ops:        ops,
	}, nil
}

// P1 returns the trivial spacegroup.
func P1() *SpaceGroup {
	sg, _ := ByNumber(1)
	return sg
}
