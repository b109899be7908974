package symmetry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitCellOrthorhombic(t *testing.T) {
	cell := NewUnitCell(10, 20, 40, 90, 90, 90)

	assert.InDelta(t, 8000, cell.Volume(), 1e-9)
	assert.InDelta(t, 10, cell.DSpacing(HKL{1, 0, 0}), 1e-9)
	assert.InDelta(t, 20, cell.DSpacing(HKL{0, 1, 0}), 1e-9)
	assert.InDelta(t, 40, cell.DSpacing(HKL{0, 0, 1}), 1e-9)

	// 1/d^2 is additive over the axes for a 90/90/90 cell.
	want := 1.0/100 + 4.0/400 + 9.0/1600
	assert.InDelta(t, want, cell.InvDSq(HKL{1, 2, 3}), 1e-12)
}

func TestUnitCellTriclinic(t *testing.T) {
	cell := NewUnitCell(8.2, 9.7, 11.1, 83.5, 72.3, 95.0)

	assert.True(t, cell.IsValid())
	assert.Greater(t, cell.Volume(), 0.0)

	d := cell.DSpacing(HKL{2, -1, 3})
	assert.Greater(t, d, 0.0)
	assert.False(t, math.IsInf(d, 1))

	// d-spacings shrink as indices grow.
	assert.Less(t, cell.DSpacing(HKL{4, -2, 6}), d)
}

func TestUnitCellZeroIndex(t *testing.T) {
	cell := NewUnitCell(10, 10, 10, 90, 90, 90)
	assert.True(t, math.IsInf(cell.DSpacing(HKL{0, 0, 0}), 1))
}

func TestUnitCellIsValid(t *testing.T) {
	assert.False(t, NewUnitCell(0, 10, 10, 90, 90, 90).IsValid())
	assert.False(t, NewUnitCell(10, 10, 10, 90, 90, 180).IsValid())
	assert.True(t, NewUnitCell(79.34, 79.34, 38.54, 90, 90, 90).IsValid())
}
