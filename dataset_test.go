package rspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtalgo/rspace/symmetry"
)

func newTestDataSet(t *testing.T) *DataSet {
	t.Helper()
	ds := NewDataSet([]HKL{{1, 0, 0}, {2, 1, 0}, {3, 2, 1}})
	require.NoError(t, ds.AddFloats("I", TypeIntensity, []float32{10, 20, 30}))
	require.NoError(t, ds.AddFloats("SigI", TypeStddev, []float32{1, 2, 3}))
	require.NoError(t, ds.AddInts("BATCH", TypeBatch, []int32{1, 1, 2}))
	return ds
}

func TestDataSetColumns(t *testing.T) {
	ds := newTestDataSet(t)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"I", "SigI", "BATCH"}, ds.Labels())

	col, ok := ds.Column("I")
	require.True(t, ok)
	assert.Equal(t, TypeIntensity, col.Type)
	assert.Equal(t, []float32{10, 20, 30}, col.Float)

	_, ok = ds.Column("missing")
	assert.False(t, ok)
}

func TestDataSetAddColumnValidation(t *testing.T) {
	ds := newTestDataSet(t)

	var dup *ErrDuplicateColumn
	err := ds.AddFloats("I", TypeIntensity, []float32{1, 2, 3})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "I", dup.Label)

	var lm *ErrLengthMismatch
	err = ds.AddFloats("short", TypeReal, []float32{1})
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 3, lm.Want)
	assert.Equal(t, 1, lm.Got)

	var km *ErrKindMismatch
	err = ds.AddColumn(&Column{Label: "wrong", Type: TypeIntensity, Int: []int32{1, 2, 3}})
	require.ErrorAs(t, err, &km)
}

func TestDataSetDropAndReorder(t *testing.T) {
	ds := newTestDataSet(t)

	require.NoError(t, ds.DropColumn("SigI"))
	assert.Equal(t, []string{"I", "BATCH"}, ds.Labels())

	var nf *ErrColumnNotFound
	assert.ErrorAs(t, ds.DropColumn("SigI"), &nf)

	require.NoError(t, ds.Reorder([]string{"BATCH", "I"}))
	assert.Equal(t, []string{"BATCH", "I"}, ds.Labels())

	assert.Error(t, ds.Reorder([]string{"I"}))
	assert.Error(t, ds.Reorder([]string{"I", "nope"}))
}

func TestDataSetCopyIsDeep(t *testing.T) {
	ds := newTestDataSet(t)
	sg, err := symmetry.ByNumber(19)
	require.NoError(t, err)
	ds.SpaceGroup = sg
	ds.Cell = symmetry.NewUnitCell(10, 20, 30, 90, 90, 90)

	cp := ds.Copy()
	cp.HKLs[0] = HKL{9, 9, 9}
	col, _ := cp.Column("I")
	col.Float[0] = -1
	cp.Cell.A = 99
	cp.SpaceGroup.Number = 1
	cp.SpaceGroup.Ops[0] = cp.SpaceGroup.Ops[1]

	assert.Equal(t, HKL{1, 0, 0}, ds.HKLs[0])
	orig, _ := ds.Column("I")
	assert.Equal(t, float32(10), orig.Float[0])
	assert.Equal(t, 10.0, ds.Cell.A)
	assert.Equal(t, 19, ds.SpaceGroup.Number)
	assert.Equal(t, symmetry.Identity(), ds.SpaceGroup.Ops[0])
}

func TestHKLToASURoundTrip(t *testing.T) {
	sg, err := symmetry.ByNumber(19)
	require.NoError(t, err)

	hkls := []HKL{{1, -2, 3}, {-1, 2, -3}, {4, 0, -1}, {1, -2, 3}}
	ds := NewDataSet(append([]HKL(nil), hkls...))
	ds.Merged = false
	ds.SpaceGroup = sg
	require.NoError(t, ds.AddFloats("I", TypeIntensity, []float32{1, 2, 3, 4}))

	require.NoError(t, ds.HKLToASU())
	require.True(t, ds.HasColumn(ISymLabel))
	for _, h := range ds.HKLs {
		assert.True(t, sg.InASU(h))
	}

	require.NoError(t, ds.HKLToObserved())
	assert.False(t, ds.HasColumn(ISymLabel))
	assert.Equal(t, hkls, ds.HKLs)
}

func TestHKLToASURequiresSpaceGroup(t *testing.T) {
	ds := newTestDataSet(t)
	assert.ErrorIs(t, ds.HKLToASU(), ErrNoSpaceGroup)
}

func TestHKLToObservedRequiresISym(t *testing.T) {
	ds := newTestDataSet(t)
	ds.SpaceGroup = symmetry.P1()
	assert.ErrorIs(t, ds.HKLToObserved(), ErrNoISym)
}

func TestLabelCentrics(t *testing.T) {
	sg, err := symmetry.ByNumber(19)
	require.NoError(t, err)

	ds := NewDataSet([]HKL{{0, 1, 2}, {1, 2, 3}})
	ds.SpaceGroup = sg
	require.NoError(t, ds.LabelCentrics())

	col, ok := ds.Column(CentricLabel)
	require.True(t, ok)
	assert.Equal(t, TypeMTZInt, col.Type)
	assert.Equal(t, []int32{1, 0}, col.Int)
}

func TestComputeDHKL(t *testing.T) {
	ds := NewDataSet([]HKL{{1, 0, 0}, {0, 2, 0}})
	ds.Cell = symmetry.NewUnitCell(10, 20, 30, 90, 90, 90)
	require.NoError(t, ds.ComputeDHKL())

	col, ok := ds.Column(DHKLLabel)
	require.True(t, ok)
	assert.Equal(t, TypeReal, col.Type)
	assert.InDelta(t, 10, col.Float[0], 1e-5)
	assert.InDelta(t, 10, col.Float[1], 1e-5)

	ds.Cell = nil
	assert.ErrorIs(t, ds.ComputeDHKL(), ErrNoCell)
}

func TestUniqueHKLCount(t *testing.T) {
	ds := NewDataSet([]HKL{{1, 0, 0}, {1, 0, 0}, {2, 0, 0}})
	assert.Equal(t, 2, ds.UniqueHKLCount())
}
