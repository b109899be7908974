package mtz_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/mtz"
	"github.com/xtalgo/rspace/testutil"
)

func TestRoundTripMerged(t *testing.T) {
	ds := testutil.MergedDataSet(60, 42)
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.mtz")
	p2 := filepath.Join(dir, "b.mtz")

	require.NoError(t, mtz.Write(ds, p1))

	got, err := mtz.Read(p1)
	require.NoError(t, err)
	assert.True(t, got.Merged)
	assert.Equal(t, []string{"FMODEL", "PHIFMODEL"}, got.Labels())
	assert.Equal(t, 96, got.SpaceGroup.Number)
	testutil.RequireEqualDataSets(t, ds, got)

	// A second write of the re-read table must be byte-identical.
	require.NoError(t, mtz.Write(got, p2))
	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestReadUnmerged(t *testing.T) {
	ds := testutil.UnmergedDataSet(120, 7)
	path := filepath.Join(t.TempDir(), "unmerged.mtz")
	require.NoError(t, mtz.Write(ds, path))

	got, err := mtz.Read(path)
	require.NoError(t, err)

	assert.False(t, got.Merged)
	assert.True(t, got.HasColumn(rspace.PartialLabel))
	assert.False(t, got.HasColumn(rspace.ISymLabel))

	partial, _ := got.Column(rspace.PartialLabel)
	assert.Equal(t, rspace.TypeBool, partial.Type)

	// Observed indices are restored, so not all rows sit in the ASU.
	inASU := 0
	for _, h := range got.HKLs {
		if got.SpaceGroup.InASU(h) {
			inASU++
		}
	}
	assert.Less(t, inASU, got.Len())
}

func TestRoundTripUnmerged(t *testing.T) {
	for _, labelCentrics := range []bool{false, true} {
		name := "Plain"
		if labelCentrics {
			name = "WithCentricLabels"
		}
		t.Run(name, func(t *testing.T) {
			ds := testutil.UnmergedDataSet(150, 3)
			if labelCentrics {
				require.NoError(t, ds.LabelCentrics())
			}

			dir := t.TempDir()
			p1 := filepath.Join(dir, "a.mtz")
			p2 := filepath.Join(dir, "b.mtz")

			require.NoError(t, mtz.Write(ds, p1))
			got, err := mtz.Read(p1)
			require.NoError(t, err)
			require.NoError(t, got.Reorder(ds.Labels()))

			require.NoError(t, mtz.Write(got, p2))
			b1, err := os.ReadFile(p1)
			require.NoError(t, err)
			b2, err := os.ReadFile(p2)
			require.NoError(t, err)
			assert.Equal(t, b1, b2)

			testutil.RequireEqualDataSets(t, ds, got)
			assert.Equal(t, ds.Merged, got.Merged)
		})
	}
}

func TestUnmergedUnchangedAfterWrite(t *testing.T) {
	for _, toASU := range []bool{false, true} {
		name := "Observed"
		if toASU {
			name = "InASU"
		}
		t.Run(name, func(t *testing.T) {
			ds := testutil.UnmergedDataSet(80, 5)
			if toASU {
				require.NoError(t, ds.HKLToASU())
			}
			expected := ds.Copy()

			path := filepath.Join(t.TempDir(), "out.mtz")
			require.NoError(t, mtz.Write(ds, path))

			testutil.RequireEqualDataSets(t, expected, ds)
		})
	}
}

func TestReadRejectsTwoISymColumns(t *testing.T) {
	ds := testutil.UnmergedDataSet(40, 9)
	extra := make([]int32, ds.Len())
	for i := range extra {
		extra[i] = 1
	}
	require.NoError(t, ds.AddInts("EXTRA", rspace.TypeISym, extra))

	path := filepath.Join(t.TempDir(), "twoisym.mtz")
	require.NoError(t, mtz.Write(ds, path))

	_, err := mtz.Read(path)
	assert.ErrorIs(t, err, mtz.ErrMultipleISym)
}

func TestRoundTripGzip(t *testing.T) {
	ds := testutil.MergedDataSet(30, 42)
	path := filepath.Join(t.TempDir(), "c.mtz.gz")

	require.NoError(t, mtz.Write(ds, path))
	got, err := mtz.Read(path)
	require.NoError(t, err)
	testutil.RequireEqualDataSets(t, ds, got)
}
