package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xtalgo/rspace"
)

// RequireEqualDataSets fails the test unless the two datasets agree on
// index, merge state, metadata, column order, dtypes, and values. Float
// comparison is exact except that NaN equals NaN.
func RequireEqualDataSets(t testing.TB, want, got *rspace.DataSet) {
	t.Helper()

	require.Equal(t, want.Merged, got.Merged, "merged flag")
	require.Equal(t, want.HKLs, got.HKLs, "index")
	require.Equal(t, want.Labels(), got.Labels(), "column order")

	if want.SpaceGroup == nil {
		require.Nil(t, got.SpaceGroup, "spacegroup")
	} else {
		require.NotNil(t, got.SpaceGroup, "spacegroup")
		require.Equal(t, want.SpaceGroup.Number, got.SpaceGroup.Number, "spacegroup number")
		require.Equal(t, len(want.SpaceGroup.Ops), len(got.SpaceGroup.Ops), "spacegroup operations")
	}
	if want.Cell == nil {
		require.Nil(t, got.Cell, "cell")
	} else {
		require.NotNil(t, got.Cell, "cell")
		require.InDelta(t, want.Cell.A, got.Cell.A, 1e-3)
		require.InDelta(t, want.Cell.B, got.Cell.B, 1e-3)
		require.InDelta(t, want.Cell.C, got.Cell.C, 1e-3)
		require.InDelta(t, want.Cell.Alpha, got.Cell.Alpha, 1e-3)
		require.InDelta(t, want.Cell.Beta, got.Cell.Beta, 1e-3)
		require.InDelta(t, want.Cell.Gamma, got.Cell.Gamma, 1e-3)
	}

	for _, wcol := range want.Columns() {
		gcol, ok := got.Column(wcol.Label)
		require.True(t, ok, "column %s", wcol.Label)
		require.Equal(t, wcol.Type, gcol.Type, "column %s dtype", wcol.Label)
		require.Equal(t, wcol.Int, gcol.Int, "column %s", wcol.Label)
		require.Equal(t, wcol.Bool, gcol.Bool, "column %s", wcol.Label)
		require.Equal(t, len(wcol.Float), len(gcol.Float), "column %s length", wcol.Label)
		for i := range wcol.Float {
			w, g := wcol.Float[i], gcol.Float[i]
			if math.IsNaN(float64(w)) && math.IsNaN(float64(g)) {
				continue
			}
			require.Equal(t, w, g, "column %s row %d", wcol.Label, i)
		}
	}
}
