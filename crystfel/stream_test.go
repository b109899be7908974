package crystfel_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/crystfel"
)

const miniStream = "testdata/mini.stream"

func TestReadRejectsWrongExtension(t *testing.T) {
	for _, path := range []string{"data.mtz", "data.stream.txt", "stream"} {
		_, err := crystfel.Read(path)
		assert.ErrorIs(t, err, crystfel.ErrNotStream, "path %q", path)
	}
}

func TestReadStream(t *testing.T) {
	ds, err := crystfel.Read(miniStream)
	require.NoError(t, err)

	assert.False(t, ds.Merged)
	assert.Nil(t, ds.SpaceGroup)
	assert.Nil(t, ds.Cell)
	assert.Equal(t, 7, ds.Len())

	for _, label := range []string{"I", "sigmaI", "BATCH", "s1x", "s1y", "s1z", "ewald_offset", "XDET", "YDET"} {
		assert.True(t, ds.HasColumn(label), "column %s", label)
	}

	intensity, _ := ds.Column("I")
	assert.Equal(t, rspace.TypeIntensity, intensity.Type)
	assert.Equal(t, float32(101.50), intensity.Float[0])

	sigma, _ := ds.Column("sigmaI")
	assert.Equal(t, rspace.TypeStddev, sigma.Type)

	// Serial data: repeated observations of the same unique reflection.
	assert.Less(t, ds.UniqueHKLCount(), ds.Len())
	assert.Equal(t, rspace.HKL{1, 0, 0}, ds.HKLs[0])
}

func TestReadStreamBatches(t *testing.T) {
	ds, err := crystfel.Read(miniStream)
	require.NoError(t, err)

	batch, ok := ds.Column("BATCH")
	require.True(t, ok)
	assert.Equal(t, rspace.TypeBatch, batch.Type)

	// One distinct batch id per crystal block, numbered in file order.
	seen := make(map[int32]struct{})
	for _, b := range batch.Int {
		seen[b] = struct{}{}
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, []int32{0, 0, 0, 1, 1, 2, 2}, batch.Int)
}

func TestReadStreamGeometry(t *testing.T) {
	ds, err := crystfel.Read(miniStream)
	require.NoError(t, err)

	offsets, _ := ds.Column("ewald_offset")
	min, max := float64(offsets.Float[0]), float64(offsets.Float[0])
	for _, v := range offsets.Float {
		min = math.Min(min, float64(v))
		max = math.Max(max, float64(v))
	}
	assert.Less(t, min, 0.0)
	assert.Greater(t, max, 0.0)

	// First chunk: 1 A photons, astar = 0.1 1/A along x, so (1,0,0)
	// scatters to s1 = (0.1, 0, 1).
	s1x, _ := ds.Column("s1x")
	s1z, _ := ds.Column("s1z")
	assert.InDelta(t, 0.1, s1x.Float[0], 1e-6)
	assert.InDelta(t, 1.0, s1z.Float[0], 1e-6)
	assert.InDelta(t, math.Sqrt(1.01)-1, float64(offsets.Float[0]), 1e-6)

	// (0,0,1) with cstar z = -0.05 1/A sits inside the Ewald sphere.
	assert.InDelta(t, -0.05, float64(offsets.Float[1]), 1e-6)

	xdet, _ := ds.Column("XDET")
	assert.Equal(t, float32(100.5), xdet.Float[0])
}

func TestReadStreamSerial(t *testing.T) {
	// Concurrency must not change the assembled row order.
	ds1, err := crystfel.Read(miniStream, crystfel.WithConcurrency(1))
	require.NoError(t, err)
	ds4, err := crystfel.Read(miniStream, crystfel.WithConcurrency(4))
	require.NoError(t, err)

	assert.Equal(t, ds1.HKLs, ds4.HKLs)
	b1, _ := ds1.Column("BATCH")
	b4, _ := ds4.Column("BATCH")
	assert.Equal(t, b1.Int, b4.Int)
}

func TestReadStreamGzip(t *testing.T) {
	raw, err := os.ReadFile(miniStream)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mini.stream.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ds, err := crystfel.Read(path)
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Len())
}
