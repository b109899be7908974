package symmetry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToASUStable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, number := range []int{1, 2, 5, 19, 96} {
		sg, err := ByNumber(number)
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			h := HKL{rng.Intn(21) - 10, rng.Intn(21) - 10, rng.Intn(21) - 10}
			rep, isym := sg.ToASU(h)

			assert.True(t, sg.InASU(rep), "sg %d: representative %v not canonical", number, rep)
			rep2, _ := sg.ToASU(rep)
			assert.Equal(t, rep, rep2, "sg %d: reduction of %v not idempotent", number, h)

			assert.GreaterOrEqual(t, isym, 1)
			assert.LessOrEqual(t, isym, 2*len(sg.Ops))
		}
	}
}

func TestFromASURecoversObserved(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, number := range []int{2, 19, 96} {
		sg, err := ByNumber(number)
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			h := HKL{rng.Intn(31) - 15, rng.Intn(31) - 15, rng.Intn(31) - 15}
			rep, isym := sg.ToASU(h)
			back, err := sg.FromASU(rep, isym)
			require.NoError(t, err)
			assert.Equal(t, h, back)
		}
	}
}

func TestFromASURejectsBadISym(t *testing.T) {
	sg := P1()
	_, err := sg.FromASU(HKL{1, 2, 3}, 0)
	assert.Error(t, err)
	_, err = sg.FromASU(HKL{1, 2, 3}, 3)
	assert.Error(t, err)
}

func TestIsCentric(t *testing.T) {
	t.Run("TriclinicBar1AllCentric", func(t *testing.T) {
		sg, err := ByNumber(2)
		require.NoError(t, err)
		for _, h := range []HKL{{1, 2, 3}, {0, 0, 1}, {-5, 4, 2}} {
			assert.True(t, sg.IsCentric(h))
		}
	})

	t.Run("OrthorhombicZones", func(t *testing.T) {
		sg, err := ByNumber(19)
		require.NoError(t, err)
		assert.True(t, sg.IsCentric(HKL{0, 1, 2}))
		assert.True(t, sg.IsCentric(HKL{1, 0, 2}))
		assert.True(t, sg.IsCentric(HKL{1, 2, 0}))
		assert.False(t, sg.IsCentric(HKL{1, 2, 3}))
	})

	t.Run("P1OnlyOrigin", func(t *testing.T) {
		sg := P1()
		assert.False(t, sg.IsCentric(HKL{1, 0, 0}))
		assert.True(t, sg.IsCentric(HKL{0, 0, 0}))
	})
}

func TestSpaceGroupCounts(t *testing.T) {
	sg96, err := ByNumber(96)
	require.NoError(t, err)
	assert.Equal(t, 8, len(sg96.Ops))
	assert.Equal(t, 8, sg96.NumPrimitiveOps())
	assert.Equal(t, byte('P'), sg96.Lattice())

	sg5, err := ByNumber(5)
	require.NoError(t, err)
	assert.Equal(t, 4, len(sg5.Ops))
	assert.Equal(t, 2, sg5.NumPrimitiveOps())
	assert.Equal(t, byte('C'), sg5.Lattice())

	_, err = ByNumber(230)
	assert.ErrorIs(t, err, ErrUnknownSpaceGroup)
}
