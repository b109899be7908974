package testutil

import (
	"math/rand"
	"sync"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/symmetry"
)

// RNG is a seeded, thread-safe random number generator for reproducible
// fixtures.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates an RNG with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Reset rewinds the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in [0, scale).
func (r *RNG) FillUniform(dst []float32, scale float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32() * scale
	}
}

// LysozymeCell returns the tetragonal hen egg-white lysozyme cell used by
// the canned datasets.
func LysozymeCell() *symmetry.UnitCell {
	return symmetry.NewUnitCell(79.34, 79.34, 38.54, 90, 90, 90)
}

// MergedDataSet builds a merged dataset in P 43 21 2 with FMODEL and
// PHIFMODEL columns over n in-ASU reflections. Deterministic for a given
// seed.
func MergedDataSet(n int, seed int64) *rspace.DataSet {
	sg, err := symmetry.ByNumber(96)
	if err != nil {
		panic(err)
	}
	rng := NewRNG(seed)

	seen := make(map[rspace.HKL]struct{}, n)
	hkls := make([]rspace.HKL, 0, n)
	for len(hkls) < n {
		h := rspace.HKL{rng.Intn(20) + 1, rng.Intn(20), rng.Intn(15)}
		rep, _ := sg.ToASU(h)
		if _, dup := seen[rep]; dup {
			continue
		}
		seen[rep] = struct{}{}
		hkls = append(hkls, rep)
	}

	f := make([]float32, n)
	phi := make([]float32, n)
	rng.FillUniform(f, 1000)
	rng.FillUniform(phi, 360)

	ds := rspace.NewDataSet(hkls)
	ds.SpaceGroup = sg
	ds.Cell = LysozymeCell()
	if err := ds.AddFloats("FMODEL", rspace.TypeAmplitude, f); err != nil {
		panic(err)
	}
	if err := ds.AddFloats("PHIFMODEL", rspace.TypePhase, phi); err != nil {
		panic(err)
	}
	return ds
}

// UnmergedDataSet builds an unmerged dataset in P 21 21 21 with I, SigI,
// BATCH, and PARTIAL columns. The index holds symmetry-spread duplicate
// observations, most of them outside the ASU. Deterministic for a given
// seed.
func UnmergedDataSet(n int, seed int64) *rspace.DataSet {
	sg, err := symmetry.ByNumber(19)
	if err != nil {
		panic(err)
	}
	rng := NewRNG(seed)

	hkls := make([]rspace.HKL, n)
	partial := make([]bool, n)
	batch := make([]int32, n)
	for i := range hkls {
		h := rspace.HKL{rng.Intn(15) + 1, rng.Intn(15) + 1, rng.Intn(10) + 1}
		// Spread observations across the symmetry orbit, Friedel mates
		// included, so the index leaves the ASU and repeats.
		op := sg.Ops[rng.Intn(len(sg.Ops))]
		h = op.ApplyHKL(h)
		if rng.Intn(2) == 1 {
			h = h.Neg()
		}
		hkls[i] = h
		partial[i] = rng.Intn(4) == 0
		batch[i] = int32(rng.Intn(8) + 1)
	}

	intensity := make([]float32, n)
	sigI := make([]float32, n)
	rng.FillUniform(intensity, 5000)
	rng.FillUniform(sigI, 50)

	ds := rspace.NewDataSet(hkls)
	ds.Merged = false
	ds.SpaceGroup = sg
	ds.Cell = symmetry.NewUnitCell(51.99, 62.91, 72.03, 90, 90, 90)
	for _, err := range []error{
		ds.AddFloats("I", rspace.TypeIntensity, intensity),
		ds.AddFloats("SigI", rspace.TypeStddev, sigI),
		ds.AddInts("BATCH", rspace.TypeBatch, batch),
		ds.AddBools(rspace.PartialLabel, partial),
	} {
		if err != nil {
			panic(err)
		}
	}
	return ds
}
