package symmetry

import "fmt"

// ToASU maps a Miller index to its canonical asymmetric-unit representative
// and the 1-based ISYM number of the operation that got it there.
//
// The representative is the lexicographically maximal image of the index
// under every rotation and its Friedel mate. ISYM follows the CCP4
// convention: operation i (1-based) contributes 2i-1, its Friedel mate 2i.
// Ties resolve to the smallest ISYM, so the mapping is deterministic and
// stable under repeated application.
func (sg *SpaceGroup) ToASU(h HKL) (HKL, int) {
	best := h
	isym := 1
	first := true
	for i, op := range sg.Ops {
		img := op.ApplyHKL(h)
		if first || best.Less(img) {
			best, isym = img, 2*i+1
			first = false
		}
		neg := img.Neg()
		if best.Less(neg) {
			best, isym = neg, 2*i+2
		}
	}
	return best, isym
}

// InASU reports whether the index is its own canonical representative.
func (sg *SpaceGroup) InASU(h HKL) bool {
	rep, _ := sg.ToASU(h)
	return rep == h
}

// FromASU undoes ToASU: given an asymmetric-unit index and an ISYM number it
// returns the originally observed index.
func (sg *SpaceGroup) FromASU(h HKL, isym int) (HKL, error) {
	if isym < 1 || isym > 2*len(sg.Ops) {
		return HKL{}, fmt.Errorf("isym %d out of range for %d operations", isym, len(sg.Ops))
	}
	op := sg.Ops[(isym-1)/2]
	if isym%2 == 0 {
		h = h.Neg()
	}
	return op.Inverse().ApplyHKL(h), nil
}

// IsCentric reports whether a reflection is centric: some symmetry operation
// maps it onto its Friedel mate.
func (sg *SpaceGroup) IsCentric(h HKL) bool {
	neg := h.Neg()
	for _, op := range sg.Ops {
		if op.ApplyHKL(h) == neg {
			return true
		}
	}
	return false
}
