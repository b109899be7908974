// Package symmetry provides the minimal crystallographic symmetry support
// needed for reflection-data I/O: unit cells, spacegroup symmetry operations
// parsed from triplet strings, and a deterministic asymmetric-unit mapping
// for Miller indices.
//
// It is intentionally not a general symmetry library. The asymmetric unit is
// defined by a canonical-representative rule (see ToASU) that is stable under
// round-tripping, which is all the MTZ codec requires.
package symmetry
