// Package rspace provides a labeled, Miller-index-addressed table for
// crystallographic reflection data.
//
// A DataSet holds typed columns of per-reflection quantities keyed by
// (H,K,L) triples, together with optional spacegroup and unit-cell
// metadata and a merged/unmerged flag. The mtz and crystfel subpackages
// read and write DataSets from the corresponding file formats.
package rspace
