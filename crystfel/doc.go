// Package crystfel reads CrystFEL stream files into reflection tables.
//
// A stream file is the text output of CrystFEL's indexamajig: a sequence of
// chunks, one per detector image, each holding zero or more indexed
// "crystal" blocks with per-reflection rows. Read returns an unmerged
// DataSet whose BATCH column numbers the crystal blocks in file order, with
// per-observation scattering-vector components and Ewald-sphere offsets
// derived from each crystal's reciprocal basis and the chunk's photon
// energy.
package crystfel
