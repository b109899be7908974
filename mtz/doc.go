// Package mtz reads and writes CCP4 MTZ reflection files.
//
// The MTZ format stores reflection records as little-endian float32 rows
// followed by 80-character ASCII header records. Read returns a
// rspace.DataSet with the H,K,L columns as its index; Write produces a
// deterministic byte stream so that read-write-read round trips are
// byte-identical.
//
// Unmerged data (multiple observations per unique reflection) is carried in
// the standard M/ISYM convention: on write the index is mapped to the
// asymmetric unit and the applied operation is packed together with the
// PARTIAL flag into a single M/ISYM column; on read the packing is undone.
package mtz
