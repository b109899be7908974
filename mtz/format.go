package mtz

import (
	"errors"
	"fmt"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/symmetry"
)

const (
	// magic identifies MTZ files (ASCII "MTZ ").
	magic = "MTZ "
	// recordLen is the length of one ASCII header record.
	recordLen = 80
	// dataStartWord is the 1-based word at which reflection data begins,
	// i.e. byte offset 80.
	dataStartWord = 21

	// DefaultName is used for the project, crystal, and dataset names when
	// the caller does not provide one.
	DefaultName = "rspace"

	// baseDatasetName names the implicit dataset 0 holding the index
	// columns, per CCP4 convention.
	baseDatasetName = "HKL_base"
)

// stampLE is the machine stamp for little-endian IEEE floats and ints.
var stampLE = [2]byte{0x44, 0x41}

var (
	ErrInvalidMagic     = errors.New("not an MTZ file: bad magic")
	ErrUnsupportedStamp = errors.New("unsupported machine stamp: only little-endian IEEE is supported")
	ErrTruncated        = errors.New("truncated MTZ file")
	ErrNoIndex          = errors.New("MTZ file has no H K L index columns")
	ErrMultipleISym     = errors.New("MTZ file has more than one M/ISYM column")
	ErrNoSymmetry       = errors.New("unmerged MTZ file carries no symmetry operations")
)

// ErrProblemType indicates a column whose type has no MTZ equivalent. The
// writer raises it unless SkipProblemTypes is set.
type ErrProblemType struct {
	Label string
	Type  rspace.ColumnType
}

func (e *ErrProblemType) Error() string {
	return fmt.Sprintf("column %q has type %s with no MTZ type code", e.Label, e.Type)
}

// ErrISymRange indicates an ISYM value outside 1..255, which cannot be
// packed into the M/ISYM convention.
type ErrISymRange struct {
	Row   int
	Value int32
}

func (e *ErrISymRange) Error() string {
	return fmt.Sprintf("row %d: ISYM %d does not fit the M/ISYM packing", e.Row, e.Value)
}

// ErrBadRecord indicates a header record that could not be parsed.
type ErrBadRecord struct {
	Record string
	Reason string
}

func (e *ErrBadRecord) Error() string {
	return fmt.Sprintf("bad MTZ header record %q: %s", e.Record, e.Reason)
}

// ErrInvalidName indicates an unusable project, crystal, or dataset name.
type ErrInvalidName struct {
	Field string
	Value string
}

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid %s name %q", e.Field, e.Value)
}

// ColumnInfo describes one COLUMN header record.
type ColumnInfo struct {
	Label     string
	Code      byte
	Min, Max  float64
	DatasetID int
}

// DatasetInfo describes one project/crystal/dataset group in the header.
type DatasetInfo struct {
	ID         int
	Project    string
	Crystal    string
	Name       string
	Cell       *symmetry.UnitCell
	Wavelength float64
}

// Header is the parsed ASCII header of an MTZ file. It exposes the file
// metadata without loading reflection data; see ReadHeader.
type Header struct {
	Title  string
	NCol   int
	NRefl  int
	NBatch int

	Cell *symmetry.UnitCell

	SpaceGroupNumber int
	SpaceGroupName   string
	PointGroup       string
	SymOps           []symmetry.SymOp

	ResoMin, ResoMax float64

	Columns  []ColumnInfo
	Datasets []DatasetInfo
}

// SpaceGroup assembles a symmetry.SpaceGroup from the header's SYMINF and
// SYMM records. It returns nil when the file carries no symmetry.
func (h *Header) SpaceGroup() *symmetry.SpaceGroup {
	if len(h.SymOps) == 0 {
		return nil
	}
	sg, err := symmetry.FromOps(h.SpaceGroupNumber, h.SpaceGroupName, h.PointGroup, h.SymOps)
	if err != nil {
		return nil
	}
	return sg
}

// Dataset returns the dataset group with the given ID.
func (h *Header) Dataset(id int) (DatasetInfo, bool) {
	for _, d := range h.Datasets {
		if d.ID == id {
			return d, true
		}
	}
	return DatasetInfo{}, false
}
