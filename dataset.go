package rspace

import (
	"github.com/xtalgo/rspace/symmetry"
)

// HKL is a Miller-index triple.
type HKL = symmetry.HKL

// Well-known column labels with special handling in the MTZ codec.
const (
	ISymLabel    = "M/ISYM"
	PartialLabel = "PARTIAL"
	CentricLabel = "CENTRIC"
	DHKLLabel    = "dHKL"
)

// DataSet is a table of per-reflection quantities addressed by Miller
// indices. The index may hold duplicates when Merged is false (multiple
// observations of the same unique reflection).
type DataSet struct {
	// HKLs is the row index. Its length defines the row count.
	HKLs []HKL

	// SpaceGroup and Cell are optional metadata. Readers populate them
	// only when the source file carries them; the MTZ writer requires
	// both.
	SpaceGroup *symmetry.SpaceGroup
	Cell       *symmetry.UnitCell

	// Merged records whether symmetry-equivalent observations have been
	// averaged into one row per unique reflection.
	Merged bool

	cols []*Column
}

// NewDataSet creates a merged dataset over the given index.
func NewDataSet(hkls []HKL) *DataSet {
	return &DataSet{HKLs: hkls, Merged: true}
}

// Len returns the number of rows.
func (ds *DataSet) Len() int { return len(ds.HKLs) }

// Columns returns the columns in order. The slice is a copy; the columns
// themselves are shared.
func (ds *DataSet) Columns() []*Column {
	return append([]*Column(nil), ds.cols...)
}

// Labels returns the column labels in order.
func (ds *DataSet) Labels() []string {
	labels := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		labels[i] = c.Label
	}
	return labels
}

// Column returns the column with the given label.
func (ds *DataSet) Column(label string) (*Column, bool) {
	if i := ds.columnIndex(label); i >= 0 {
		return ds.cols[i], true
	}
	return nil, false
}

// HasColumn reports whether a column with the given label exists.
func (ds *DataSet) HasColumn(label string) bool {
	return ds.columnIndex(label) >= 0
}

func (ds *DataSet) columnIndex(label string) int {
	for i, c := range ds.cols {
		if c.Label == label {
			return i
		}
	}
	return -1
}

// AddColumn appends a column. The column's storage must match its type's
// kind and its length must match the dataset's row count.
func (ds *DataSet) AddColumn(col *Column) error {
	if ds.HasColumn(col.Label) {
		return &ErrDuplicateColumn{Label: col.Label}
	}
	switch col.Type.Kind() {
	case KindFloat32:
		if col.Float == nil || col.Int != nil || col.Bool != nil {
			return &ErrKindMismatch{Label: col.Label, Type: col.Type}
		}
	case KindInt32:
		if col.Int == nil || col.Float != nil || col.Bool != nil {
			return &ErrKindMismatch{Label: col.Label, Type: col.Type}
		}
	case KindBool:
		if col.Bool == nil || col.Float != nil || col.Int != nil {
			return &ErrKindMismatch{Label: col.Label, Type: col.Type}
		}
	}
	if col.Len() != ds.Len() {
		return &ErrLengthMismatch{Label: col.Label, Want: ds.Len(), Got: col.Len()}
	}
	ds.cols = append(ds.cols, col)
	return nil
}

// AddFloats appends a float-kind column.
func (ds *DataSet) AddFloats(label string, typ ColumnType, vals []float32) error {
	return ds.AddColumn(&Column{Label: label, Type: typ, Float: vals})
}

// AddInts appends an int-kind column.
func (ds *DataSet) AddInts(label string, typ ColumnType, vals []int32) error {
	return ds.AddColumn(&Column{Label: label, Type: typ, Int: vals})
}

// AddBools appends a bool column.
func (ds *DataSet) AddBools(label string, vals []bool) error {
	return ds.AddColumn(&Column{Label: label, Type: TypeBool, Bool: vals})
}

// DropColumn removes the column with the given label.
func (ds *DataSet) DropColumn(label string) error {
	i := ds.columnIndex(label)
	if i < 0 {
		return &ErrColumnNotFound{Label: label}
	}
	ds.cols = append(ds.cols[:i], ds.cols[i+1:]...)
	return nil
}

// Reorder rearranges columns into the given label order. Every existing
// column must be named exactly once.
func (ds *DataSet) Reorder(labels []string) error {
	if len(labels) != len(ds.cols) {
		return &ErrLengthMismatch{Label: "<reorder>", Want: len(ds.cols), Got: len(labels)}
	}
	out := make([]*Column, 0, len(labels))
	for _, label := range labels {
		i := ds.columnIndex(label)
		if i < 0 {
			return &ErrColumnNotFound{Label: label}
		}
		out = append(out, ds.cols[i])
	}
	ds.cols = out
	return nil
}

// Copy returns a deep copy of the dataset. Index, columns, and metadata
// are all copied; mutating the copy never touches the original.
func (ds *DataSet) Copy() *DataSet {
	out := &DataSet{
		HKLs:   append([]HKL(nil), ds.HKLs...),
		Merged: ds.Merged,
	}
	if ds.SpaceGroup != nil {
		sg := *ds.SpaceGroup
		sg.Ops = append([]symmetry.SymOp(nil), ds.SpaceGroup.Ops...)
		out.SpaceGroup = &sg
	}
	if ds.Cell != nil {
		cell := *ds.Cell
		out.Cell = &cell
	}
	out.cols = make([]*Column, len(ds.cols))
	for i, c := range ds.cols {
		out.cols[i] = c.Copy()
	}
	return out
}

// UniqueHKLCount returns the number of distinct Miller indices in the index.
func (ds *DataSet) UniqueHKLCount() int {
	seen := make(map[HKL]struct{}, len(ds.HKLs))
	for _, h := range ds.HKLs {
		seen[h] = struct{}{}
	}
	return len(seen)
}

// HKLToASU maps the index into the asymmetric unit, recording the applied
// operation in an M/ISYM column (overwritten if already present). The
// dataset is modified in place; use Copy for a non-destructive form.
func (ds *DataSet) HKLToASU() error {
	if ds.SpaceGroup == nil {
		return ErrNoSpaceGroup
	}
	isyms := make([]int32, len(ds.HKLs))
	for i, h := range ds.HKLs {
		rep, isym := ds.SpaceGroup.ToASU(h)
		ds.HKLs[i] = rep
		isyms[i] = int32(isym)
	}
	if col, ok := ds.Column(ISymLabel); ok {
		col.Int = isyms
		return nil
	}
	return ds.AddInts(ISymLabel, TypeISym, isyms)
}

// HKLToObserved undoes HKLToASU using the M/ISYM column, which is removed
// afterwards. Packed partiality bits (value >= 256) are ignored.
func (ds *DataSet) HKLToObserved() error {
	if ds.SpaceGroup == nil {
		return ErrNoSpaceGroup
	}
	col, ok := ds.Column(ISymLabel)
	if !ok {
		return ErrNoISym
	}
	for i, h := range ds.HKLs {
		obs, err := ds.SpaceGroup.FromASU(h, int(col.Int[i])%256)
		if err != nil {
			return err
		}
		ds.HKLs[i] = obs
	}
	return ds.DropColumn(ISymLabel)
}

// LabelCentrics adds a CENTRIC column (1 for centric reflections, else 0).
// The column is typed MTZInt so that it survives an MTZ round trip.
func (ds *DataSet) LabelCentrics() error {
	if ds.SpaceGroup == nil {
		return ErrNoSpaceGroup
	}
	flags := make([]int32, len(ds.HKLs))
	for i, h := range ds.HKLs {
		if ds.SpaceGroup.IsCentric(h) {
			flags[i] = 1
		}
	}
	if col, ok := ds.Column(CentricLabel); ok {
		col.Int = flags
		return nil
	}
	return ds.AddInts(CentricLabel, TypeMTZInt, flags)
}

// ComputeDHKL adds a dHKL column with per-reflection resolution in
// Angstroms.
func (ds *DataSet) ComputeDHKL() error {
	if ds.Cell == nil {
		return ErrNoCell
	}
	d := make([]float32, len(ds.HKLs))
	for i, h := range ds.HKLs {
		d[i] = float32(ds.Cell.DSpacing(h))
	}
	if col, ok := ds.Column(DHKLLabel); ok {
		col.Float = d
		return nil
	}
	return ds.AddFloats(DHKLLabel, TypeReal, d)
}
